package content

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"techrobotics-site/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

var ErrEmptyCatalogue = errors.New("catalogue must contain at least one project, workshop and slide")

type Details struct {
	Title string `json:"title" yaml:"title"`
	Quote string `json:"quote" yaml:"quote"`
	Body  string `json:"body" yaml:"body"`
}

type ComingSoon struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

type Contact struct {
	Recipient     string `yaml:"recipient"`
	RecipientName string `yaml:"recipient_name"`
	Subject       string `yaml:"subject"`
	GuestEmail    string `yaml:"guest_email"`
}

// Catalogue is the static content the pages render.
type Catalogue struct {
	Projects   []models.Project      `yaml:"projects"`
	Workshops  []models.Workshop     `yaml:"workshops"`
	Slides     []models.Slide        `yaml:"slides"`
	Details    Details               `yaml:"details"`
	ComingSoon map[string]ComingSoon `yaml:"coming_soon"`
	Contact    Contact               `yaml:"contact"`
	Social     []models.SocialLink   `yaml:"social"`
}

// Default returns the catalogue compiled into the binary.
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Load reads a catalogue file, or the built-in one when path is empty.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if len(c.Projects) == 0 || len(c.Workshops) == 0 || len(c.Slides) == 0 {
		return nil, ErrEmptyCatalogue
	}
	return &c, nil
}

// Project returns the project with the given id, or the first project.
func (c *Catalogue) Project(id int) models.Project {
	for _, p := range c.Projects {
		if p.ID == id {
			return p
		}
	}
	return c.Projects[0]
}

// Workshop returns the workshop with the given id, or the first workshop.
func (c *Catalogue) Workshop(id int) models.Workshop {
	for _, w := range c.Workshops {
		if w.ID == id {
			return w
		}
	}
	return c.Workshops[0]
}

func (c *Catalogue) SlideCount() int {
	return len(c.Slides)
}

// Slide returns the slide at index i, wrapping around.
func (c *Catalogue) Slide(i int) models.Slide {
	n := len(c.Slides)
	return c.Slides[((i%n)+n)%n]
}

func (c *Catalogue) NarrationText() string {
	return c.Details.Quote
}

// MailtoLink builds the footer mail link sent on behalf of email.
// An empty email is reported as the guest address.
func (c *Catalogue) MailtoLink(email string) string {
	if email == "" {
		email = c.Contact.GuestEmail
	}

	body := fmt.Sprintf("Hello %s,\n\nI am writing to you from the TechRobotics website regarding [Your Subject Here].\n\n[Your Message Here]\n\nRegards,\n(Sent by: %s)",
		c.Contact.RecipientName, email)

	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", c.Contact.Recipient, escape(c.Contact.Subject), escape(body))
}

// escape percent-encodes s with spaces as %20, which mail clients expect.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// FooterLinks returns the social links with the mail link in second position.
func (c *Catalogue) FooterLinks(email string) []models.SocialLink {
	mail := models.SocialLink{Name: "Gmail (" + c.Contact.RecipientName + ")", URL: c.MailtoLink(email)}

	links := make([]models.SocialLink, 0, len(c.Social)+1)
	for i, link := range c.Social {
		if i == 1 {
			links = append(links, mail)
		}
		links = append(links, link)
	}
	if len(c.Social) < 2 {
		links = append(links, mail)
	}
	return links
}
