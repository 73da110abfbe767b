package models

type Project struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
}

type Workshop struct {
	ID            int      `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Summary       string   `json:"summary" yaml:"summary"`
	Description   string   `json:"description" yaml:"description"`
	Image         string   `json:"image" yaml:"image"`
	Topics        []string `json:"topics" yaml:"topics"`
	Prerequisites string   `json:"prerequisites" yaml:"prerequisites"`
	Instructor    string   `json:"instructor" yaml:"instructor"`
}

type Slide struct {
	ID    int    `json:"id" yaml:"id"`
	Image string `json:"image" yaml:"image"`
	Title string `json:"title" yaml:"title"`
}

type SocialLink struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
