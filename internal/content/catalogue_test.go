package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Projects, 6)
	assert.Len(t, c.Workshops, 1)
	assert.Equal(t, 3, c.SlideCount())
	assert.Equal(t, "Content of Ramesh Sir #ROBOTICIAN", c.NarrationText())
	assert.Contains(t, c.ComingSoon, "labs")
	assert.Contains(t, c.ComingSoon, "resources")
	assert.Contains(t, c.Workshops[0].Instructor, "Dr. Alice Chen")
}

func TestCatalogue_ProjectFallsBackToFirst(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Drone Swarm Control", c.Project(3).Title)
	assert.Equal(t, "Autonomous Rover", c.Project(99).Title)
	assert.Equal(t, "Autonomous Rover", c.Project(0).Title)
	assert.Equal(t, 1, c.Workshop(42).ID)
}

func TestCatalogue_SlideWraps(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 1, c.Slide(0).ID)
	assert.Equal(t, 1, c.Slide(3).ID)
	assert.Equal(t, 3, c.Slide(-1).ID)
}

func TestCatalogue_MailtoLink(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "authenticated user", email: "test@example.com", expected: "test%40example.com"},
		{name: "guest", email: "", expected: "UnauthenticatedUser%40techrobotics.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := c.MailtoLink(tt.email)
			assert.True(t, strings.HasPrefix(link, "mailto:sundarpichai@gmail.com?subject=Inquiry%20from%20TechRobotics%20Website%20User&body="))
			assert.Contains(t, link, "Sent%20by%3A%20"+tt.expected)
			assert.NotContains(t, link, "+")
		})
	}
}

func TestCatalogue_FooterLinks(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	links := c.FooterLinks("")
	require.Len(t, links, 6)
	assert.Equal(t, "WhatsApp", links[0].Name)
	assert.Equal(t, "Gmail (Sundar Pichai)", links[1].Name)
	assert.True(t, strings.HasPrefix(links[1].URL, "mailto:"))
	assert.Equal(t, "LinkedIn", links[2].Name)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses the built-in catalogue", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Len(t, c.Projects, 6)
	})

	t.Run("rejects an empty catalogue", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalogue.yaml")
		require.NoError(t, os.WriteFile(path, []byte("projects: []\n"), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrEmptyCatalogue)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
