package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		title  string
		prefix string
	}{
		{"Hello, World!", "hello-world-"},
		{"  Spaces   everywhere  ", "spaces-everywhere-"},
		{"Go 1.23 Release Notes", "go-1-23-release-notes-"},
		{"ALL CAPS TITLE", "all-caps-title-"},
		{"---dashes---", "dashes-"},
	}

	for _, tc := range cases {
		slug := GenerateSlug(tc.title)
		assert.True(t, strings.HasPrefix(slug, tc.prefix), "slug %q should start with %q", slug, tc.prefix)
		assert.Regexp(t, `^[a-z0-9-]+$`, slug)
		assert.False(t, strings.Contains(slug, "--"), "slug %q has a double hyphen", slug)
	}
}

func TestGenerateSlugIsUnique(t *testing.T) {
	a := GenerateSlug("Same Title")
	b := GenerateSlug("Same Title")
	assert.NotEqual(t, a, b)
}

func TestGenerateSlugEmptyTitle(t *testing.T) {
	slug := GenerateSlug("")
	assert.NotEmpty(t, slug)
	assert.Regexp(t, `^[a-z0-9-]+$`, slug)
}
