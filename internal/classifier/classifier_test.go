package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		valid      bool
		source     SourceType
		confidence Confidence
	}{
		{"instagram post", "https://www.instagram.com/p/abc123/", true, Instagram, High},
		{"facebook video", "https://m.facebook.com/watch/?v=1", true, Facebook, Medium},
		{"x.com status", "https://x.com/chef/status/1", true, Twitter, Medium},
		{"pinterest pin", "https://www.pinterest.com/pin/123/", true, Pinterest, Medium},
		{"tiktok video", "https://www.tiktok.com/@cook/video/1", true, TikTok, Medium},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", true, YouTube, Medium},
		{"recipe site", "https://www.allrecipes.com/recipe/1/pancakes/", true, RecipeWebsite, High},
		{"recipe subdomain", "https://cooking.nytimes.com/recipes/1", true, RecipeWebsite, High},
		{"pdf", "https://example.com/cards/lasagna.PDF", true, PDFDocument, Medium},
		{"general", "https://example.com/recipe", true, GeneralWebsite, Low},
		{"no scheme", "example.com/recipe", false, "", ""},
		{"ftp", "ftp://example.com/file", false, "", ""},
		{"empty", "", false, "", ""},
		{"spaces", "https://exa mple.com", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.url)
			assert.Equal(t, tt.valid, c.IsValid)
			assert.Equal(t, tt.source, c.SourceType)
			assert.Equal(t, tt.confidence, c.Confidence)
		})
	}
}

func TestClassifyWarnsOnlyForGeneralWebsites(t *testing.T) {
	assert.NotEmpty(t, Classify("https://example.com/recipe").Warning)
	assert.Empty(t, Classify("https://www.seriouseats.com/x").Warning)
	assert.Empty(t, Classify("not a url").Warning)
}

func TestSocialBeatsPDF(t *testing.T) {
	c := Classify("https://www.facebook.com/menu.pdf")
	assert.Equal(t, Facebook, c.SourceType)
	assert.True(t, c.SourceType.IsSocial())
	assert.False(t, PDFDocument.IsSocial())
}
