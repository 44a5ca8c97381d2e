// Package classifier tags a URL with the kind of source it points at.
// It never touches the network.
package classifier

import (
	"net/url"
	"regexp"
	"strings"
)

// SourceType identifies where a URL points.
type SourceType string

const (
	Instagram      SourceType = "instagram"
	Facebook       SourceType = "facebook"
	Twitter        SourceType = "twitter"
	Pinterest      SourceType = "pinterest"
	TikTok         SourceType = "tiktok"
	YouTube        SourceType = "youtube"
	PDFDocument    SourceType = "pdf-document"
	RecipeWebsite  SourceType = "recipe-website"
	GeneralWebsite SourceType = "general-website"
)

// IsSocial reports whether the source is a social media platform.
func (s SourceType) IsSocial() bool {
	switch s {
	case Instagram, Facebook, Twitter, Pinterest, TikTok, YouTube:
		return true
	}
	return false
}

// Confidence is the tier describing how likely extraction is to work.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

const lowConfidenceWarning = "This doesn't look like a known recipe site. Extraction may be less accurate."

// Classification is the result of Classify.
type Classification struct {
	URL        string     `json:"url"`
	IsValid    bool       `json:"isValid"`
	SourceType SourceType `json:"sourceType,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	Warning    string     `json:"warning,omitempty"`
}

var shapePattern = regexp.MustCompile(`(?i)^https?://[^\s/$.?#][^\s]*$`)

// Checked in order, first match wins.
var socialPatterns = []struct {
	source  SourceType
	pattern *regexp.Regexp
	tier    Confidence
}{
	{Instagram, regexp.MustCompile(`(?i)^https?://(www\.)?(instagram\.com|instagr\.am)/`), High},
	{Facebook, regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)?(facebook\.com|fb\.watch|fb\.com)/`), Medium},
	{Twitter, regexp.MustCompile(`(?i)^https?://(www\.|mobile\.)?(twitter\.com|x\.com)/`), Medium},
	{Pinterest, regexp.MustCompile(`(?i)^https?://([a-z]{2,3}\.|www\.)?(pinterest\.[a-z.]+|pin\.it)/`), Medium},
	{TikTok, regexp.MustCompile(`(?i)^https?://([a-z]+\.)?tiktok\.com/`), Medium},
	{YouTube, regexp.MustCompile(`(?i)^https?://(www\.|m\.)?(youtube\.com|youtu\.be)/`), Medium},
}

// recipeDomains is matched as a plain substring of the lowercased host.
var recipeDomains = []string{
	"allrecipes.com",
	"foodnetwork.com",
	"epicurious.com",
	"bonappetit.com",
	"seriouseats.com",
	"food.com",
	"delish.com",
	"tasty.co",
	"simplyrecipes.com",
	"bbcgoodfood.com",
	"cooking.nytimes.com",
	"thekitchn.com",
	"budgetbytes.com",
	"minimalistbaker.com",
	"smittenkitchen.com",
	"recipetineats.com",
	"cookieandkate.com",
	"pinchofyum.com",
	"halfbakedharvest.com",
	"loveandlemons.com",
	"tasteofhome.com",
	"myrecipes.com",
	"eatingwell.com",
	"bettycrocker.com",
	"kingarthurbaking.com",
	"jamieoliver.com",
	"marthastewart.com",
	"chefkoch.de",
	"marmiton.org",
	"food52.com",
	"thepioneerwoman.com",
	"skinnytaste.com",
}

// Classify validates the URL shape and tags its source.
// An invalid URL yields IsValid=false and nothing else.
func Classify(raw string) Classification {
	raw = strings.TrimSpace(raw)
	c := Classification{URL: raw}
	if !shapePattern.MatchString(raw) {
		return c
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return c
	}
	c.IsValid = true

	for _, p := range socialPatterns {
		if p.pattern.MatchString(raw) {
			c.SourceType = p.source
			c.Confidence = p.tier
			return c
		}
	}

	if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		c.SourceType = PDFDocument
		c.Confidence = Medium
		return c
	}

	host := strings.ToLower(u.Hostname())
	for _, d := range recipeDomains {
		if strings.Contains(host, d) {
			c.SourceType = RecipeWebsite
			c.Confidence = High
			return c
		}
	}

	c.SourceType = GeneralWebsite
	c.Confidence = Low
	c.Warning = lowConfidenceWarning
	return c
}
