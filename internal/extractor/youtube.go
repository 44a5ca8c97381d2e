package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"recipe-extraction-api/internal/classifier"
	"recipe-extraction-api/internal/normalize"
)

// Thumbnail is one preview image of a video.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// Video is the metadata the video-description strategy reads.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	Tags        []string
	Thumbnails  []Thumbnail
}

// VideoSource looks up video metadata by ID.
type VideoSource interface {
	Video(ctx context.Context, id string) (*Video, error)
}

// YouTubeSource reads videos through the YouTube Data API.
type YouTubeSource struct {
	service *youtube.Service
}

// NewYouTubeSource creates a YouTubeSource authenticated with apiKey.
func NewYouTubeSource(ctx context.Context, apiKey string) (*YouTubeSource, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &YouTubeSource{service: svc}, nil
}

// Video fetches the snippet of one video.
func (s *YouTubeSource) Video(ctx context.Context, id string) (*Video, error) {
	resp, err := s.service.Videos.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube api video details: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, fmt.Errorf("youtube api: no video details found for %s", id)
	}

	sn := resp.Items[0].Snippet
	v := &Video{
		ID:          id,
		Title:       sn.Title,
		Description: sn.Description,
		Channel:     sn.ChannelTitle,
		Tags:        sn.Tags,
	}
	if t := sn.Thumbnails; t != nil {
		for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
			if th != nil && th.Url != "" {
				v.Thumbnails = append(v.Thumbnails, Thumbnail{URL: th.Url, Width: th.Width, Height: th.Height})
			}
		}
	}
	return v, nil
}

// VideoDescriptionStrategy reads a recipe written into a YouTube video
// description.
func VideoDescriptionStrategy(src VideoSource) Strategy {
	return Strategy{
		Name:       MethodVideoDescription,
		Applies:    func(s classifier.SourceType) bool { return s == classifier.YouTube },
		Confidence: fixedConfidence(textConfidence),
		Extract: func(ctx context.Context, t Target) (*Draft, error) {
			id := extractVideoID(t.URL)
			if id == "" {
				return nil, ErrNoVideoID
			}
			v, err := src.Video(ctx, id)
			if err != nil {
				return nil, err
			}
			slog.Debug("Fetched video details", "video_id", id, "title", v.Title, "channel", v.Channel)

			ingredients, instructions := textSections(v.Description)
			if len(ingredients) == 0 && len(instructions) == 0 {
				return nil, ErrNotRecipe
			}

			thumbs := make([]any, 0, len(v.Thumbnails))
			for _, th := range v.Thumbnails {
				thumbs = append(thumbs, map[string]any{"url": th.URL, "width": float64(th.Width), "height": float64(th.Height)})
			}
			return &Draft{
				Title:        normalize.CleanText(v.Title),
				Ingredients:  ingredients,
				Instructions: instructions,
				Images:       normalize.ImageCandidates(thumbs, ""),
				Tags:         dedupe(cleanLines(v.Tags)),
				Raw:          v,
			}, nil
		},
	}
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var youTubeHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
}

// extractVideoID handles watch, short-link, embed, shorts and live URLs.
func extractVideoID(videoURL string) string {
	if !strings.Contains(videoURL, "://") {
		videoURL = "https://" + videoURL
	}
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		return validVideoID(strings.TrimPrefix(u.Path, "/"))
	}
	if !youTubeHosts[host] {
		return ""
	}
	for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/", "/e/"} {
		if strings.HasPrefix(u.Path, prefix) {
			return validVideoID(strings.TrimPrefix(u.Path, prefix))
		}
	}
	return validVideoID(u.Query().Get("v"))
}

func validVideoID(s string) string {
	if i := strings.IndexAny(s, "/?&#"); i != -1 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if videoIDPattern.MatchString(s) {
		return s
	}
	return ""
}
