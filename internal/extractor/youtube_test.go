package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideos map[string]*Video

func (f fakeVideos) Video(_ context.Context, id string) (*Video, error) {
	if v, ok := f[id]; ok {
		return v, nil
	}
	return nil, errors.New("video not found")
}

func TestExtractVideoID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":                     "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":            "dQw4w9WgXcQ",
		"https://m.youtube.com/embed/dQw4w9WgXcQ":               "dQw4w9WgXcQ",
		"youtube.com/live/dQw4w9WgXcQ":                          "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=short":                 "",
		"https://example.com/watch?v=dQw4w9WgXcQ":               "",
		"https://www.youtube.com/@channel":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, extractVideoID(in), in)
	}
}

func TestVideoDescriptionStrategy(t *testing.T) {
	videos := fakeVideos{
		"dQw4w9WgXcQ": {
			ID:    "dQw4w9WgXcQ",
			Title: "15 Minute Garlic Noodles",
			Description: "My favourite quick dinner!\n\nIngredients\n200g noodles\n4 cloves garlic\n\n" +
				"Method\nBoil the noodles.\nFry the garlic and toss.\n\nMusic: something",
			Tags: []string{"noodles", "garlic", "noodles"},
			Thumbnails: []Thumbnail{
				{URL: "https://i.ytimg.com/vi/x/default.jpg", Width: 120, Height: 90},
				{URL: "https://i.ytimg.com/vi/x/maxres.jpg", Width: 1280, Height: 720},
			},
		},
	}

	o := NewOrchestrator(&staticFetchers{body: "<html><body></body></html>"}, time.Second,
		append(PageStrategies(), VideoDescriptionStrategy(videos))...)

	out, err := o.Run(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false)
	require.NoError(t, err)

	assert.Equal(t, MethodVideoDescription, out.Method)
	assert.Equal(t, 0.6, out.Confidence)
	assert.Len(t, out.Attempts, 4)
	assert.Equal(t, "15 Minute Garlic Noodles", out.Draft.Title)
	assert.Equal(t, []string{"200g noodles", "4 cloves garlic"}, out.Draft.Ingredients)
	assert.Equal(t, []string{"Boil the noodles.", "Fry the garlic and toss."}, out.Draft.Instructions)
	assert.Equal(t, "https://i.ytimg.com/vi/x/maxres.jpg", out.Draft.Images[0])
	assert.Equal(t, []string{"noodles", "garlic"}, out.Draft.Tags)
}

func TestVideoDescriptionWithoutRecipe(t *testing.T) {
	s := VideoDescriptionStrategy(fakeVideos{"dQw4w9WgXcQ": {Title: "Vlog", Description: "Just hanging out."}})

	_, err := s.Extract(context.Background(), Target{URL: "https://youtu.be/dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, ErrNotRecipe)

	_, err = s.Extract(context.Background(), Target{URL: "https://youtu.be/"})
	assert.ErrorIs(t, err, ErrNoVideoID)
}
