package recipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extraction-api/internal/extractor"
)

const placeholder = "/static/recipe-placeholder.jpg"

func fixedMapper() *Mapper {
	m := NewMapper(placeholder)
	m.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestFromDraftPasta(t *testing.T) {
	d := &extractor.Draft{
		Title:        "Pasta",
		Ingredients:  []string{"100g pasta"},
		Instructions: []string{"Boil it."},
	}
	r := fixedMapper().FromDraft(d, Meta{ID: "r1", UserID: "u1", SourceURL: "https://example.com/recipe", Method: "json-ld", Confidence: 0.85})

	assert.Equal(t, "Pasta", r.Title)
	assert.Equal(t, []string{"100g pasta"}, r.Ingredients)
	assert.Equal(t, []string{"Boil it."}, r.Instructions)
	assert.Equal(t, "json-ld", r.Method)
	assert.Equal(t, 0.85, r.Confidence)
	assert.Equal(t, Easy, r.Difficulty)
}

func TestFromDraftDefaults(t *testing.T) {
	d := &extractor.Draft{
		Ingredients:  []string{"• 2 cups flour", "• 2 cups flour", "salt"},
		Instructions: []string{"1. mix", ""},
	}
	r := fixedMapper().FromDraft(d, Meta{})

	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, DefaultServings, r.Servings)
	assert.Equal(t, DefaultCuisine, r.Cuisine)
	assert.Equal(t, DefaultCategory, r.Category)
	assert.Equal(t, NotAvailable, r.PrepTime)
	assert.Equal(t, NotAvailable, r.CookTime)
	assert.Equal(t, 0, r.Calories)
	assert.Equal(t, placeholder, r.ImageURL)
	assert.Equal(t, []string{}, r.ImageURLs)
	assert.Equal(t, []string{}, r.Tags)
	assert.Equal(t, []string{"2 cups flour.", "Salt"}, r.Ingredients)
	assert.Equal(t, []string{"Mix."}, r.Instructions)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), r.CreatedAt)
}

func TestFromDraftTimesAndImages(t *testing.T) {
	d := &extractor.Draft{
		Title:        "Roast",
		Ingredients:  []string{"a", "b"},
		Instructions: []string{"c"},
		PrepMinutes:  20,
		CookMinutes:  75,
		Servings:     6,
		Images:       []string{"https://a.example/1.jpg", "https://a.example/2.jpg"},
		Category:     "Dinner",
		Cuisine:      "British",
	}
	r := fixedMapper().FromDraft(d, Meta{})

	assert.Equal(t, TimeValue("20 min"), r.PrepTime)
	assert.Equal(t, TimeValue("1 hr 15 min"), r.CookTime)
	assert.Equal(t, 6, r.Servings)
	assert.Equal(t, "https://a.example/1.jpg", r.ImageURL)
	assert.Len(t, r.ImageURLs, 2)
	assert.Equal(t, 95.0, r.TotalMinutes())
	// Long but short on steps and ingredients.
	assert.Equal(t, Easy, r.Difficulty)
}

func TestFromDraftTotalOnly(t *testing.T) {
	r := fixedMapper().FromDraft(&extractor.Draft{Ingredients: []string{"a"}, Instructions: []string{"b"}, TotalMinutes: 45}, Meta{})
	assert.Equal(t, NotAvailable, r.PrepTime)
	assert.Equal(t, TimeValue("45 min"), r.CookTime)
}

func TestFromRowRoundTrip(t *testing.T) {
	r := fixedMapper().FromRow(Row{
		ID:           "r1",
		Ingredients:  `["a","b"]`,
		Instructions: []any{"x"},
	})
	assert.Equal(t, []string{"a", "b"}, r.Ingredients)
	assert.Equal(t, []string{"x"}, r.Instructions)
}

func TestFromRowCoercion(t *testing.T) {
	r := fixedMapper().FromRow(Row{
		ID:           "r2",
		Title:        "  ",
		Ingredients:  `["broken"`,
		Instructions: "Chop.\nCook.",
		PrepTime:     25.0,
		CookTime:     "soon",
		Servings:     "8",
		Category:     []any{map[string]any{"name": "Soup"}},
		Tags:         []string{"quick"},
		Calories:     "310 kcal",
		ImageURL:     `[{"url":"https://a.example/s.jpg","width":10,"height":10},{"url":"https://a.example/l.jpg","width":900,"height":900}]`,
		Difficulty:   "HARD",
	})

	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, []string{`["broken"`}, r.Ingredients)
	assert.Equal(t, []string{"Chop.", "Cook."}, r.Instructions)
	assert.Equal(t, TimeValue("25"), r.PrepTime)
	assert.Equal(t, NotAvailable, r.CookTime)
	assert.Equal(t, 8, r.Servings)
	assert.Equal(t, "Soup", r.Category)
	assert.Equal(t, DefaultCuisine, r.Cuisine)
	assert.Equal(t, []string{"quick"}, r.Tags)
	assert.Equal(t, []string{}, r.DietaryRestrictions)
	assert.Equal(t, 310, r.Calories)
	assert.Equal(t, "https://a.example/l.jpg", r.ImageURL)
	assert.Equal(t, Hard, r.Difficulty)
}

func TestFromRowKeepsBracketedText(t *testing.T) {
	r := fixedMapper().FromRow(Row{
		ID:           "r4",
		Ingredients:  "[optional] chili flakes [to taste]",
		Instructions: "[Optional] toast the nuts first.\nMix everything [see note]",
	})

	assert.Equal(t, []string{"[optional] chili flakes [to taste]"}, r.Ingredients)
	assert.Equal(t, []string{"[Optional] toast the nuts first.", "Mix everything [see note]"}, r.Instructions)
}

func TestFromRowDefaultsOnGarbage(t *testing.T) {
	r := fixedMapper().FromRow(Row{ID: "r3", Ingredients: true, Instructions: 42.0, PrepTime: nil})

	assert.Equal(t, []string{}, r.Ingredients)
	assert.Equal(t, []string{}, r.Instructions)
	assert.Equal(t, NotAvailable, r.PrepTime)
	assert.Equal(t, DefaultCategory, r.Category)
	assert.Equal(t, placeholder, r.ImageURL)
	assert.Equal(t, Easy, r.Difficulty)
}

func TestDeriveDifficulty(t *testing.T) {
	tests := []struct {
		name         string
		minutes      float64
		instructions int
		ingredients  int
		want         Difficulty
	}{
		{"all low", 20, 3, 4, Easy},
		{"unknown time", 0, 4, 4, Easy},
		{"one medium", 45, 3, 4, Easy},
		{"two medium", 45, 6, 4, Medium},
		{"all medium", 45, 6, 6, Medium},
		{"one hard two medium", 90, 6, 6, Medium},
		{"two hard", 90, 12, 6, Hard},
		{"all hard", 240, 15, 20, Hard},
		{"boundaries", 30, 5, 5, Medium},
		{"upper boundaries", 60, 10, 10, Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDifficulty(tt.minutes, tt.instructions, tt.ingredients))
		})
	}
}

func TestTimeValueJSON(t *testing.T) {
	var v struct {
		Prep TimeValue `json:"prep"`
		Cook TimeValue `json:"cook"`
		Rest TimeValue `json:"rest"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"prep":15,"cook":"PT1H30M","rest":"later"}`), &v))

	assert.Equal(t, TimeValue("15"), v.Prep)
	assert.Equal(t, TimeValue("1 hr 30 min"), v.Cook)
	assert.Equal(t, NotAvailable, v.Rest)

	m, ok := v.Cook.Minutes()
	assert.True(t, ok)
	assert.Equal(t, 90.0, m)
	_, ok = v.Rest.Minutes()
	assert.False(t, ok)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prep":15,"cook":"1 hr 30 min","rest":"N/A"}`, string(out))
}

func TestScale(t *testing.T) {
	r := Recipe{
		Servings: 4,
		Ingredients: []string{
			"2 cups flour.",
			"1 1/2 tsp salt.",
			"½ cup milk",
			"1½ tbsp butter.",
			"3/4 cup sugar.",
			"2-3 cloves garlic.",
			"1.5 l stock.",
			"Pinch of pepper",
			"1,000 g flour",
			"1 ½ cups milk",
			"0,5 l water",
		},
	}

	doubled, err := r.Scale(8)
	require.NoError(t, err)
	assert.Equal(t, 8, doubled.Servings)
	assert.Equal(t, []string{
		"4 cups flour.",
		"3 tsp salt.",
		"1 cup milk",
		"3 tbsp butter.",
		"1 1/2 cup sugar.",
		"4-6 cloves garlic.",
		"3 l stock.",
		"Pinch of pepper",
		"2000 g flour",
		"3 cups milk",
		"1 l water",
	}, doubled.Ingredients)

	assert.Equal(t, "2 cups flour.", r.Ingredients[0], "original untouched")

	halved, err := r.Scale(2)
	require.NoError(t, err)
	assert.Equal(t, "1 cups flour.", halved.Ingredients[0])
	assert.Equal(t, "1/4 cup milk", halved.Ingredients[2])

	_, err = r.Scale(0)
	assert.ErrorIs(t, err, ErrInvalidServings)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1/3", formatQuantity(1.0/3))
	assert.Equal(t, "2 2/3", formatQuantity(8.0/3))
	assert.Equal(t, "1.4", formatQuantity(1.4))
	assert.Equal(t, "3", formatQuantity(2.999))
}
