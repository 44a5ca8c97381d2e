package store

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"recipe-extraction-api/internal/recipe"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RecipeModel is the database row for a recipe. List fields are stored as
// JSON text so that sqlite and postgres share one schema.
type RecipeModel struct {
	ID                  string `gorm:"primaryKey;size:36"`
	UserID              string `gorm:"index;not null"`
	SourceURL           string `gorm:"not null"`
	SourceType          string
	Title               string `gorm:"not null"`
	Description         string `gorm:"type:text"`
	Ingredients         string `gorm:"type:text"`
	Instructions        string `gorm:"type:text"`
	PrepTime            string
	CookTime            string
	Servings            int
	Difficulty          string
	Cuisine             string
	Category            string
	DietaryRestrictions string `gorm:"type:text"`
	Tags                string `gorm:"type:text"`
	Calories            int
	ImageURL            string
	ImageURLs           string `gorm:"type:text"`
	Confidence          float64
	Method              string
	IsFavorite          bool `gorm:"default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (RecipeModel) TableName() string {
	return "recipes"
}

// toModel flattens a recipe into a row.
func toModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:                  r.ID,
		UserID:              r.UserID,
		SourceURL:           r.SourceURL,
		SourceType:          r.SourceType,
		Title:               r.Title,
		Description:         r.Description,
		Ingredients:         encodeList(r.Ingredients),
		Instructions:        encodeList(r.Instructions),
		PrepTime:            string(r.PrepTime),
		CookTime:            string(r.CookTime),
		Servings:            r.Servings,
		Difficulty:          string(r.Difficulty),
		Cuisine:             r.Cuisine,
		Category:            r.Category,
		DietaryRestrictions: encodeList(r.DietaryRestrictions),
		Tags:                encodeList(r.Tags),
		Calories:            r.Calories,
		ImageURL:            r.ImageURL,
		ImageURLs:           encodeList(r.ImageURLs),
		Confidence:          r.Confidence,
		Method:              r.Method,
		IsFavorite:          r.IsFavorite,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// toRow hands the stored text to the mapper, which owns decoding.
func (m *RecipeModel) toRow() recipe.Row {
	return recipe.Row{
		ID:                  m.ID,
		UserID:              m.UserID,
		SourceURL:           m.SourceURL,
		SourceType:          m.SourceType,
		Title:               m.Title,
		Description:         m.Description,
		Ingredients:         m.Ingredients,
		Instructions:        m.Instructions,
		PrepTime:            m.PrepTime,
		CookTime:            m.CookTime,
		Servings:            m.Servings,
		Difficulty:          m.Difficulty,
		Cuisine:             m.Cuisine,
		Category:            m.Category,
		DietaryRestrictions: m.DietaryRestrictions,
		Tags:                m.Tags,
		Calories:            m.Calories,
		ImageURL:            m.ImageURL,
		ImageURLs:           m.ImageURLs,
		Confidence:          m.Confidence,
		Method:              m.Method,
		IsFavorite:          m.IsFavorite,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func encodeList(lines []string) string {
	if lines == nil {
		lines = []string{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "[]"
	}
	return string(b)
}
