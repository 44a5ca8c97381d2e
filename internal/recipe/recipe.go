// Package recipe holds the canonical Recipe and the mapping into it.
package recipe

import (
	"errors"
	"time"
)

var ErrInvalidServings = errors.New("servings must be a positive number")

// Difficulty is derived from time and step counts when not supplied.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts any casing. ok is false for unknown values.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(lower(s)); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

const (
	DefaultTitle    = "Untitled Recipe"
	DefaultServings = 4
	DefaultCuisine  = "Other"
	DefaultCategory = "Uncategorized"
)

// Recipe is the canonical recipe as stored and served.
type Recipe struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	SourceURL           string     `json:"sourceUrl"`
	SourceType          string     `json:"sourceType"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Ingredients         []string   `json:"ingredients"`
	Instructions        []string   `json:"instructions"`
	PrepTime            TimeValue  `json:"prepTime"`
	CookTime            TimeValue  `json:"cookTime"`
	Servings            int        `json:"servings"`
	Difficulty          Difficulty `json:"difficulty"`
	Cuisine             string     `json:"cuisine"`
	Category            string     `json:"category"`
	DietaryRestrictions []string   `json:"dietaryRestrictions"`
	Tags                []string   `json:"tags"`
	Calories            int        `json:"calories"`
	ImageURL            string     `json:"imageUrl"`
	ImageURLs           []string   `json:"imageUrls"`
	Confidence          float64    `json:"confidence"`
	Method              string     `json:"method"`
	IsFavorite          bool       `json:"isFavorite"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TotalMinutes is prep plus cook time, counting unknown parts as zero.
func (r *Recipe) TotalMinutes() float64 {
	prep, _ := r.PrepTime.Minutes()
	cook, _ := r.CookTime.Minutes()
	return prep + cook
}
