package models

import "time"

type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
)

// ValidSkill reports whether s is one of the three recognized levels.
func ValidSkill(s Skill) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type RecipeSource string

const (
	SourceUser        RecipeSource = "user"
	SourceAIGenerated RecipeSource = "ai_generated"
	SourceSpoonacular RecipeSource = "spoonacular"
)

type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type Recipe struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Cuisine            []string     `json:"cuisine"`
	Skill              Skill        `json:"skill"`
	DietaryPreferences []string     `json:"dietaryPreferences"`
	CookingTime        int          `json:"cookingTime"`
	Ingredients        []Ingredient `json:"ingredients"`
	Steps              []string     `json:"steps"`
	Equipment          []string     `json:"equipment,omitempty"`
	Image              string       `json:"image,omitempty"`
	SourceURL          string       `json:"sourceUrl,omitempty"`
	UserID             string       `json:"userId,omitempty"`
	Source             RecipeSource `json:"source"`
	IsSeeded           bool         `json:"isSeeded"`
	SpoonacularID      int          `json:"spoonacularId,omitempty"`
	CachedAt           *time.Time   `json:"cachedAt,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// GeneratedRecipe is the structured shape the AI adapter must produce.
type GeneratedRecipe struct {
	Title              string       `json:"title"`
	Cuisine            []string     `json:"cuisine"`
	Skill              Skill        `json:"skill"`
	DietaryPreferences []string     `json:"dietaryPreferences"`
	CookingTime        int          `json:"cookingTime"`
	Ingredients        []Ingredient `json:"ingredients"`
	Steps              []string     `json:"steps"`
}

// RecipeUpdate carries the allow-listed mutable fields of a recipe.
// Nil pointers mean "leave unchanged".
type RecipeUpdate struct {
	Title              *string       `json:"title,omitempty"`
	Cuisine            *[]string     `json:"cuisine,omitempty"`
	Skill              *Skill        `json:"skill,omitempty"`
	DietaryPreferences *[]string     `json:"dietaryPreferences,omitempty"`
	CookingTime        *int          `json:"cookingTime,omitempty"`
	Ingredients        *[]Ingredient `json:"ingredients,omitempty"`
	Steps              *[]string     `json:"steps,omitempty"`
	Equipment          *[]string     `json:"equipment,omitempty"`
	Image              *string       `json:"image,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u RecipeUpdate) Empty() bool {
	return u.Title == nil && u.Cuisine == nil && u.Skill == nil &&
		u.DietaryPreferences == nil && u.CookingTime == nil &&
		u.Ingredients == nil && u.Steps == nil && u.Equipment == nil &&
		u.Image == nil
}

// SearchFilters enumerates every recognized recipe search filter.
type SearchFilters struct {
	Skill              string
	DietaryPreferences string
	CookingTime        int // inclusive upper bound; 0 means unset
	Cuisine            string
	Limit              int
	Offset             int
}

type SearchResult struct {
	Recipes []Recipe `json:"recipes"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
