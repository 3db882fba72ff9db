package models

import "time"

type InteractionType string

const (
	InteractionChefChat         InteractionType = "chef_chat"
	InteractionRecipeGeneration InteractionType = "recipe_generation"
)

// AIInteraction is an append-only log entry for one AI-backed request.
// Rows are never mutated after insert; retention is a store-level TTL.
type AIInteraction struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Type            InteractionType  `json:"type"`
	Prompt          string           `json:"prompt,omitempty"`
	UserQuery       string           `json:"userQuery,omitempty"`
	Response        string           `json:"aiResponse,omitempty"`
	GeneratedRecipe *GeneratedRecipe `json:"generatedRecipe,omitempty"`
	Topic           string           `json:"topic,omitempty"`
	Keywords        []string         `json:"extractedKeywords,omitempty"`
	Model           string           `json:"model"`
	SavedToRecipes  bool             `json:"savedToRecipes,omitempty"`
	RecipeID        string           `json:"recipeId,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
