package models

import "time"

// Favorite is a caller-to-recipe bookmark edge. The (UserID, RecipeID) pair
// is unique at the store level.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RecipeID  string    `json:"recipeId"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteEntry is one row of the joined favorites listing.
type FavoriteEntry struct {
	RecipeID  string    `json:"recipeId"`
	CreatedAt time.Time `json:"created_at"`
	Recipe    Recipe    `json:"recipe"`
}
