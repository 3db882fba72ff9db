package models

// Request bodies received from the frontend.

type CreateRecipeRequest struct {
	Title              string       `json:"title"`
	Cuisine            []string     `json:"cuisine"`
	Skill              Skill        `json:"skill"`
	DietaryPreferences []string     `json:"dietaryPreferences"`
	CookingTime        int          `json:"cookingTime"`
	Ingredients        []Ingredient `json:"ingredients"`
	Steps              []string     `json:"steps"`
	Equipment          []string     `json:"equipment"`
	Image              string       `json:"image"`
}

type GenerateRecipeRequest struct {
	Prompt string `json:"prompt"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	ConversationHistory []ChatMessage `json:"conversationHistory"`
	Topic               string        `json:"topic"`
}

type AddFavoriteRequest struct {
	RecipeID string `json:"recipeId"`
}
