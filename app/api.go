// Package app implements the MealMuse backend: recipe CRUD and search,
// tier-based usage limiting, favorites, AI enrichment and catalog seeding.
package app

import (
	"context"
	"time"

	"github.com/kingkey0101/mealmuse-api/app/config"
	"github.com/kingkey0101/mealmuse-api/app/models"
)

// UserStore persists user profiles and their usage counters.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (models.UserProfile, error)
	InsertUser(ctx context.Context, profile models.UserProfile) error
	UpdateUserTier(ctx context.Context, userID string, tier models.Tier, limits models.Limits, stripeCustomerID string) (models.UserProfile, error)
	IncrementUsage(ctx context.Context, userID string, kind models.LimitKind) error
	ResetDailyUsage(ctx context.Context, userID string, now time.Time) error
	SetStripeCustomer(ctx context.Context, userID, customerID string) error
	UserIDByStripeCustomer(ctx context.Context, customerID string) (string, error)
}

// RecipeStore persists recipes and runs visibility-scoped queries.
type RecipeStore interface {
	ListVisible(ctx context.Context, userID string) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	InsertRecipe(ctx context.Context, recipe models.Recipe) error
	UpdateRecipe(ctx context.Context, id string, upd models.RecipeUpdate) error
	DeleteRecipe(ctx context.Context, id string) error
	SearchRecipes(ctx context.Context, userID string, f models.SearchFilters) ([]models.Recipe, int, error)
	HasSpoonacularRecipe(ctx context.Context, spoonacularID int) (bool, error)
}

// FavoriteStore persists caller-to-recipe bookmark edges.
type FavoriteStore interface {
	HasFavorite(ctx context.Context, userID, recipeID string) (bool, error)
	InsertFavorite(ctx context.Context, fav models.Favorite) (bool, error)
	DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error)
	ListFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, error)
}

// InteractionStore appends AI interaction log records.
type InteractionStore interface {
	InsertInteraction(ctx context.Context, rec models.AIInteraction) error
}

// AIClient produces recipe generations and chef chat replies.
type AIClient interface {
	GenerateRecipe(ctx context.Context, prompt string) (*models.GeneratedRecipe, error)
	Chat(ctx context.Context, history []models.ChatMessage) (string, error)
	Model() string
}

// CatalogClient searches the external recipe catalog provider.
type CatalogClient interface {
	SearchRecipes(ctx context.Context, opts CatalogSearchOptions) ([]SpoonacularRecipe, error)
}

// API holds the request handlers and their injected collaborators.
type API struct {
	cfg          *config.Config
	users        UserStore
	recipes      RecipeStore
	favorites    FavoriteStore
	interactions InteractionStore
	ai           AIClient
	catalog      CatalogClient
	now          func() time.Time
}

// NewAPI wires the handlers to a store and the external adapters.
func NewAPI(cfg *config.Config, db *DB) *API {
	return &API{
		cfg:          cfg,
		users:        db,
		recipes:      db,
		favorites:    db,
		interactions: db,
		ai:           NewGroqClient(cfg.Groq),
		catalog:      NewSpoonacularClient(cfg.Spoonacular.APIKey),
		now:          time.Now,
	}
}
