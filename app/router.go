// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"github.com/kingkey0101/mealmuse-api/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(api *API) (*gin.Engine, error) {
	router := gin.Default()

	allowOrigin := api.cfg.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{allowOrigin},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", api.Health)
	router.GET("/recipes/:id", api.GetRecipeByID)
	router.POST("/api/stripe/webhook", api.StripeWebhook)

	verifier, err := auth.NewVerifierFromConfig(api.cfg.JWT)
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{
		DisableAuth: auth.AuthDisabled(),
		OnAuthenticated: func(c *gin.Context, claims *auth.Claims) error {
			_, err := api.GetOrCreateProfile(c.Request.Context(), claims.UserID, claims.Email)
			return err
		},
	}))
	protected.GET("/me", api.Me)

	protected.GET("/recipes", api.ListRecipes)
	protected.GET("/recipes/search", api.SearchRecipes)
	protected.POST("/recipes", api.CreateRecipe)
	protected.PUT("/recipes/:id", api.UpdateRecipe)
	protected.DELETE("/recipes/:id", api.DeleteRecipe)
	protected.POST("/recipes/generate", api.GenerateRecipe)

	protected.POST("/chat", api.ChatWithChef)

	protected.GET("/favorites", api.ListFavorites)
	protected.GET("/favorites/:recipeId", api.CheckFavorite)
	protected.POST("/favorites", api.AddFavorite)
	protected.DELETE("/favorites/:recipeId", api.RemoveFavorite)

	protected.POST("/api/billing/create-checkout-session", api.CreateCheckoutSession)
	protected.POST("/api/billing/portal-session", api.CreatePortalSession)
	protected.POST("/api/billing/update-plan", api.UpdateUserTier)

	return router, nil
}
