// Public health check and authenticated profile endpoints.
package app

import (
	"net/http"

	"github.com/kingkey0101/mealmuse-api/app/models"

	"github.com/gin-gonic/gin"
)

// Health is a public health check endpoint.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me returns the caller's tier, usage counters and remaining allowances.
// Premium callers get null limits and remaining fields.
func (a *API) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	profile, err := a.UsageStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	var limits any
	var remaining any
	if profile.Tier == models.TierFree {
		limits = profile.Limits
		remaining = gin.H{
			"recipesThisMonth": nonNegative(profile.Limits.RecipesPerMonth - profile.Usage.RecipesCreatedThisMonth),
			"aiChatsToday":     nonNegative(profile.Limits.AIChatsPerDay - profile.Usage.AIChatsToday),
			"recipeGensToday":  nonNegative(profile.Limits.RecipeGensPerDay - profile.Usage.RecipeGensToday),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":       profile.UserID,
		"email":        profile.Email,
		"tier":         profile.Tier,
		"subscription": profile.Subscription,
		"usage":        profile.Usage,
		"limits":       limits,
		"remaining":    remaining,
	})
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
