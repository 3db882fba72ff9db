// Package models defines user tier, subscription and usage tracking fields.
package models

import "time"

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// LimitKind names one independently quota-tracked action.
type LimitKind string

const (
	LimitRecipe    LimitKind = "recipe"
	LimitAIChat    LimitKind = "aiChat"
	LimitRecipeGen LimitKind = "recipeGen"
)

// Free tier defaults. Premium uses UnlimitedSentinel for every limit.
const (
	FreeRecipesPerMonth  = 5
	FreeAIChatsPerDay    = 3
	FreeRecipeGensPerDay = 1
	UnlimitedSentinel    = 999999
)

type Subscription struct {
	Status           SubscriptionStatus `json:"status"`
	StartDate        time.Time          `json:"startDate"`
	RenewalDate      *time.Time         `json:"renewalDate,omitempty"`
	CanceledAt       *time.Time         `json:"canceledAt,omitempty"`
	StripeCustomerID string             `json:"stripeCustomerId,omitempty"`
}

type Limits struct {
	RecipesPerMonth  int `json:"recipesPerMonth"`
	AIChatsPerDay    int `json:"aiChefChatsPerDay"`
	RecipeGensPerDay int `json:"recipeGenerationsPerDay"`
}

type Usage struct {
	RecipesCreatedThisMonth int       `json:"recipesCreatedThisMonth"`
	AIChatsToday            int       `json:"aiChefChatsToday"`
	RecipeGensToday         int       `json:"recipeGenerationsToday"`
	LastResetDate           time.Time `json:"lastResetDate"`
}

type UserProfile struct {
	UserID       string       `json:"userId"`
	Email        string       `json:"email,omitempty"`
	Tier         Tier         `json:"tier"`
	Subscription Subscription `json:"subscription"`
	Limits       Limits       `json:"limits"`
	Usage        Usage        `json:"usage"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FreeLimits returns the fixed free-tier thresholds.
func FreeLimits() Limits {
	return Limits{
		RecipesPerMonth:  FreeRecipesPerMonth,
		AIChatsPerDay:    FreeAIChatsPerDay,
		RecipeGensPerDay: FreeRecipeGensPerDay,
	}
}

// PremiumLimits returns the effectively-unlimited premium thresholds.
func PremiumLimits() Limits {
	return Limits{
		RecipesPerMonth:  UnlimitedSentinel,
		AIChatsPerDay:    UnlimitedSentinel,
		RecipeGensPerDay: UnlimitedSentinel,
	}
}

// LimitsForTier maps a tier to its thresholds.
func LimitsForTier(tier Tier) Limits {
	if tier == TierPremium {
		return PremiumLimits()
	}
	return FreeLimits()
}
