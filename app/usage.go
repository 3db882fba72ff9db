// Tier-based usage accounting and limit enforcement.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

// GetOrCreateProfile looks a profile up by caller id, creating a free-tier
// profile with zeroed usage on first access. Idempotent for existing callers.
func (a *API) GetOrCreateProfile(ctx context.Context, userID, email string) (models.UserProfile, error) {
	profile, err := a.users.GetUser(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.UserProfile{}, err
	}

	now := a.now()
	profile = models.UserProfile{
		UserID: userID,
		Email:  email,
		Tier:   models.TierFree,
		Subscription: models.Subscription{
			Status:    models.SubscriptionInactive,
			StartDate: now,
		},
		Limits: models.FreeLimits(),
		Usage: models.Usage{
			LastResetDate: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.users.InsertUser(ctx, profile); err != nil {
		return models.UserProfile{}, err
	}
	// A concurrent first request may have won the insert; read back the
	// persisted row either way.
	return a.users.GetUser(ctx, userID)
}

// UpdateTier sets the tier and swaps limit thresholds accordingly. A billing
// reference additionally activates the subscription.
func (a *API) UpdateTier(ctx context.Context, userID string, tier models.Tier, stripeCustomerID string) (models.UserProfile, error) {
	return a.users.UpdateUserTier(ctx, userID, tier, models.LimitsForTier(tier), stripeCustomerID)
}

// CheckLimit reports whether the caller may perform one more action of the
// given kind. Premium callers always pass. For free callers a stale
// last_reset_date triggers the daily rollover first, so the next increment
// lands on freshly reset counters. At-limit blocks (used >= limit).
func (a *API) CheckLimit(ctx context.Context, userID string, kind models.LimitKind) (bool, error) {
	profile, err := a.GetOrCreateProfile(ctx, userID, "")
	if err != nil {
		return false, err
	}

	if profile.Tier == models.TierPremium {
		return true, nil
	}

	now := a.now()
	if dayChanged(profile.Usage.LastResetDate, now) {
		if err := a.users.ResetDailyUsage(ctx, userID, now); err != nil {
			return false, err
		}
		profile.Usage.AIChatsToday = 0
		profile.Usage.RecipeGensToday = 0
	}

	switch kind {
	case models.LimitRecipe:
		return profile.Usage.RecipesCreatedThisMonth < profile.Limits.RecipesPerMonth, nil
	case models.LimitAIChat:
		return profile.Usage.AIChatsToday < profile.Limits.AIChatsPerDay, nil
	case models.LimitRecipeGen:
		return profile.Usage.RecipeGensToday < profile.Limits.RecipeGensPerDay, nil
	default:
		return false, fmt.Errorf("unknown limit kind %q", kind)
	}
}

// IncrementUsage bumps the counter for kind by one. Call only after a
// successful CheckLimit and after the gated external call succeeded, so a
// failed AI call never consumes quota. Check and increment are deliberately
// separate store operations; two concurrent requests can both pass the check
// and overshoot the limit by a small margin.
func (a *API) IncrementUsage(ctx context.Context, userID string, kind models.LimitKind) error {
	return a.users.IncrementUsage(ctx, userID, kind)
}

// UsageStats returns the caller's profile with daily counters already rolled
// over, so callers report current usage rather than yesterday's.
func (a *API) UsageStats(ctx context.Context, userID string) (models.UserProfile, error) {
	profile, err := a.GetOrCreateProfile(ctx, userID, "")
	if err != nil {
		return models.UserProfile{}, err
	}
	now := a.now()
	if profile.Tier == models.TierFree && dayChanged(profile.Usage.LastResetDate, now) {
		if err := a.users.ResetDailyUsage(ctx, userID, now); err != nil {
			return models.UserProfile{}, err
		}
		profile.Usage.AIChatsToday = 0
		profile.Usage.RecipeGensToday = 0
		profile.Usage.LastResetDate = now
	}
	return profile, nil
}

// ResetDailyUsage zeroes both daily counters and stamps last_reset_date.
func (a *API) ResetDailyUsage(ctx context.Context, userID string) error {
	return a.users.ResetDailyUsage(ctx, userID, a.now())
}

// dayChanged reports whether a and b fall on different wall-clock days.
func dayChanged(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay != by || am != bm || ad != bd
}
