// User profile persistence. One row per caller identity; usage counters and
// limit thresholds are flattened onto the row.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

const userColumns = `
	user_id, email, tier,
	sub_status, sub_start_date, sub_renewal_date, sub_canceled_at, stripe_customer_id,
	recipes_per_month, ai_chats_per_day, recipe_gens_per_day,
	recipes_created_this_month, ai_chats_today, recipe_gens_today, last_reset_date,
	created_at, updated_at
`

func (d *DB) GetUser(ctx context.Context, userID string) (models.UserProfile, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_id = $1;
	`, userID)
	return scanUser(row)
}

func (d *DB) InsertUser(ctx context.Context, p models.UserProfile) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO users (
			user_id, email, tier,
			sub_status, sub_start_date, stripe_customer_id,
			recipes_per_month, ai_chats_per_day, recipe_gens_per_day,
			recipes_created_this_month, ai_chats_today, recipe_gens_today, last_reset_date,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id) DO NOTHING;
	`,
		p.UserID,
		nullIfEmpty(p.Email),
		p.Tier,
		p.Subscription.Status,
		p.Subscription.StartDate,
		nullIfEmpty(p.Subscription.StripeCustomerID),
		p.Limits.RecipesPerMonth,
		p.Limits.AIChatsPerDay,
		p.Limits.RecipeGensPerDay,
		p.Usage.RecipesCreatedThisMonth,
		p.Usage.AIChatsToday,
		p.Usage.RecipeGensToday,
		p.Usage.LastResetDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (d *DB) UpdateUserTier(ctx context.Context, userID string, tier models.Tier, limits models.Limits, stripeCustomerID string) (models.UserProfile, error) {
	var row *sql.Row
	if stripeCustomerID != "" {
		// A billing reference also activates the subscription and stamps a
		// fresh start date.
		row = d.conn.QueryRowContext(ctx, `
			UPDATE users
			SET tier = $1,
			    recipes_per_month = $2,
			    ai_chats_per_day = $3,
			    recipe_gens_per_day = $4,
			    stripe_customer_id = $5,
			    sub_status = $6,
			    sub_start_date = now(),
			    updated_at = now()
			WHERE user_id = $7
			RETURNING `+userColumns+`;
		`, tier, limits.RecipesPerMonth, limits.AIChatsPerDay, limits.RecipeGensPerDay,
			stripeCustomerID, models.SubscriptionActive, userID)
	} else {
		row = d.conn.QueryRowContext(ctx, `
			UPDATE users
			SET tier = $1,
			    recipes_per_month = $2,
			    ai_chats_per_day = $3,
			    recipe_gens_per_day = $4,
			    updated_at = now()
			WHERE user_id = $5
			RETURNING `+userColumns+`;
		`, tier, limits.RecipesPerMonth, limits.AIChatsPerDay, limits.RecipeGensPerDay, userID)
	}
	return scanUser(row)
}

func (d *DB) IncrementUsage(ctx context.Context, userID string, kind models.LimitKind) error {
	column, err := usageColumn(kind)
	if err != nil {
		return err
	}
	_, err = d.conn.ExecContext(ctx, `
		UPDATE users
		SET `+column+` = `+column+` + 1, updated_at = now()
		WHERE user_id = $1;
	`, userID)
	return err
}

func (d *DB) ResetDailyUsage(ctx context.Context, userID string, now time.Time) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE users
		SET ai_chats_today = 0,
		    recipe_gens_today = 0,
		    last_reset_date = $1,
		    updated_at = now()
		WHERE user_id = $2;
	`, now, userID)
	return err
}

func (d *DB) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE users
		SET stripe_customer_id = $1, updated_at = now()
		WHERE user_id = $2;
	`, customerID, userID)
	return err
}

func (d *DB) UserIDByStripeCustomer(ctx context.Context, customerID string) (string, error) {
	var userID string
	err := d.conn.QueryRowContext(ctx, `
		SELECT user_id
		FROM users
		WHERE stripe_customer_id = $1;
	`, customerID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func usageColumn(kind models.LimitKind) (string, error) {
	switch kind {
	case models.LimitRecipe:
		return "recipes_created_this_month", nil
	case models.LimitAIChat:
		return "ai_chats_today", nil
	case models.LimitRecipeGen:
		return "recipe_gens_today", nil
	default:
		return "", fmt.Errorf("unknown limit kind %q", kind)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.UserProfile, error) {
	var (
		p          models.UserProfile
		email      sql.NullString
		renewal    sql.NullTime
		canceledAt sql.NullTime
		stripeID   sql.NullString
	)
	err := row.Scan(
		&p.UserID, &email, &p.Tier,
		&p.Subscription.Status, &p.Subscription.StartDate, &renewal, &canceledAt, &stripeID,
		&p.Limits.RecipesPerMonth, &p.Limits.AIChatsPerDay, &p.Limits.RecipeGensPerDay,
		&p.Usage.RecipesCreatedThisMonth, &p.Usage.AIChatsToday, &p.Usage.RecipeGensToday, &p.Usage.LastResetDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	p.Email = email.String
	if renewal.Valid {
		p.Subscription.RenewalDate = &renewal.Time
	}
	if canceledAt.Valid {
		p.Subscription.CanceledAt = &canceledAt.Time
	}
	p.Subscription.StripeCustomerID = stripeID.String
	return p, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
