// Favorites persistence. The UNIQUE(user_id, recipe_id) index is the
// duplicate-prevention backstop under concurrent adds.
package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

func (d *DB) HasFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	var exists bool
	err := d.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_favorites WHERE user_id = $1 AND recipe_id = $2
		);
	`, userID, recipeID).Scan(&exists)
	return exists, err
}

// InsertFavorite reports whether a new edge was created. ON CONFLICT DO
// NOTHING absorbs the race between check and insert.
func (d *DB) InsertFavorite(ctx context.Context, fav models.Favorite) (bool, error) {
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO user_favorites (id, user_id, recipe_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, recipe_id) DO NOTHING;
	`, fav.ID, fav.UserID, fav.RecipeID, fav.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (d *DB) DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		DELETE FROM user_favorites WHERE user_id = $1 AND recipe_id = $2;
	`, userID, recipeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListFavorites joins each edge against its recipe, newest favorite first.
func (d *DB) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT f.recipe_id, f.created_at,
		       r.id, r.title, r.cuisine, r.skill, r.dietary_preferences, r.cooking_time,
		       r.ingredients, r.steps, r.equipment, r.image, r.source_url,
		       r.user_id, r.source, r.is_seeded, r.spoonacular_id, r.cached_at,
		       r.created_at, r.updated_at
		FROM user_favorites f
		JOIN recipes r ON r.id = f.recipe_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.FavoriteEntry{}
	for rows.Next() {
		var (
			entry         models.FavoriteEntry
			r             models.Recipe
			ingredients   []byte
			image         sql.NullString
			sourceURL     sql.NullString
			ownerID       sql.NullString
			spoonacularID sql.NullInt64
			cachedAt      sql.NullTime
		)
		err := rows.Scan(
			&entry.RecipeID, &entry.CreatedAt,
			&r.ID, &r.Title, pq.Array(&r.Cuisine), &r.Skill, pq.Array(&r.DietaryPreferences), &r.CookingTime,
			&ingredients, pq.Array(&r.Steps), pq.Array(&r.Equipment), &image, &sourceURL,
			&ownerID, &r.Source, &r.IsSeeded, &spoonacularID, &cachedAt,
			&r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(ingredients) > 0 {
			if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
				return nil, fmt.Errorf("unmarshal ingredients: %w", err)
			}
		}
		r.Image = image.String
		r.SourceURL = sourceURL.String
		r.UserID = ownerID.String
		if spoonacularID.Valid {
			r.SpoonacularID = int(spoonacularID.Int64)
		}
		if cachedAt.Valid {
			t := cachedAt.Time
			r.CachedAt = &t
		}
		entry.Recipe = r
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
