// Recipe persistence and visibility-scoped queries.
package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

const recipeColumns = `
	id, title, cuisine, skill, dietary_preferences, cooking_time,
	ingredients, steps, equipment, image, source_url,
	user_id, source, is_seeded, spoonacular_id, cached_at,
	created_at, updated_at
`

// visibleWhere scopes a query to recipes the caller may see: seeded catalog
// content, their own recipes, or externally sourced catalog entries.
const visibleWhere = `(is_seeded = TRUE OR user_id = $1 OR source = 'spoonacular')`

func (d *DB) ListVisible(ctx context.Context, userID string) ([]models.Recipe, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE `+visibleWhere+`
		ORDER BY created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func (d *DB) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE id = $1;
	`, id)
	return scanRecipe(row)
}

func (d *DB) InsertRecipe(ctx context.Context, r models.Recipe) error {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}

	var spoonacularID sql.NullInt64
	if r.SpoonacularID != 0 {
		spoonacularID = sql.NullInt64{Int64: int64(r.SpoonacularID), Valid: true}
	}
	var cachedAt sql.NullTime
	if r.CachedAt != nil {
		cachedAt = sql.NullTime{Time: *r.CachedAt, Valid: true}
	}

	_, err = d.conn.ExecContext(ctx, `
		INSERT INTO recipes (
			id, title, cuisine, skill, dietary_preferences, cooking_time,
			ingredients, steps, equipment, image, source_url,
			user_id, source, is_seeded, spoonacular_id, cached_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`,
		r.ID, r.Title, pq.Array(r.Cuisine), r.Skill, pq.Array(r.DietaryPreferences), r.CookingTime,
		ingredients, pq.Array(r.Steps), pq.Array(r.Equipment), nullIfEmpty(r.Image), nullIfEmpty(r.SourceURL),
		nullIfEmpty(r.UserID), r.Source, r.IsSeeded, spoonacularID, cachedAt,
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (d *DB) UpdateRecipe(ctx context.Context, id string, upd models.RecipeUpdate) error {
	set := []string{"updated_at = now()"}
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Title != nil {
		set = append(set, "title = "+next(*upd.Title))
	}
	if upd.Cuisine != nil {
		set = append(set, "cuisine = "+next(pq.Array(*upd.Cuisine)))
	}
	if upd.Skill != nil {
		set = append(set, "skill = "+next(*upd.Skill))
	}
	if upd.DietaryPreferences != nil {
		set = append(set, "dietary_preferences = "+next(pq.Array(*upd.DietaryPreferences)))
	}
	if upd.CookingTime != nil {
		set = append(set, "cooking_time = "+next(*upd.CookingTime))
	}
	if upd.Ingredients != nil {
		ingredients, err := json.Marshal(*upd.Ingredients)
		if err != nil {
			return fmt.Errorf("marshal ingredients: %w", err)
		}
		set = append(set, "ingredients = "+next(ingredients))
	}
	if upd.Steps != nil {
		set = append(set, "steps = "+next(pq.Array(*upd.Steps)))
	}
	if upd.Equipment != nil {
		set = append(set, "equipment = "+next(pq.Array(*upd.Equipment)))
	}
	if upd.Image != nil {
		set = append(set, "image = "+next(*upd.Image))
	}

	query := fmt.Sprintf(`
		UPDATE recipes
		SET %s
		WHERE id = %s;
	`, strings.Join(set, ", "), next(id))

	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteRecipe(ctx context.Context, id string) error {
	res, err := d.conn.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchRecipes composes the filter predicate and runs two queries: one
// COUNT for the total and one page fetch, ordered most-recently-cached
// first with creation time as the tiebreak.
func (d *DB) SearchRecipes(ctx context.Context, userID string, f models.SearchFilters) ([]models.Recipe, int, error) {
	where := []string{visibleWhere}
	args := []any{userID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Skill != "" {
		where = append(where, "skill = "+next(strings.ToLower(f.Skill)))
	}
	if f.DietaryPreferences != "" {
		where = append(where, next(f.DietaryPreferences)+" = ANY(dietary_preferences)")
	}
	if f.CookingTime > 0 {
		where = append(where, "cooking_time <= "+next(f.CookingTime))
	}
	if f.Cuisine != "" {
		where = append(where, next(f.Cuisine)+" = ANY(cuisine)")
	}

	predicate := strings.Join(where, " AND ")

	var total int
	err := d.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recipes WHERE "+predicate+";",
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM recipes
		WHERE %s
		ORDER BY cached_at DESC NULLS LAST, created_at DESC
		LIMIT %s OFFSET %s;
	`, recipeColumns, predicate, next(f.Limit), next(f.Offset))

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (d *DB) HasSpoonacularRecipe(ctx context.Context, spoonacularID int) (bool, error) {
	var exists bool
	err := d.conn.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM recipes WHERE spoonacular_id = $1);
	`, spoonacularID).Scan(&exists)
	return exists, err
}

func collectRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	var out []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, recipe)
	}
	return out, rows.Err()
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var (
		r             models.Recipe
		ingredients   []byte
		image         sql.NullString
		sourceURL     sql.NullString
		userID        sql.NullString
		spoonacularID sql.NullInt64
		cachedAt      sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.Title, pq.Array(&r.Cuisine), &r.Skill, pq.Array(&r.DietaryPreferences), &r.CookingTime,
		&ingredients, pq.Array(&r.Steps), pq.Array(&r.Equipment), &image, &sourceURL,
		&userID, &r.Source, &r.IsSeeded, &spoonacularID, &cachedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, err
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
			return models.Recipe{}, fmt.Errorf("unmarshal ingredients: %w", err)
		}
	}
	r.Image = image.String
	r.SourceURL = sourceURL.String
	r.UserID = userID.String
	if spoonacularID.Valid {
		r.SpoonacularID = int(spoonacularID.Int64)
	}
	if cachedAt.Valid {
		t := cachedAt.Time
		r.CachedAt = &t
	}
	return r, nil
}
