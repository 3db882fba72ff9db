// AI interaction log. Rows are append-only; retention is handled by a
// store-level TTL policy, not by this code.
package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

func (d *DB) InsertInteraction(ctx context.Context, rec models.AIInteraction) error {
	var generated []byte
	if rec.GeneratedRecipe != nil {
		var err error
		generated, err = json.Marshal(rec.GeneratedRecipe)
		if err != nil {
			return fmt.Errorf("marshal generated recipe: %w", err)
		}
	}

	var recipeJSON any
	if generated != nil {
		recipeJSON = generated
	}

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO ai_interactions (
			id, user_id, type, prompt, user_query, response, generated_recipe,
			topic, keywords, model, saved_to_recipes, recipe_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`,
		rec.ID, rec.UserID, rec.Type,
		nullIfEmpty(rec.Prompt), nullIfEmpty(rec.UserQuery), nullIfEmpty(rec.Response), recipeJSON,
		nullIfEmpty(rec.Topic), pq.Array(rec.Keywords), rec.Model,
		rec.SavedToRecipes, nullIfEmpty(rec.RecipeID), rec.CreatedAt,
	)
	return err
}
