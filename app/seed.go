// Daily catalog seeding from Spoonacular. Runs on a schedule; each
// cuisine/diet combination is fetched, deduplicated by provider id and
// persisted as immutable seeded content.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var seedCuisines = []string{"Italian", "Mexican", "Chinese", "Japanese", "Indian", "Thai", "French", "American", "Mediterranean", "Korean"}

var seedDiets = []string{"Vegetarian", "Vegan", "Gluten Free", "Dairy Free", "Ketogenic"}

const recipesPerCombination = 10

// Spoonacular's free tier rate ceiling; successive calls are paced.
const defaultSeedDelay = time.Second

// SeedResult summarizes one seeding run.
type SeedResult struct {
	SavedCount   int      `json:"savedCount"`
	SkippedCount int      `json:"skippedCount"`
	Errors       []string `json:"errors,omitempty"`
}

// Seeder walks the cuisine/diet grid and persists new catalog recipes.
type Seeder struct {
	Catalog CatalogClient
	Recipes RecipeStore
	// Delay between successive provider calls; defaults to one second.
	Delay time.Duration
	Now   func() time.Time
}

func NewSeeder(catalog CatalogClient, recipes RecipeStore) *Seeder {
	return &Seeder{
		Catalog: catalog,
		Recipes: recipes,
		Delay:   defaultSeedDelay,
		Now:     time.Now,
	}
}

// Run executes one full seeding pass. A failing combination is recorded and
// skipped, never fatal for the rest of the grid. Only the first five errors
// are reported.
func (s *Seeder) Run(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	var allErrors []string

	for _, cuisine := range seedCuisines {
		for _, diet := range seedDiets {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			recipes, err := s.Catalog.SearchRecipes(ctx, CatalogSearchOptions{
				Cuisine: cuisine,
				Diet:    diet,
				Number:  recipesPerCombination,
			})
			if err != nil {
				allErrors = append(allErrors, fmt.Sprintf("%s %s: %v", cuisine, diet, err))
				s.pace(ctx)
				continue
			}

			for _, sp := range recipes {
				exists, err := s.Recipes.HasSpoonacularRecipe(ctx, sp.ID)
				if err != nil {
					allErrors = append(allErrors, fmt.Sprintf("recipe %d: %v", sp.ID, err))
					continue
				}
				if exists {
					result.SkippedCount++
					continue
				}

				now := s.Now()
				recipe := normalizeSpoonacularRecipe(sp, now)
				recipe.ID = uuid.NewString()
				recipe.IsSeeded = true
				recipe.CreatedAt = now
				recipe.UpdatedAt = now

				if err := s.Recipes.InsertRecipe(ctx, recipe); err != nil {
					allErrors = append(allErrors, fmt.Sprintf("recipe %d: %v", sp.ID, err))
					continue
				}
				result.SavedCount++
			}

			s.pace(ctx)
		}
	}

	log.Printf("daily seeding complete saved=%d skipped=%d errors=%d",
		result.SavedCount, result.SkippedCount, len(allErrors))

	if len(allErrors) > 5 {
		allErrors = allErrors[:5]
	}
	result.Errors = allErrors
	return result, nil
}

func (s *Seeder) pace(ctx context.Context) {
	if s.Delay <= 0 {
		return
	}
	select {
	case <-time.After(s.Delay):
	case <-ctx.Done():
	}
}
