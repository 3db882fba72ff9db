// Seeds the recipes table from the Spoonacular catalog. Runs as a scheduled
// Lambda when deployed, or as a one-shot local job otherwise.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/kingkey0101/mealmuse-api/app"
	"github.com/kingkey0101/mealmuse-api/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Spoonacular.APIKey == "" {
		log.Fatal("SPOONACULAR_API_KEY must be set")
	}

	db := app.MustOpenDB(cfg.DB)
	defer db.Close()

	seeder := app.NewSeeder(app.NewSpoonacularClient(cfg.Spoonacular.APIKey), db)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(func(ctx context.Context) (app.SeedResult, error) {
			return seeder.Run(ctx)
		})
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := seeder.Run(ctx)
	if err != nil {
		log.Fatalf("seeding aborted: %v", err)
	}
	log.Printf("seeding done: saved=%d skipped=%d errors=%d took=%s",
		result.SavedCount, result.SkippedCount, len(result.Errors), time.Since(start))
}
