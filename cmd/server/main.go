package main

import (
	"log"

	"github.com/kingkey0101/mealmuse-api/app"
	"github.com/kingkey0101/mealmuse-api/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := app.MustOpenDB(cfg.DB)
	defer db.Close()

	app.InitStripe(cfg)

	api := app.NewAPI(cfg, db)
	router, err := app.NewRouter(api)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}
	router.Run("0.0.0.0:" + cfg.Port)
}
