package main

import (
	"context"
	"log"

	"github.com/kingkey0101/mealmuse-api/app"
	"github.com/kingkey0101/mealmuse-api/app/config"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := app.MustOpenDB(cfg.DB)
	app.InitStripe(cfg)

	api := app.NewAPI(cfg, db)
	router, err := app.NewRouter(api)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}

	// Wrap the shared Gin router with the Lambda adapter
	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
