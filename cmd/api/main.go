package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/harshitm/go-catalog-orders/internal/aws"
	"github.com/harshitm/go-catalog-orders/internal/config"
	"github.com/harshitm/go-catalog-orders/internal/handlers"
	"github.com/harshitm/go-catalog-orders/internal/obs"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterProductRoutes(r, cfg)
	handlers.RegisterOrderRoutes(r, cfg)

	return r
}

func main() {
	obs.InitLogger()

	svc := config.Load()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		slog.Error("failed to init aws clients", "err", err)
		os.Exit(1)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:    clients.DynamoDB,
		SQSClient:         clients.SQS,
		CloudWatchClient:  clients.CloudWatch,
		ProductsTable:     svc.ProductsTable,
		ProductNameIndex:  svc.ProductNameIndex,
		OrdersTable:       svc.OrdersTable,
		OrdersByUserIndex: svc.OrdersByUserIndex,
		QueueURL:          svc.OrdersQueueURL,
		MetricsNamespace:  svc.MetricsNamespace,
		DefaultUserID:     svc.DefaultUserID,
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if svc.RunLocal {
		slog.Info("running local server", "addr", svc.HTTPAddr)
		if err := r.Run(svc.HTTPAddr); err != nil {
			slog.Error("failed to run local server", "err", err)
			os.Exit(1)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
