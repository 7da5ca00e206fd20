package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/nexvpn/backend/internal/config"
	"github.com/nexvpn/backend/internal/database"
	"github.com/nexvpn/backend/internal/database/migrations"
	"github.com/nexvpn/backend/internal/jobs"
	"github.com/nexvpn/backend/internal/queue"
	"github.com/nexvpn/backend/internal/routes"
	"github.com/nexvpn/backend/internal/services/purchase"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	jobQueue := queue.NewRedisQueue(redisClient)

	purchaseSvc := purchase.NewService(db, cfg.Billing.MinExtraDeviceDays)

	worker := queue.NewWorker(jobQueue, cfg.Billing.WorkerCount)
	if err := jobs.RegisterAllJobHandlers(worker, jobQueue, db, purchaseSvc); err != nil {
		log.Fatalf("Failed to register job handlers: %v", err)
	}
	worker.Start()
	defer worker.Stop()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, db, purchaseSvc)

	fmt.Printf("NexVPN billing API running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
