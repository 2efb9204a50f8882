package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/jitenkr2030/onetap-repost/configs"
	"github.com/jitenkr2030/onetap-repost/internal/api/handlers"
	"github.com/jitenkr2030/onetap-repost/internal/api/middleware"
	job "github.com/jitenkr2030/onetap-repost/internal/jobs"
	"github.com/jitenkr2030/onetap-repost/internal/queue"
	"github.com/jitenkr2030/onetap-repost/internal/repository"
	"github.com/jitenkr2030/onetap-repost/internal/service"
	"github.com/jitenkr2030/onetap-repost/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	jobRepo := repository.NewRepostJobRepository(db)
	postRepo := repository.NewPlatformPostRepository(db)
	listingRepo := repository.NewListingRepository(db)
	accountRepo := repository.NewSocialAccountRepository(db)

	platformService := service.NewPlatformService(*cfg)
	mediaService := service.NewMediaService(*cfg)
	jobService := service.NewJobService(jobRepo, postRepo, listingRepo)

	statsEnqueuer := queue.NewEnqueuer(client)
	statsQueue := queue.NewStatsQueue(postRepo, accountRepo, platformService)

	repostWorker := worker.NewRepostWorker(jobRepo, postRepo, listingRepo, accountRepo,
		platformService, mediaService, statsEnqueuer)
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, accountRepo, platformService)

	c := cron.New()
	c.AddFunc("@every 1m", repostWorker.ProcessPendingJobs)
	c.AddFunc("@every 1h", repostWorker.ProcessRecurringJobs)
	c.AddFunc("0 0 2 * * *", repostWorker.CleanupOldJobs)
	c.AddFunc("@every 1h", refreshTokenJob.RefreshTokens)
	c.Start()

	asynqServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeFetchStats, statsQueue.HandleStatsFetchTask)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Api-Key",
		MaxAge:       3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	jobs := handlers.NewJobHandler(jobService)
	api.Post("/jobs", jobs.CreateJob)
	api.Get("/jobs", jobs.ListJobs)
	api.Post("/jobs/cancel", jobs.CancelJob)
	api.Get("/posts", jobs.ListPosts)
	api.Get("/platforms", jobs.ListPlatforms)

	go func() {
		if err := app.Listen(":3100"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Repost worker is running on http://localhost:3100")

	gracefulShutdown(app, c, asynqServer, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, asynqServer *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down repost worker...")

	// Stop taking new ticks first, then let in-flight work drain.
	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}

	asynqServer.Shutdown()

	closeDB(db)
	log.Println("Repost worker shutdown complete.")
}
