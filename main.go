package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/typerush-presence/config"
	"github.com/example/typerush-presence/modules/api"
	"github.com/example/typerush-presence/modules/broadcast"
	"github.com/example/typerush-presence/modules/presence"
	"github.com/example/typerush-presence/modules/stats"
)

func main() {
	log.Println("=== TypeRush Presence Server - Fiber + EventBus ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Create modules
	presenceModule := presence.NewModule(presence.Options{
		AppName:   cfg.AppName,
		AdminName: cfg.AdminName,
		QueueSize: cfg.DispatchQueueSize,
	}, logger.WithModule("presence"))
	broadcastModule := broadcast.NewModule(cfg.SendQueueSize, logger.WithModule("broadcast"))
	statsModule := stats.NewModule(cfg.StatsDBPath, cfg.LeaderboardLimit, logger.WithModule("stats"))
	apiModule := api.NewModule(cfg, logger.WithModule("api"))

	// The hub is the presence gateway and the websocket writer. It is wired
	// by hand because it is not exposed via ServiceContainer.
	presenceModule.SetGateway(broadcastModule.GetHub())
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetDispatcher(presenceModule)

	// Register modules with the framework.
	// - presence: core coordinator (ServiceProviderModule + EventEmitterModule)
	// - broadcast: WebSocket hub
	// - stats: activity history (EventConsumerModule + ServiceProviderModule)
	// - api: Fiber HTTP/WebSocket server, depends on presence and stats
	app.Register(presenceModule)
	app.Register(broadcastModule)
	app.Register(statsModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                            - Health check")
	log.Println("  GET    /api/v1/rooms                      - Occupied rooms")
	log.Println("  GET    /api/v1/rooms/:room/users          - Room members")
	log.Println("  GET    /api/v1/rooms/:room/stats          - Room activity totals")
	log.Println("  GET    /api/v1/rooms/:room/leaderboard    - Best wpm per player")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println(`  Frames: {"event": "<name>", "data": <payload>}`)
	log.Println("  Events: enterRoom, message, activity, change-screen-req, sendwpm")
	if cfg.StaticDir != "" {
		log.Printf("Static files served from %s", cfg.StaticDir)
	}
	log.Printf("Stats database: %s", cfg.StatsDBPath)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
