package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/example/nextchat/middleware/ratelimit"
	"github.com/example/nextchat/modules/api"
	"github.com/example/nextchat/modules/auth"
	"github.com/example/nextchat/modules/broadcast"
	"github.com/example/nextchat/modules/mailer"
	"github.com/example/nextchat/modules/relay"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Missing .env is fine; the environment may be set by the runtime.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	log.Println("=== nextchat server ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register middleware BEFORE regular modules. The limiter is opt-in:
	// without REDIS_ADDR the middleware stays out of the chain entirely.
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		app.Register(ratelimit.New(
			ratelimit.WithRedisAddr(redisAddr),
			ratelimit.WithRedisPassword(os.Getenv("REDIS_PASSWORD")),
		))
	}

	relayModule := relay.NewModule()
	broadcastModule := broadcast.NewModule()
	authModule := auth.NewModule()
	mailerModule := mailer.NewModule()
	apiModule := api.NewModule(listenAddr())

	// The hub and relay cross module boundaries outside the service
	// container, so they are injected manually before start.
	relayModule.SetMemberships(broadcastModule.GetHub())
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetRelay(relayModule.Relay())

	// Order: independent modules first, then modules with dependencies.
	app.Register(relayModule)     // chat event routing + event emitter
	app.Register(broadcastModule) // WebSocket hub + event consumer
	app.Register(authModule)      // accounts + tokens (SQLite via GORM)
	app.Register(mailerModule)    // transactional email
	app.Register(apiModule)       // HTTP/WebSocket gateway

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
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

func listenAddr() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func printStartupInfo() {
	addr := listenAddr()

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket endpoint (ws://localhost%s/ws):", addr)
	log.Println("  Inbound events:  join_room, send_message, typing, stop_typing")
	log.Println("  Outbound events: system_message, receive_message, user_typing")
	log.Println("")
	log.Printf("REST API endpoints (http://localhost%s):", addr)
	log.Println("  GET    /health                              - Health check")
	log.Println("  POST   /api/users                           - Register")
	log.Println("  POST   /api/users/login                     - Login")
	log.Println("  POST   /api/users/logout                    - Logout")
	log.Println("  GET    /api/users/me                        - Current user")
	log.Println("  PUT    /api/users/:id                       - Update account")
	log.Println("  DELETE /api/users/:id                       - Delete account")
	log.Println("  POST   /api/users/forgot-password           - Request reset mail")
	log.Println("  POST   /api/users/reset-password/:token     - Reset password")
	log.Println("  POST   /api/contact                         - Contact form")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
