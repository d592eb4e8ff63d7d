package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for the DB connection pool

	"github.com/joho/godotenv"    // Load .env files into the process environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/flight-booking/internal/config"   // Internal config loader
	"github.com/iliyamo/flight-booking/internal/database" // MySQL connection pool
	"github.com/iliyamo/flight-booking/internal/handler"  // HTTP handlers
	"github.com/iliyamo/flight-booking/internal/queue"    // RabbitMQ ticket event consumer
	"github.com/iliyamo/flight-booking/internal/repository"
	"github.com/iliyamo/flight-booking/internal/router" // Internal router setup
)

func main() {
	// .env is optional; in containers configuration arrives through real
	// environment variables.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(database.Settings{
		User:         cfg.DBUser,
		Pass:         cfg.DBPass,
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		Name:         cfg.DBName,
		MaxOpenConns: cfg.DBMaxOpen,
		MaxIdleConns: cfg.DBMaxIdle,
		ConnLifetime: time.Duration(cfg.DBConnLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A missing Redis
	// is tolerated: NewRedisClient returns nil and the middleware is skipped.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	flights := repository.NewFlightRepo(db)
	tickets := repository.NewTicketRepo(db)
	privilege := repository.NewPrivilegeRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	flightH := handler.NewFlightHandler(flights)
	routeH := handler.NewRouteHandler(flights)
	ticketH := handler.NewTicketHandler(db, tickets, flights, privilege)
	privilegeH := handler.NewPrivilegeHandler(privilege, users, ticketH)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterFlights(e, flightH, routeH, rdb)
	router.RegisterBooking(e, ticketH, privilegeH, cfg.JWTSecret)

	// The consumer keeps its own reconnect loop; losing the broker must not
	// take the API down.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
