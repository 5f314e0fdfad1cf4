package main // Entry point package

import (
    "context"           // context for background workers and shutdown
    "log"               // Logging library
    "os"                // process signals
    "os/signal"         // graceful shutdown on interrupt
    "syscall"           // SIGTERM for container runtimes
    "time"              // shutdown timeout

    "github.com/joho/godotenv"    // loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/bus-trip-reservation/internal/config"      // Internal config loader
    "github.com/iliyamo/bus-trip-reservation/internal/database"    // MySQL connection pool
    "github.com/iliyamo/bus-trip-reservation/internal/handler"     // HTTP handlers
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"  // rate limit and cache middleware
    "github.com/iliyamo/bus-trip-reservation/internal/queue"       // booking.confirmed consumer
    "github.com/iliyamo/bus-trip-reservation/internal/realtime"    // WebSocket hub
    "github.com/iliyamo/bus-trip-reservation/internal/repository"  // data access layer
    "github.com/iliyamo/bus-trip-reservation/internal/reservation" // seat reservation engine
    "github.com/iliyamo/bus-trip-reservation/internal/router"      // route registration
)

func main() {
    _ = godotenv.Load() // Load .env if present; real env vars win

    cfg := config.Load() // Load environment config

    // Open the MySQL pool.  The ledger, trips and bookings all share it.
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err) // Cannot serve holds without the ledger
    }
    defer db.Close()

    // Redis backs the rate limiter and the browse cache.  A nil
    // client disables both; seat reservation never depends on Redis.
    rdb := config.NewRedisClient()

    hub := realtime.NewHub() // realtime fanout hub, one per process

    ledger := repository.NewSeatLedger(db)            // atomic seat state transitions
    engine := reservation.NewEngine(ledger, hub)      // reservation operations + event emission
    reclaimer := reservation.NewReclaimer(ledger, hub, cfg.SweepInterval) // eager expiry sweep

    trips := repository.NewTripRepo(db)       // trip catalogue and seat grids
    bookings := repository.NewBookingRepo(db) // booking listings

    // Root context cancelled on SIGINT/SIGTERM stops the background workers.
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    go reclaimer.Run(ctx) // expired-hold sweeper

    go func() { // booking.confirmed consumer; reconnects internally
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    e := echo.New()    // Create Echo instance
    e.HideBanner = true

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb) // distributed token bucket
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)        // browse response cache

    router.RegisterRoutes(e, handler.NewHealthHandler(db, hub), handler.NewWSHandler(hub))
    router.RegisterPublic(e, handler.NewPublicHandler(trips, engine), cache)
    router.RegisterPassenger(e, handler.NewBookingHandler(engine, trips, bookings), cfg.JWTSecret, limiter)
    router.RegisterOrganizer(e, handler.NewOrganizerHandler(trips, bookings), cfg.JWTSecret)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    go func() { // Start HTTP server
        if err := e.Start(addr); err != nil {
            log.Printf("server stopped: %v", err)
        }
    }()

    <-ctx.Done() // Wait for shutdown signal

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil { // Drain in-flight requests
        log.Printf("shutdown: %v", err)
    }
}
