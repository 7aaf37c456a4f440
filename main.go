package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/reuseport"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/logger"
	"github.com/danielhkuo/quickly-elect/router"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing flags")
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	logger.Configure(level, cfg.LogFile)

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid database type")
	}

	dbConn, err := db.Open(cfg.DatabaseURL, dialect)
	if err != nil {
		log.Fatal().Err(err).Str("dialect", string(dialect)).Msg("database connection failed")
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		log.Fatal().Err(err).Msg("schema creation failed")
	}
	log.Info().Str("dialect", string(dialect)).Msg("database schema ready")

	app := router.NewRouter(dbConn, cfg)
	addr := ":" + strconv.Itoa(cfg.Port)

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("tie_break", cfg.TieBreak.String()).
		Dur("catalog_ttl", cfg.CatalogTTL).
		Bool("reuseport", cfg.ReusePort).
		Msg("listening")

	if err := serve(app, addr, cfg.ReusePort); err != nil {
		log.Error().Err(err).Msg("server closed")
		return
	}
	log.Info().Msg("server closed")
}

func serve(app *fiber.App, addr string, reusePort bool) error {
	if !reusePort {
		return app.Listen(addr)
	}

	ln, err := reuseport.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	return app.Listener(ln)
}
