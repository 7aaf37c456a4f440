// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/handlers"
	"github.com/danielhkuo/quickly-elect/middleware"
)

// Engine is everything the API needs from the election service
type Engine interface {
	handlers.BallotService
	handlers.ResultsService
}

// NewRouter builds the election service on conn and mounts the API
func NewRouter(conn *sql.DB, cfg cliparse.Config) *fiber.App {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to sqlite dialect")
		dialect = db.SQLite
	}

	svc := election.Open(conn, dialect, election.Options{
		CatalogTTL:    cfg.CatalogTTL,
		Policy:        cfg.TieBreak,
		ResolveClosed: cfg.ResolveClosed,
	})
	return NewApp(svc, cfg)
}

// NewApp mounts the API routes over an engine
func NewApp(engine Engine, cfg cliparse.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "quickly-elect",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("quickly-elect API v1")
	})

	votingHandler := handlers.NewVotingHandler(engine)
	resultsHandler := handlers.NewResultsHandler(engine)

	api := app.Group("/api/v1")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.WithTimeout(cfg.RequestTimeout))
	}

	// Voting operations
	api.Post("/voters/login", votingHandler.Login)
	api.Post("/ballots", middleware.SubmitLimiter(cfg.SubmitRateLimit), votingHandler.SubmitBallot)

	// Results, recomputed on every request
	api.Get("/results", resultsHandler.GetResults)
	api.Get("/positions/:id/results", resultsHandler.GetPositionResults)
	api.Get("/winners", resultsHandler.GetWinners)
	api.Get("/positions/:id/winners", resultsHandler.GetPositionWinners)

	return app
}
