// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
)

// ResultsService is the read side of the engine.
type ResultsService interface {
	GetTally(ctx context.Context, positionID *models.PositionID) ([]models.PositionTally, error)
	GetWinners(ctx context.Context, positionID *models.PositionID) ([]models.PositionWinners, error)
	Policy() tally.Policy
}

type ResultsHandler struct {
	svc ResultsService
}

func NewResultsHandler(svc ResultsService) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetResults handles GET /results
func (h *ResultsHandler) GetResults(c *fiber.Ctx) error {
	return h.tally(c, nil)
}

// GetPositionResults handles GET /positions/:id/results
func (h *ResultsHandler) GetPositionResults(c *fiber.Ctx) error {
	id, err := positionParam(c)
	if err != nil {
		return err
	}
	return h.tally(c, &id)
}

// GetWinners handles GET /winners
// Provisional while voting is open
func (h *ResultsHandler) GetWinners(c *fiber.Ctx) error {
	return h.winners(c, nil)
}

// GetPositionWinners handles GET /positions/:id/winners
func (h *ResultsHandler) GetPositionWinners(c *fiber.Ctx) error {
	id, err := positionParam(c)
	if err != nil {
		return err
	}
	return h.winners(c, &id)
}

func (h *ResultsHandler) tally(c *fiber.Ctx, id *models.PositionID) error {
	tallies, err := h.svc.GetTally(c.UserContext(), id)
	if err != nil {
		return middleware.RejectionResponse(c, err)
	}
	return c.JSON(models.TallyResponse{Positions: tallies})
}

func (h *ResultsHandler) winners(c *fiber.Ctx, id *models.PositionID) error {
	winners, err := h.svc.GetWinners(c.UserContext(), id)
	if err != nil {
		return middleware.RejectionResponse(c, err)
	}
	return c.JSON(models.WinnersResponse{
		TieBreak:  h.svc.Policy().String(),
		Positions: winners,
	})
}

func positionParam(c *fiber.Ctx) (models.PositionID, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "position id must be a positive integer")
	}
	return models.PositionID(id), nil
}
