// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// BallotService is the submission side of the engine.
type BallotService interface {
	Login(ctx context.Context, login, credential string) (models.BallotForm, error)
	SubmitBallot(ctx context.Context, login, credential string, b models.Ballot) (models.Receipt, error)
}

type VotingHandler struct {
	svc BallotService
}

func NewVotingHandler(svc BallotService) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// Login handles POST /voters/login
// Returns the ballot form (open positions, seats, active candidates)
func (h *VotingHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Credential == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "login and credential are required")
	}

	form, err := h.svc.Login(c.UserContext(), req.Login, req.Credential)
	if err != nil {
		return middleware.RejectionResponse(c, err)
	}

	return c.JSON(form)
}

// SubmitBallot handles POST /ballots
func (h *VotingHandler) SubmitBallot(c *fiber.Ctx) error {
	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Credential == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "login and credential are required")
	}

	receipt, err := h.svc.SubmitBallot(c.UserContext(), req.Login, req.Credential, req.Ballot())
	if err != nil {
		return middleware.RejectionResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SubmitBallotResponse{
		BallotID:  receipt.BallotID,
		VoteCount: receipt.VoteCount,
		Message:   "Ballot submitted successfully",
	})
}
