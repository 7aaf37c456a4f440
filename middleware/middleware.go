// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/models"
)

const ReasonTimeout = "timeout"

// HeaderRequestID carries the correlation ID echoed on every response
const HeaderRequestID = "X-Request-ID"

// RequestID keeps a caller-supplied X-Request-ID or generates one
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderRequestID))
		if id == "" || len(id) > 64 {
			var err error
			if id, err = auth.GenerateID(8); err != nil {
				return err
			}
		}
		c.Set(HeaderRequestID, id)
		c.Locals(HeaderRequestID, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(HeaderRequestID).(string)
	return id
}

// RequestLogger logs every request through the global zerolog logger
func RequestLogger() fiber.Handler {
	return fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	})
}

// CORS allows cross-origin requests from the voting frontend
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowCredentials: false,
		AllowMethods:     "GET, POST, OPTIONS",
		AllowHeaders:     "content-type, origin, x-request-id",
		MaxAge:           864000,
	})
}

// WithTimeout puts a deadline on the request's user context
func WithTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SubmitLimiter caps requests per client IP per minute. max <= 0 disables it.
func SubmitLimiter(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   time.Minute,
		KeyGenerator: GetClientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponse(c, fiber.StatusTooManyRequests, "Too many submissions, try again later")
		},
	})
}

// ErrorResponse writes a JSON error response
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Error:   utils.StatusMessage(status),
		Message: message,
	})
}

var reasonStatus = map[string]int{
	models.ReasonNotEligible:       fiber.StatusForbidden,
	models.ReasonPositionClosed:    fiber.StatusConflict,
	models.ReasonConflict:          fiber.StatusConflict,
	models.ReasonInvalidCandidate:  fiber.StatusUnprocessableEntity,
	models.ReasonTooManySelections: fiber.StatusUnprocessableEntity,
	models.ReasonPositionNotFound:  fiber.StatusNotFound,
	models.ReasonStorage:           fiber.StatusServiceUnavailable,
	ReasonTimeout:                  fiber.StatusGatewayTimeout,
}

var reasonMessage = map[string]string{
	models.ReasonNotEligible:       "Voter is not eligible to vote",
	models.ReasonPositionClosed:    "Position is not open for voting",
	models.ReasonConflict:          "A ballot has already been cast for this voter",
	models.ReasonInvalidCandidate:  "Candidate is not valid for this position",
	models.ReasonTooManySelections: "Too many candidates selected for a position",
	models.ReasonPositionNotFound:  "Position not found",
	models.ReasonStorage:           "Storage is unavailable, try again",
	ReasonTimeout:                  "Request timed out, try again",
}

// Reason classifies an engine error, including deadline expiry.
func Reason(err error) string {
	if r := models.ReasonOf(err); r != "" && r != models.ReasonStorage {
		return r
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return models.ReasonOf(err)
}

// StatusForReason maps a reason code to its HTTP status
func StatusForReason(reason string) int {
	if s, ok := reasonStatus[reason]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// RejectionResponse writes the error response for an engine error
func RejectionResponse(c *fiber.Ctx, err error) error {
	reason := Reason(err)
	status := StatusForReason(reason)

	msg, ok := reasonMessage[reason]
	if !ok {
		msg = "Internal error"
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Path()).
			Str("request_id", requestID(c)).
			Str("reason", reason).
			Msg("request failed")
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error:   utils.StatusMessage(status),
		Reason:  reason,
		Message: msg,
	})
}

// ErrorHandler renders errors returned from handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ErrorResponse(c, fe.Code, fe.Message)
	}
	return RejectionResponse(c, err)
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(body, v)
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to the connection
func GetClientIP(c *fiber.Ctx) string {
	// Check X-Forwarded-For (load balancers)
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		// Take first IP in chain
		if i := strings.IndexAny(xff, ", "); i >= 0 {
			return xff[:i]
		}
		return xff
	}

	// Check X-Real-IP (nginx)
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return c.IP()
}
