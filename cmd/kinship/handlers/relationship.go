package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/juruladenbam/bam-sub001/cmd/kinship/service"
	"github.com/juruladenbam/bam-sub001/common/kinship"
	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

// RelationshipAPI is implemented by service.RelationshipService
type RelationshipAPI interface {
	Resolve(ctx context.Context, a, b int64) (*models.Relationship, error)
	GenerationOf(ctx context.Context, personID int64) (*int, error)
	OnGraphMutated(ctx context.Context, personIDs []int64) (*service.MutationResult, error)
	RecomputeGenerations(ctx context.Context) (*service.RecomputeResult, error)
	Stats() service.Stats
}

// RelationshipHandler handles relationship and generation requests
type RelationshipHandler struct {
	svc RelationshipAPI
	log *logger.Logger
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(svc RelationshipAPI, log *logger.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		svc: svc,
		log: log,
	}
}

// GenerationResponse is returned by GetGeneration
type GenerationResponse struct {
	PersonID   int64 `json:"person_id"`
	Generation *int  `json:"generation"`
}

// MutationRequest is the body of a graph mutation hook
type MutationRequest struct {
	PersonIDs []int64 `json:"person_ids"`
}

// GetRelationship resolves what person_b is to person_a
// GET /api/v1/relationships?person_a=1&person_b=2
func (h *RelationshipHandler) GetRelationship(c echo.Context) error {
	a, err := parseID(c.QueryParam("person_a"))
	if err != nil {
		return badRequest(c, "person_a must be a positive integer")
	}
	b, err := parseID(c.QueryParam("person_b"))
	if err != nil {
		return badRequest(c, "person_b must be a positive integer")
	}

	rel, err := h.svc.Resolve(c.Request().Context(), a, b)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rel)
}

// GetGeneration returns a person's generation number
// GET /api/v1/persons/:id/generation
func (h *RelationshipHandler) GetGeneration(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest(c, "person id must be a positive integer")
	}

	gen, err := h.svc.GenerationOf(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, GenerationResponse{PersonID: id, Generation: gen})
}

// PostMutation applies a graph mutation hook from the CRUD layer
// POST /api/v1/graph/mutations
func (h *RelationshipHandler) PostMutation(c echo.Context) error {
	var req MutationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.OnGraphMutated(c.Request().Context(), req.PersonIDs)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// PostRecompute recomputes every generation number
// POST /api/v1/generations/recompute
func (h *RelationshipHandler) PostRecompute(c echo.Context) error {
	res, err := h.svc.RecomputeGenerations(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetStats returns cache and graph statistics
// GET /api/v1/relationships/stats
func (h *RelationshipHandler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Stats())
}

func (h *RelationshipHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, kinship.ErrPersonNotFound):
		return c.JSON(http.StatusNotFound, errorBody("person_not_found", err.Error()))
	case errors.Is(err, service.ErrInvalidPersonID), errors.Is(err, service.ErrNoPersons):
		return badRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, errorBody("timeout", "relationship computation timed out"))
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		return nil
	default:
		h.log.ErrorContext(c.Request().Context(), "request failed",
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, service.ErrInvalidPersonID
	}
	return id, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody("bad_request", msg))
}

func errorBody(code, msg string) map[string]string {
	return map[string]string{
		"error":   code,
		"message": msg,
	}
}
