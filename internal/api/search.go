package api

import (
	"strings"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/search"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// SearchHandler serves semantic search, word indexing, and the local
// embedding model load surface.
type SearchHandler struct {
	svc *search.Service
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type searchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitzero"`
	Threshold float64 `json:"threshold,omitzero"`
	Provider  string  `json:"provider,omitzero"`
}

// Search handles POST /v1/search.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	reqID := requestID(c)

	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, models.NewValidationError("invalid request body", err))
	}
	if strings.TrimSpace(req.Query) == "" {
		return writeError(c, models.NewValidationError("query is required", nil))
	}

	fiberlog.Infof("[%s] search request for %q (provider=%s)", reqID, req.Query, req.Provider)

	results, err := h.svc.Search(c.UserContext(), req.Query, req.Limit, req.Threshold, models.EmbeddingSource(req.Provider), reqID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(results)
}

type indexRequest struct {
	Provider string `json:"provider,omitzero"`
}

// IndexWord handles POST /v1/words/:word/embedding.
func (h *SearchHandler) IndexWord(c *fiber.Ctx) error {
	reqID := requestID(c)

	word := strings.TrimSpace(c.Params("word"))
	if word == "" {
		return writeError(c, models.NewValidationError("word is required", nil))
	}

	var req indexRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, models.NewValidationError("invalid request body", err))
		}
	}

	result, err := h.svc.IndexWord(c.UserContext(), word, models.EmbeddingSource(req.Provider), reqID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"word":      strings.ToLower(word),
		"model":     result.Model,
		"dimension": result.Dimension,
	})
}

type loadModelRequest struct {
	Path string `json:"path"`
}

// LoadModel handles POST /v1/embeddings/model.
func (h *SearchHandler) LoadModel(c *fiber.Ctx) error {
	reqID := requestID(c)

	var req loadModelRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, models.NewValidationError("invalid request body", err))
	}
	if strings.TrimSpace(req.Path) == "" {
		return writeError(c, models.NewValidationError("path is required", nil))
	}

	fiberlog.Infof("[%s] loading local embedding model from %s", reqID, req.Path)

	if err := h.svc.LoadLocalModel(req.Path); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": "loaded", "path": req.Path})
}
