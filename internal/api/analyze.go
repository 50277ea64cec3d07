package api

import (
	"context"
	"errors"
	"strings"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/analysis"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// AnalyzeHandler serves word analyses and the individual sub-operation
// lookups (synonyms, antonyms, definition).
type AnalyzeHandler struct {
	svc *analysis.Service
}

func NewAnalyzeHandler(svc *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

type analyzeRequest struct {
	Word    string `json:"word"`
	Context string `json:"context,omitzero"`
}

// Analyze handles POST /v1/analyze.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	reqID := requestID(c)

	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, models.NewValidationError("invalid request body", err))
	}
	if strings.TrimSpace(req.Word) == "" {
		return writeError(c, models.NewValidationError("word is required", nil))
	}

	fiberlog.Infof("[%s] analyze request for %q (context=%q)", reqID, req.Word, req.Context)

	result, err := h.svc.Analyze(c.UserContext(), req.Word, req.Context, reqID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// Synonyms handles GET /v1/words/:word/synonyms.
func (h *AnalyzeHandler) Synonyms(c *fiber.Ctx) error {
	return h.relatedWords(c, h.svc.GetSynonyms)
}

// Antonyms handles GET /v1/words/:word/antonyms.
func (h *AnalyzeHandler) Antonyms(c *fiber.Ctx) error {
	return h.relatedWords(c, h.svc.GetAntonyms)
}

// Definition handles GET /v1/words/:word/definition.
func (h *AnalyzeHandler) Definition(c *fiber.Ctx) error {
	reqID := requestID(c)

	word := strings.TrimSpace(c.Params("word"))
	if word == "" {
		return writeError(c, models.NewValidationError("word is required", nil))
	}

	definition, err := h.svc.GetDefinition(c.UserContext(), word, c.Query("part_of_speech"), reqID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"word":       strings.ToLower(word),
		"definition": definition,
	})
}

type relatedWordsFunc func(ctx context.Context, word, wordContext string, limit int, requestID string) ([]models.RelatedWord, error)

func (h *AnalyzeHandler) relatedWords(c *fiber.Ctx, lookup relatedWordsFunc) error {
	reqID := requestID(c)

	word := strings.TrimSpace(c.Params("word"))
	if word == "" {
		return writeError(c, models.NewValidationError("word is required", nil))
	}

	limit := c.QueryInt("limit", 0)

	words, err := lookup(c.UserContext(), word, c.Query("context"), limit, reqID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(words)
}

func requestID(c *fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.GetStatusCode()).JSON(fiber.Map{"error": appErr})
	}
	fiberlog.Errorf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"type": models.ErrorTypeInternal, "message": "internal server error"},
	})
}
