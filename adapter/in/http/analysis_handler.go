package http

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"quickmail_server/core/domain"
	"quickmail_server/core/port/in"
	"quickmail_server/core/port/out"
	"quickmail_server/pkg/apperr"
	"quickmail_server/pkg/response"
)

const (
	maxAttachmentSize = 10 * 1024 * 1024 // 10MB
	maxContentLength  = 10000
)

// AnalysisHandler exposes the analysis pipeline and stored results over HTTP.
type AnalysisHandler struct {
	service   in.AnalysisService
	repo      out.AnalysisRepository
	debugMode bool
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(service in.AnalysisService, repo out.AnalysisRepository, debugMode bool) *AnalysisHandler {
	return &AnalysisHandler{
		service:   service,
		repo:      repo,
		debugMode: debugMode,
	}
}

// Register mounts the analysis routes.
func (h *AnalysisHandler) Register(app fiber.Router) {
	app.Post("/analyzis", h.Analyze)
	app.Get("/list", h.List)
	app.Post("/delete/:id", h.Delete)
}

// analyzeRequest is the JSON request body for /analyzis.
type analyzeRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// analyzeResponse mirrors the original API contract. ProcessedContent is
// only populated in debug mode.
type analyzeResponse struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	SuggestedReply   string  `json:"suggested_reply"`
	ProcessedContent string  `json:"processed_content,omitempty"`
}

// Analyze accepts either a JSON body or a multipart form with an optional
// PDF/TXT file, runs the pipeline, and persists the completed record.
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return err
	}

	record, err := h.service.Analyze(c.Context(), *input)
	if err != nil {
		return err
	}

	// Persistence happens only after the pipeline completes.
	id, err := h.repo.Save(c.Context(), record)
	if err != nil {
		return err
	}
	record.ID = id

	resp := analyzeResponse{
		ID:             record.ID,
		Category:       string(record.Category),
		Confidence:     record.Confidence,
		SuggestedReply: record.SuggestedReply,
	}
	if h.debugMode {
		resp.ProcessedContent = record.NormalizedText
	}

	return response.OK(c, resp)
}

// parseInput builds the pipeline input from either request encoding.
func (h *AnalysisHandler) parseInput(c *fiber.Ctx) (*domain.RawEmailInput, error) {
	input := &domain.RawEmailInput{}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		input.Sender = c.FormValue("email")
		input.Subject = c.FormValue("subject")
		input.Body = c.FormValue("content")

		fileHeader, err := c.FormFile("file")
		if err == nil && fileHeader != nil {
			if fileHeader.Size > maxAttachmentSize {
				return nil, apperr.ValidationFailed("attachment exceeds the size limit")
			}
			mediaType, err := mediaTypeFromUpload(fileHeader.Filename)
			if err != nil {
				return nil, err
			}
			file, err := fileHeader.Open()
			if err != nil {
				return nil, apperr.BadRequest("cannot read uploaded file")
			}
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return nil, apperr.BadRequest("cannot read uploaded file")
			}
			input.Attachment = &domain.Attachment{MediaType: mediaType, Data: data}
		}
	} else {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, apperr.BadRequest("invalid request body")
		}
		input.Sender = req.Email
		input.Subject = req.Subject
		input.Body = req.Content
	}

	if strings.TrimSpace(input.Sender) == "" {
		return nil, apperr.MissingField("email")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperr.MissingField("subject")
	}
	if strings.TrimSpace(input.Body) == "" && input.Attachment == nil {
		return nil, apperr.MissingField("content")
	}
	if len(input.Body) > maxContentLength {
		return nil, apperr.ValidationFailed("content exceeds the maximum length")
	}

	return input, nil
}

// mediaTypeFromUpload resolves the closed media type tag from the uploaded
// filename. Anything that is not .pdf or .txt is rejected up front.
func mediaTypeFromUpload(filename string) (domain.MediaType, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return domain.MediaTypePDF, nil
	case strings.HasSuffix(name, ".txt"):
		return domain.MediaTypePlainText, nil
	default:
		return "", apperr.UnsupportedMediaType(filename)
	}
}

// List returns a page of stored analyses, excluding soft-deleted ones.
func (h *AnalysisHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 10)
	if page < 1 || perPage < 1 || perPage > 100 {
		return apperr.ValidationFailed("invalid pagination parameters")
	}

	result, err := h.repo.List(c.Context(), page, perPage)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, result.Records, &response.Meta{
		Total:    int(result.Total),
		Page:     result.Page,
		PageSize: result.PerPage,
	})
}

// Delete soft-deletes a stored analysis.
func (h *AnalysisHandler) Delete(c *fiber.Ctx) error {
	if err := h.repo.SoftDelete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"deleted": true})
}
