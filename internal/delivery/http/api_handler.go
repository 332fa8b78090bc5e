package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"chartanalyst/internal/domain"
	"chartanalyst/internal/middleware"
	"chartanalyst/internal/service"
	"chartanalyst/internal/usecase"
)

// AnalyzeRequest is the JSON body of POST /api/analyze
type AnalyzeRequest struct {
	Image string `json:"image"` // data:<mime>;base64,<payload>
	Name  string `json:"name"`
}

// AnalyzeResponse is the data of a successful analysis
type AnalyzeResponse struct {
	ID         *uuid.UUID             `json:"id,omitempty"`
	Model      string                 `json:"model"`
	RiskReward string                 `json:"risk_reward,omitempty"`
	Result     *domain.AnalysisResult `json:"result"`
}

// APIHandler serves the synchronous JSON API
type APIHandler struct {
	analyzer  domain.ChartAnalyzer
	history   *service.HistoryService
	maxUpload int64
	model     string
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(analyzer domain.ChartAnalyzer, history *service.HistoryService, maxUpload int64, model string) *APIHandler {
	return &APIHandler{
		analyzer:  analyzer,
		history:   history,
		maxUpload: maxUpload,
		model:     model,
	}
}

// Analyze handles POST /api/analyze
func (h *APIHandler) Analyze(c echo.Context) error {
	file, err := h.readFile(c)
	if err != nil {
		return h.errorResponse(c, err)
	}

	ctx := c.Request().Context()
	result, err := h.analyzer.Analyze(ctx, file)
	if err != nil {
		log.Printf("ERROR: API analysis of %s failed: %v", file.Name, err)
		return h.errorResponse(c, err)
	}

	resp := AnalyzeResponse{Model: h.model, Result: result}
	if ratio, ok := result.RiskReward(); ok {
		resp.RiskReward = ratio.String()
	}

	sessionID, _ := middleware.GetSessionID(c)
	// The client may be gone already, the record should still be written
	record, err := h.history.Record(context.WithoutCancel(ctx), sessionID, file, result)
	if err != nil {
		log.Printf("[WARN] Analysis succeeded but was not recorded: %v", err)
	} else {
		resp.ID = &record.ID
	}

	return SuccessMessageResponse(c, "Chart analyzed", resp)
}

// GetHistory handles GET /api/history?limit=N, scoped to the caller's session
func (h *APIHandler) GetHistory(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return ErrorResponse(c, http.StatusUnauthorized, "Session required", nil)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return BadRequestResponse(c, "limit must be a number")
		}
		limit = n
	}

	records, err := h.history.ForSession(c.Request().Context(), sessionID, limit)
	if err != nil {
		log.Printf("ERROR: Failed to load history: %v", err)
		return InternalServerErrorResponse(c, "Failed to load history")
	}
	if records == nil {
		records = []*domain.AnalysisRecord{}
	}
	return SuccessResponse(c, records)
}

// GetHistoryItem handles GET /api/history/:id. Records of other sessions are
// reported as not found.
func (h *APIHandler) GetHistoryItem(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return ErrorResponse(c, http.StatusUnauthorized, "Session required", nil)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid analysis ID")
	}

	record, err := h.history.Get(c.Request().Context(), sessionID, id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			return NotFoundResponse(c, "Analysis not found")
		}
		log.Printf("ERROR: Failed to load analysis %s: %v", id, err)
		return InternalServerErrorResponse(c, "Failed to load analysis")
	}
	return SuccessResponse(c, record)
}

// readFile accepts either a multipart upload or a JSON data URI
func (h *APIHandler) readFile(c echo.Context) (*domain.ChartFile, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return readChartUpload(c, h.maxUpload)
	}

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		return nil, domain.ErrNoFileSelected
	}

	part, err := usecase.ParseDataURI(strings.TrimSpace(req.Image))
	if err != nil {
		return nil, err
	}
	data, err := usecase.DecodePart(part)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = "upload"
	}
	return domain.NewChartFile(name, part.MIMEType, data, h.maxUpload)
}

func (h *APIHandler) errorResponse(c echo.Context, err error) error {
	return ErrorResponse(c, statusFor(err), domain.UserMessage(err), nil)
}

// RegisterAPIRoutes registers the JSON API
func RegisterAPIRoutes(g *echo.Group, handler *APIHandler) {
	g.POST("/analyze", handler.Analyze)
	g.GET("/history", handler.GetHistory)
	g.GET("/history/:id", handler.GetHistoryItem)
}
