package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"chartanalyst/internal/delivery/http/dto"
	"chartanalyst/internal/domain"
	"chartanalyst/internal/middleware"
	"chartanalyst/internal/service"
)

const historyPageSize = 50

// WebHandler serves the upload page and the HTMX state fragment
type WebHandler struct {
	templates *template.Template
	sessions  *service.SessionStore
	history   *service.HistoryService
	maxUpload int64
	model     string
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(
	templates *template.Template,
	sessions *service.SessionStore,
	history *service.HistoryService,
	maxUpload int64,
	model string,
) *WebHandler {
	return &WebHandler{
		templates: templates,
		sessions:  sessions,
		history:   history,
		maxUpload: maxUpload,
		model:     model,
	}
}

type pageData struct {
	Title     string
	Model     string
	MaxUpload string
	State     *dto.StateViewModel
	Items     []dto.HistoryItemViewModel
}

// controller resolves the session controller for the request
func (h *WebHandler) controller(c echo.Context) (*service.SessionController, error) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Session required")
	}
	return h.sessions.GetOrCreate(sessionID), nil
}

// GET / - Render the upload page
func (h *WebHandler) HandleIndex(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	return renderTemplate(c, h.templates, http.StatusOK, "index", pageData{
		Title:     "Analyze",
		Model:     h.model,
		MaxUpload: dto.HumanSize(int(h.maxUpload)),
		State:     dto.NewStateViewModel(ctrl.Snapshot()),
	})
}

// POST /upload - Select a chart file, returns the state fragment
func (h *WebHandler) HandleUpload(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	file, err := readChartUpload(c, h.maxUpload)
	if err != nil {
		// Selection errors leave the session untouched; the fragment shows
		// the message alone
		log.Printf("[WARN] Upload rejected: %v", err)
		return h.renderState(c, dto.NewRejectedUploadViewModel(ctrl.Snapshot(), err))
	}

	ctrl.SelectFile(file)
	return h.renderState(c, dto.NewStateViewModel(ctrl.Snapshot()))
}

// POST /clear - Drop the selected file
func (h *WebHandler) HandleClear(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	ctrl.SelectFile(nil)
	return h.renderState(c, dto.NewStateViewModel(ctrl.Snapshot()))
}

// POST /analyze - Start an analysis, returns the (polling) state fragment
func (h *WebHandler) HandleAnalyze(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}

	if _, err := ctrl.RequestAnalysis(); err != nil && !errors.Is(err, domain.ErrNoFileSelected) {
		log.Printf("ERROR: Failed to start analysis: %v", err)
	}
	return h.renderState(c, dto.NewStateViewModel(ctrl.Snapshot()))
}

// GET /state - Return the state fragment for HTMX polling
func (h *WebHandler) HandleState(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	return h.renderState(c, dto.NewStateViewModel(ctrl.Snapshot()))
}

// GET /history - Render the session's recent analyses
func (h *WebHandler) HandleHistory(c echo.Context) error {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Session required")
	}

	records, err := h.history.ForSession(c.Request().Context(), sessionID, historyPageSize)
	if err != nil {
		log.Printf("ERROR: Failed to load history: %v", err)
		return c.HTML(http.StatusInternalServerError, `<p class="text-rose-400">❌ Error loading history</p>`)
	}

	return renderTemplate(c, h.templates, http.StatusOK, "history", pageData{
		Title: "History",
		Model: h.model,
		Items: dto.NewHistoryItems(records),
	})
}

func (h *WebHandler) renderState(c echo.Context, vm *dto.StateViewModel) error {
	return renderTemplate(c, h.templates, http.StatusOK, "state", vm)
}

// RegisterWebRoutes registers all web routes (HTML pages and fragments)
func RegisterWebRoutes(g *echo.Group, handler *WebHandler) {
	g.GET("/", handler.HandleIndex)
	g.POST("/upload", handler.HandleUpload)
	g.POST("/clear", handler.HandleClear)
	g.POST("/analyze", handler.HandleAnalyze)
	g.GET("/state", handler.HandleState)
	g.GET("/history", handler.HandleHistory)
}
