package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/logger"
)

// MissingURLMessage is returned when /api/screen is called without ?url=
const MissingURLMessage = "Missing ?url= parameter"

// Runner is the part of the screener the handlers need
type Runner interface {
	Screen(ctx context.Context, sourceURL string) (*contracts.ScreenResult, error)
	Tickers(ctx context.Context, sourceURL string) ([]string, error)
}

// ScreenHandler handles the screening endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	runner     Runner
	defaultURL string
	logger     *logger.Logger
}

// NewScreenHandler creates a new screen handler.
// defaultURL is used by the ticker-only endpoint when no url is given.
func NewScreenHandler(runner Runner, defaultURL string, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		runner:     runner,
		defaultURL: defaultURL,
		logger:     log,
	}
}

// Screen runs the full rank + valuation filter
// GET /api/screen?url=...
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	status, body := h.RunScreen(r.Context(), r.URL.Query().Get("url"))
	respondJSON(w, status, body)
}

// Tickers returns the tickers on a screener page
// GET /api/tickers[?url=...]
func (h *ScreenHandler) Tickers(w http.ResponseWriter, r *http.Request) {
	status, body := h.RunTickers(r.Context(), r.URL.Query().Get("url"))
	respondJSON(w, status, body)
}

// RunScreen maps a screen request to its status code and JSON body.
// Shared by the HTTP router and the serverless entry point.
func (h *ScreenHandler) RunScreen(ctx context.Context, sourceURL string) (int, interface{}) {
	if sourceURL == "" {
		return http.StatusBadRequest, ErrorResponse{Error: MissingURLMessage}
	}

	result, err := h.runner.Screen(ctx, sourceURL)
	if err != nil {
		h.logger.WithError(err).WithField("url", sourceURL).Error("Screen failed")
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}

	return http.StatusOK, result
}

// RunTickers maps a ticker-only request to its status code and JSON body
func (h *ScreenHandler) RunTickers(ctx context.Context, sourceURL string) (int, interface{}) {
	if sourceURL == "" {
		sourceURL = h.defaultURL
	}

	tickers, err := h.runner.Tickers(ctx, sourceURL)
	if err != nil {
		h.logger.WithError(err).WithField("url", sourceURL).Error("Ticker extraction failed")
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	}

	return http.StatusOK, contracts.TickerList{Tickers: tickers}
}
