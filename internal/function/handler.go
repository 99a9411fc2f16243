package function

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wonny/valuescreen/internal/api/handlers"
)

// Mode selects which screening variant the function answers with
type Mode string

const (
	ModeScreen  Mode = "screen"
	ModeTickers Mode = "tickers"
)

// ParseMode maps FUNCTION_MODE to a Mode (unknown → screen)
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeTickers {
		return ModeTickers
	}
	return ModeScreen
}

// Handler adapts the screen handlers to API Gateway proxy events
type Handler struct {
	screen *handlers.ScreenHandler
	mode   Mode
}

// NewHandler creates a function handler
func NewHandler(screen *handlers.ScreenHandler, mode Mode) *Handler {
	return &Handler{screen: screen, mode: mode}
}

// Handle answers one invocation with the same status and body as the HTTP API
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sourceURL := req.QueryStringParameters["url"]

	var status int
	var body interface{}
	switch h.mode {
	case ModeTickers:
		status, body = h.screen.RunTickers(ctx, sourceURL)
	default:
		status, body = h.screen.RunScreen(ctx, sourceURL)
	}

	return jsonResponse(status, body), nil
}

func jsonResponse(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(handlers.ErrorResponse{Error: err.Error()})
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}
