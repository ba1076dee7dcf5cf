package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/usecase"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
	"CryptoIntel/pkg/util"
)

// TerminalEchoHandler exposes the aggregated views over plain HTTP for
// clients that do not hold a live subscription.
type TerminalEchoHandler struct {
	logger   *xlogger.Logger
	terminal *usecase.Terminal
}

func NewTerminalEchoHandler(logger *xlogger.Logger, terminal *usecase.Terminal) *TerminalEchoHandler {
	return &TerminalEchoHandler{logger: logger.With("api"), terminal: terminal}
}

func (h *TerminalEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/market", h.Market)
	g.GET("/market/movers", h.Movers)
	g.GET("/market/global", h.Global)
	g.GET("/details", h.Details)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/whales", h.Whales)
	g.GET("/whales/flow", h.WhaleFlow)
	g.GET("/chains", h.Chains)
	g.GET("/chains/trend", h.ChainTrend)
	g.GET("/news", h.News)
	g.GET("/signals", h.Signals)
}

func (h *TerminalEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *TerminalEchoHandler) Market(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), 0)
	assets, err := h.terminal.Market(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("market read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, assets)
}

func (h *TerminalEchoHandler) Movers(c echo.Context) error {
	movers, err := h.terminal.Movers(c.Request().Context())
	if err != nil {
		h.logger.Error("movers read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, movers)
}

func (h *TerminalEchoHandler) Global(c echo.Context) error {
	global, err := h.terminal.Global(c.Request().Context())
	if err != nil {
		h.logger.Error("global read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, global)
}

// DetailsRequest binds the symbol query parameter.
type DetailsRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

func (h *TerminalEchoHandler) Details(c echo.Context) error {
	req := &DetailsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	asset, err := h.terminal.Details(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("details read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if asset == nil {
		return xhttp.NotFoundResponse(c, map[string]string{"symbol": req.Symbol})
	}
	return xhttp.SuccessResponse(c, asset)
}

func (h *TerminalEchoHandler) Sentiment(c echo.Context) error {
	reading, err := h.terminal.Sentiment(c.Request().Context())
	if err != nil {
		h.logger.Error("sentiment read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, reading)
}

func (h *TerminalEchoHandler) Whales(c echo.Context) error {
	batch, err := h.terminal.Whales(c.Request().Context())
	if err != nil {
		h.logger.Error("whales read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, batch)
}

func (h *TerminalEchoHandler) WhaleFlow(c echo.Context) error {
	flow, err := h.terminal.WhaleFlow(c.Request().Context())
	if err != nil {
		h.logger.Error("whale flow read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, flow)
}

func (h *TerminalEchoHandler) Chains(c echo.Context) error {
	top, err := h.terminal.Chains(c.Request().Context())
	if err != nil {
		h.logger.Error("chains read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, top)
}

func (h *TerminalEchoHandler) ChainTrend(c echo.Context) error {
	trend, err := h.terminal.ChainTrend(c.Request().Context())
	if err != nil {
		h.logger.Error("chain trend read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, trend)
}

func (h *TerminalEchoHandler) News(c echo.Context) error {
	items, err := h.terminal.News(c.Request().Context())
	if err != nil {
		h.logger.Error("news read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, items)
}

func (h *TerminalEchoHandler) Signals(c echo.Context) error {
	detected := h.terminal.Signals(c.Request().Context())
	if detected == nil {
		detected = []models.Signal{}
	}
	return xhttp.SuccessResponse(c, detected)
}
