package pricing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleanline/opsdesk/internal/platform/httpx"
)

// Handler exposes pricing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the pricing HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers pricing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/calculate", h.calculate)
	r.Get("/orders/{orderID}", h.order)
	r.Post("/customers/{customerID}/prices", h.savePrice)
}

var errorMappings = []httpx.Mapping{
	{Err: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, ErrValidation) && !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrNotFound) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err, errorMappings...)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "decode pricing request", err)
		return
	}
	quote, err := h.service.Calculate(req)
	if err != nil {
		h.fail(w, r, "calculate pricing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) order(w http.ResponseWriter, r *http.Request) {
	group := httpx.QueryInt(r, "customer_group", 0)
	quote, err := h.service.Order(r.Context(), chi.URLParam(r, "orderID"), group)
	if err != nil {
		h.fail(w, r, "price order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) savePrice(w http.ResponseWriter, r *http.Request) {
	var req SavePriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "decode save price", err)
		return
	}
	line, err := h.service.SavePrice(r.Context(), chi.URLParam(r, "customerID"), req)
	if err != nil {
		h.fail(w, r, "save customer price", err)
		return
	}
	httpx.JSON(w, http.StatusOK, line)
}
