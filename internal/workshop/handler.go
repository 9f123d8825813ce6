package workshop

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cleanline/opsdesk/internal/platform/db"
	"github.com/cleanline/opsdesk/internal/platform/httpx"
	"github.com/cleanline/opsdesk/internal/shared"
)

// Handler exposes workshop job endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the workshop HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers workshop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/evaluate", h.evaluateContext)
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.show)
			r.Patch("/", h.update)
			r.Get("/status", h.status)
			r.Post("/advance", h.advance)
			r.Post("/order", h.attachOrder)
			r.Get("/docket", h.docket)
			r.Get("/docket.pdf", h.docketPDF)
		})
	})
}

var errorMappings = []httpx.Mapping{
	{Err: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrLocked, Status: http.StatusConflict, Title: "Section Locked"},
	{Err: ErrOrderNotAllowed, Status: http.StatusConflict, Title: "Order Not Allowed"},
	{Err: ErrTerminalStatus, Status: http.StatusConflict, Title: "Job Completed"},
	{Err: ErrUnknownStatus, Status: http.StatusUnprocessableEntity, Title: "Unknown Status"},
	{Err: ErrConflict, Status: http.StatusConflict, Title: "Conflict"},
	{Err: ErrDocketUnavailable, Status: http.StatusServiceUnavailable, Title: "Docket Unavailable"},
	{Err: db.ErrDuplicate, Status: http.StatusConflict, Title: "Duplicate"},
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var known bool
	for _, m := range errorMappings {
		if errors.Is(err, m.Err) {
			known = true
			break
		}
	}
	if !known && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err, errorMappings...)
}

func (h *Handler) evaluateContext(w http.ResponseWriter, r *http.Request) {
	var in StatusContext
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, "decode status context", err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, Evaluate(in))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListJobsRequest{
		Limit:  httpx.QueryInt(r, "limit", 50),
		Offset: httpx.QueryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		req.Status = &status
	}
	jobs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.fail(w, r, "list workshop jobs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
		"page":  shared.NewPage(req.Limit, req.Offset, total, 50),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "decode create job", err)
		return
	}
	job, err := h.service.Create(r.Context(), req, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "create workshop job", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get workshop job", err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	var req UpdateJobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "decode update job", err)
		return
	}
	job, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, "update workshop job", err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	res, err := h.service.Evaluate(r.Context(), id)
	if err != nil {
		h.fail(w, r, "evaluate workshop job", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	job, err := h.service.Advance(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "advance workshop job", err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) attachOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	var req AttachOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "decode attach order", err)
		return
	}
	job, err := h.service.AttachOrder(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, "attach workshop order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) docket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	html, err := h.service.Docket(r.Context(), id)
	if err != nil {
		h.fail(w, r, "render docket", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handler) docketPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	pdf, err := h.service.DocketPDF(r.Context(), id)
	if err != nil {
		h.fail(w, r, "render docket pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="docket-`+id.String()+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Job ID", err.Error())
		return uuid.Nil, false
	}
	return id, true
}
