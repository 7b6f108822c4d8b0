package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"qms/core-api/internal/logger"
	"qms/core-api/internal/store"
)

const apiPrefix = "/api/v1/"

// BoardNotifier is told whenever service turns change so the live board can refresh.
type BoardNotifier interface {
	Notify()
}

type Handler struct {
	store store.Store
	board BoardNotifier
	log   *slog.Logger
}

type Options struct {
	Board  BoardNotifier
	Logger *slog.Logger
}

type noopBoard struct{}

func (noopBoard) Notify() {}

func NewHandler(store store.Store, options Options) *Handler {
	board := options.Board
	if board == nil {
		board = noopBoard{}
	}
	log := options.Logger
	if log == nil {
		log = logger.WithComponent("httpapi")
	}
	return &Handler{store: store, board: board, log: log}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	handle := func(name string, fn http.HandlerFunc) {
		mux.HandleFunc(apiPrefix+name, fn)
		mux.HandleFunc(apiPrefix+name+"/", fn)
	}
	handle("statuses", h.statusResource().route)
	handle("priorities", h.priorityResource().route)
	handle("locations", h.locationResource().route)
	handle("categories", h.handleCategories)
	handle("services", h.handleServices)
	handle("queues", h.queueResource().route)
	handle("customers", h.handleCustomers)
	handle("appointments", h.appointmentResource().route)
	handle("serviceturns", h.handleServiceTurns)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// fail writes the envelope for err and logs anything that is not a client error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, errType, message := mapError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, errType, message)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, typeMethodNotAllowed, "Method not allowed")
}

// resourcePath splits what follows /api/v1/{resource}/ into segments.
func resourcePath(path, resource string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, apiPrefix+resource), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}

func parseOptionalID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(key + " must be a positive integer")
	}
	return id, nil
}

// listOptions reads offset, limit and, for entities that have it, active.
// active defaults to true.
func listOptions(r *http.Request, withActive bool) (store.ListOptions, error) {
	query := r.URL.Query()
	var opts store.ListOptions
	if raw := query.Get("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return opts, badRequest("offset must be a non-negative integer")
		}
		opts.Offset = value
	}
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return opts, badRequest("limit must be a positive integer")
		}
		opts.Limit = value
	}
	if withActive {
		active := true
		if raw := query.Get("active"); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				return opts, badRequest("active must be a boolean")
			}
			active = value
		}
		opts.Active = &active
	}
	return opts.Normalize(), nil
}
