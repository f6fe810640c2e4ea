package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pulse/achievement-service/internal/achievement"
	"github.com/pulse/achievement-service/internal/badge"
	"github.com/pulse/achievement-service/internal/journal"
	sharedauth "github.com/pulse/achievement-service/internal/shared/auth"
	sharederrors "github.com/pulse/achievement-service/internal/shared/errors"
	"github.com/pulse/achievement-service/internal/shared/ratelimit"
)

const (
	serviceTimeout       = 8 * time.Second
	recomputeTimeout     = 50 * time.Second
	maxEntryBodyBytes    = 256 * 1024
	maxRecomputeBodySize = 256 * 1024
	defaultInProgress    = 3
	maxInProgress        = 50
	timezoneHeader       = "X-Timezone"
)

var errInvalidPayload = errors.New("invalid request body")

// Options configures the badge routes.
type Options struct {
	Logger *slog.Logger
	// DefaultLocation buckets days when the request carries no X-Timezone header.
	DefaultLocation *time.Location
	// WriteLimiter wraps the endpoints that record activity. Optional.
	WriteLimiter func(http.Handler) http.Handler
	// InternalToken guards the service-to-service routes. They are not mounted when empty.
	InternalToken string
}

type handler struct {
	service achievement.Service
	logger  *slog.Logger
	loc     *time.Location
}

// RegisterRoutes registers the catalog and per-user badge routes.
func RegisterRoutes(r chi.Router, service achievement.Service, opts Options) {
	h := newHandler(service, opts)

	r.Route("/v1/badges", func(r chi.Router) {
		r.Get("/", h.listBadges)
		r.Get("/me", h.getBadgesMe)
		r.Get("/me/in-progress", h.getInProgress)
		r.Post("/me/{id}/check", h.checkBadge)
		r.Get("/{id}", h.getBadge)
	})

	r.Route("/v1/tiers", func(r chi.Router) {
		r.Get("/", h.listTiers)
		r.Get("/{name}", h.getTier)
	})

	r.Group(func(r chi.Router) {
		if opts.WriteLimiter != nil {
			r.Use(opts.WriteLimiter)
		}
		r.Post("/v1/journal/entries", h.recordEntry)
		r.Post("/v1/analytics/views", h.recordAnalyticsView)
	})
}

// RegisterInternalRoutes registers service-to-service routes behind the shared service token.
// It reports whether anything was mounted.
func RegisterInternalRoutes(r chi.Router, service achievement.Service, opts Options) bool {
	if opts.InternalToken == "" {
		return false
	}
	h := newHandler(service, opts)
	r.Group(func(r chi.Router) {
		r.Use(sharedauth.RequireServiceToken(opts.InternalToken))
		r.Post("/internal/v1/badges/recompute", h.recompute)
	})
	return true
}

func newHandler(service achievement.Service, opts Options) *handler {
	h := &handler{service: service, logger: opts.Logger, loc: opts.DefaultLocation}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	return h
}

func (h *handler) listBadges(w http.ResponseWriter, r *http.Request) {
	filter := achievement.ListFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("visible"); raw != "" {
		visible, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, sharederrors.CodeBadRequest, "visible must be a boolean")
			return
		}
		filter.VisibleOnly = visible
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	defs, err := h.service.ListBadges(ctx, filter)
	if err != nil {
		h.writeServiceError(w, r, "failed to list badges", err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": defs})
}

func (h *handler) getBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	def, err := h.service.GetBadge(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "failed to get badge", err, "")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *handler) listTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": h.service.ListTiers(r.Context())})
}

func (h *handler) getTier(w http.ResponseWriter, r *http.Request) {
	tier, err := h.service.GetTier(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(w, r, "failed to get tier", err, "")
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

func (h *handler) getBadgesMe(w http.ResponseWriter, r *http.Request) {
	userID, loc, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	resp, err := h.service.GetBadgesMe(ctx, userID, loc)
	if err != nil {
		h.writeServiceError(w, r, "failed to load badges", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getInProgress(w http.ResponseWriter, r *http.Request) {
	userID, loc, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	limit := defaultInProgress
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxInProgress {
			writeError(w, r, sharederrors.CodeBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	results, err := h.service.GetInProgress(ctx, userID, loc, limit)
	if err != nil {
		h.writeServiceError(w, r, "failed to load in-progress badges", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": results})
}

func (h *handler) checkBadge(w http.ResponseWriter, r *http.Request) {
	userID, loc, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	badgeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if badgeID == "" {
		writeError(w, r, sharederrors.CodeBadRequest, "missing badge id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	resp, err := h.service.CheckBadge(ctx, userID, badgeID, loc)
	if err != nil {
		h.writeServiceError(w, r, "failed to check badge", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) recordEntry(w http.ResponseWriter, r *http.Request) {
	userID, loc, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var input achievement.EntryInput
	if err := decodeJSON(w, r, maxEntryBodyBytes, &input); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	resp, err := h.service.RecordEntry(ctx, userID, input, loc)
	if err != nil {
		h.writeServiceError(w, r, "failed to record journal entry", err, userID)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handler) recordAnalyticsView(w http.ResponseWriter, r *http.Request) {
	userID, loc, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	resp, err := h.service.RecordAnalyticsView(ctx, userID, loc)
	if err != nil {
		h.writeServiceError(w, r, "failed to record analytics view", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) recompute(w http.ResponseWriter, r *http.Request) {
	loc, err := h.location(r)
	if err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, err.Error())
		return
	}

	var body struct {
		UserIDs []string `json:"userIds"`
	}
	if err := decodeJSON(w, r, maxRecomputeBodySize, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recomputeTimeout)
	defer cancel()

	resp, err := h.service.Recompute(ctx, body.UserIDs, loc)
	if err != nil {
		h.writeServiceError(w, r, "failed to recompute badges", err, "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requestScope resolves the caller and the timezone for day bucketing. It writes the error
// response itself and returns false when either is missing or invalid.
func (h *handler) requestScope(w http.ResponseWriter, r *http.Request) (string, *time.Location, bool) {
	userID := requestUserID(r)
	if userID == "" {
		writeError(w, r, sharederrors.CodeUnauthorized, "missing user ID")
		return "", nil, false
	}
	loc, err := h.location(r)
	if err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, err.Error())
		return "", nil, false
	}
	return userID, loc, true
}

func (h *handler) location(r *http.Request) (*time.Location, error) {
	name := strings.TrimSpace(r.Header.Get(timezoneHeader))
	if name == "" {
		return h.loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New("unknown timezone " + strconv.Quote(name))
	}
	return loc, nil
}

// RateLimitKey buckets writes per authenticated user, falling back to the client address.
func RateLimitKey(r *http.Request) string {
	if userID := requestUserID(r); userID != "" {
		return "user:" + userID
	}
	return "ip:" + ratelimit.ClientIP(r)
}

func requestUserID(r *http.Request) string {
	if user, ok := sharedauth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errInvalidPayload
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errInvalidPayload
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, sharederrors.ErrorResponse{
			Code:      sharederrors.CodeBadRequest,
			Message:   "request body too large",
			RequestID: middleware.GetReqID(r.Context()),
		})
		return
	}
	writeError(w, r, sharederrors.CodeBadRequest, errInvalidPayload.Error())
}

func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error, userID string) {
	var (
		notFound    *badge.BadgeNotFoundError
		unknownTier *badge.UnknownTierError
	)

	switch {
	case errors.As(err, &notFound), errors.As(err, &unknownTier):
		writeError(w, r, sharederrors.CodeNotFound, err.Error())
	case errors.Is(err, achievement.ErrMissingUserID):
		writeError(w, r, sharederrors.CodeUnauthorized, err.Error())
	case errors.Is(err, achievement.ErrInvalidEntry):
		writeError(w, r, sharederrors.CodeValidation, err.Error())
	case errors.Is(err, achievement.ErrInvalidCategory), errors.Is(err, achievement.ErrInvalidInput):
		writeError(w, r, sharederrors.CodeBadRequest, err.Error())
	case errors.Is(err, journal.ErrConflict):
		writeError(w, r, sharederrors.CodeConflict, err.Error())
	default:
		logRequestError(r.Context(), h.logger, message, err, userID)
		writeError(w, r, sharederrors.CodeInternal, message)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, sharederrors.ToStatusCode(code), sharederrors.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{
		slog.String("userId", userID),
		slog.Any("error", err),
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Error(message, attrs...)
}
