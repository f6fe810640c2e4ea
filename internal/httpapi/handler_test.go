package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse/achievement-service/internal/achievement"
	"github.com/pulse/achievement-service/internal/badge"
	"github.com/pulse/achievement-service/internal/journal"
	sharedauth "github.com/pulse/achievement-service/internal/shared/auth"
	sharederrors "github.com/pulse/achievement-service/internal/shared/errors"
	"github.com/pulse/achievement-service/internal/shared/logging"
)

type fakeService struct {
	listBadges    func(ctx context.Context, filter achievement.ListFilter) ([]badge.Definition, error)
	getBadge      func(ctx context.Context, id string) (badge.Definition, error)
	getTier       func(ctx context.Context, name string) (badge.TierConfig, error)
	getBadgesMe   func(ctx context.Context, userID string, loc *time.Location) (*achievement.BadgesMeResponse, error)
	getInProgress func(ctx context.Context, userID string, loc *time.Location, limit int) ([]badge.Result, error)
	checkBadge    func(ctx context.Context, userID, badgeID string, loc *time.Location) (*achievement.CheckBadgeResponse, error)
	recordEntry   func(ctx context.Context, userID string, input achievement.EntryInput, loc *time.Location) (*achievement.RecordEntryResponse, error)
	recordView    func(ctx context.Context, userID string, loc *time.Location) (*achievement.UnlockResponse, error)
	recompute     func(ctx context.Context, userIDs []string, loc *time.Location) (*achievement.RecomputeResponse, error)
}

var errNotStubbed = errors.New("not stubbed")

func (f *fakeService) ListBadges(ctx context.Context, filter achievement.ListFilter) ([]badge.Definition, error) {
	if f.listBadges == nil {
		return nil, errNotStubbed
	}
	return f.listBadges(ctx, filter)
}

func (f *fakeService) GetBadge(ctx context.Context, id string) (badge.Definition, error) {
	if f.getBadge == nil {
		return badge.Definition{}, errNotStubbed
	}
	return f.getBadge(ctx, id)
}

func (f *fakeService) ListTiers(context.Context) []badge.TierConfig {
	return badge.Tiers()
}

func (f *fakeService) GetTier(ctx context.Context, name string) (badge.TierConfig, error) {
	if f.getTier == nil {
		return badge.TierConfig{}, errNotStubbed
	}
	return f.getTier(ctx, name)
}

func (f *fakeService) GetBadgesMe(ctx context.Context, userID string, loc *time.Location) (*achievement.BadgesMeResponse, error) {
	if f.getBadgesMe == nil {
		return nil, errNotStubbed
	}
	return f.getBadgesMe(ctx, userID, loc)
}

func (f *fakeService) GetInProgress(ctx context.Context, userID string, loc *time.Location, limit int) ([]badge.Result, error) {
	if f.getInProgress == nil {
		return nil, errNotStubbed
	}
	return f.getInProgress(ctx, userID, loc, limit)
}

func (f *fakeService) CheckBadge(ctx context.Context, userID, badgeID string, loc *time.Location) (*achievement.CheckBadgeResponse, error) {
	if f.checkBadge == nil {
		return nil, errNotStubbed
	}
	return f.checkBadge(ctx, userID, badgeID, loc)
}

func (f *fakeService) RecordEntry(ctx context.Context, userID string, input achievement.EntryInput, loc *time.Location) (*achievement.RecordEntryResponse, error) {
	if f.recordEntry == nil {
		return nil, errNotStubbed
	}
	return f.recordEntry(ctx, userID, input, loc)
}

func (f *fakeService) RecordAnalyticsView(ctx context.Context, userID string, loc *time.Location) (*achievement.UnlockResponse, error) {
	if f.recordView == nil {
		return nil, errNotStubbed
	}
	return f.recordView(ctx, userID, loc)
}

func (f *fakeService) Recompute(ctx context.Context, userIDs []string, loc *time.Location) (*achievement.RecomputeResponse, error) {
	if f.recompute == nil {
		return nil, errNotStubbed
	}
	return f.recompute(ctx, userIDs, loc)
}

func newRouter(svc achievement.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	r := chi.NewRouter()
	RegisterRoutes(r, svc, opts)
	RegisterInternalRoutes(r, svc, opts)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) sharederrors.ErrorResponse {
	t.Helper()
	var body sharederrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const internalToken = "s3cret"

var (
	asUser    = map[string]string{"X-User-ID": "user-1"}
	asService = map[string]string{sharedauth.ServiceTokenHeader: internalToken}
)

func TestListBadges(t *testing.T) {
	var got achievement.ListFilter
	svc := &fakeService{listBadges: func(_ context.Context, filter achievement.ListFilter) ([]badge.Definition, error) {
		got = filter
		if filter.Category == "sports" {
			return nil, fmt.Errorf("%w: sports", achievement.ErrInvalidCategory)
		}
		return []badge.Definition{{ID: "first_words"}}, nil
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodGet, "/v1/badges?category=journey&visible=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, achievement.ListFilter{Category: "journey", VisibleOnly: true}, got)
	assert.Contains(t, rec.Body.String(), `"first_words"`)

	rec = do(t, h, http.MethodGet, "/v1/badges?visible=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/badges?category=sports", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, sharederrors.CodeBadRequest, decodeError(t, rec).Code)
}

func TestGetBadge(t *testing.T) {
	svc := &fakeService{getBadge: func(_ context.Context, id string) (badge.Definition, error) {
		if id == "first_words" {
			return badge.Definition{ID: id}, nil
		}
		return badge.Definition{}, &badge.BadgeNotFoundError{ID: id}
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodGet, "/v1/badges/first_words", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/badges/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, sharederrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestTiers(t *testing.T) {
	svc := &fakeService{getTier: func(_ context.Context, name string) (badge.TierConfig, error) {
		return badge.TierConfigFor(badge.Tier(name))
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodGet, "/v1/tiers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Tiers []badge.TierConfig `json:"tiers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Tiers, 5)

	rec = do(t, h, http.MethodGet, "/v1/tiers/gold", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/tiers/mythril", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBadgesMe_ScopeResolution(t *testing.T) {
	var (
		gotUser string
		gotLoc  *time.Location
	)
	svc := &fakeService{getBadgesMe: func(_ context.Context, userID string, loc *time.Location) (*achievement.BadgesMeResponse, error) {
		gotUser, gotLoc = userID, loc
		return &achievement.BadgesMeResponse{EarnedCount: 2}, nil
	}}
	jakarta := time.FixedZone("WIB", 7*3600)
	h := newRouter(svc, Options{DefaultLocation: jakarta})

	rec := do(t, h, http.MethodGet, "/v1/badges/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/badges/me", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, jakarta, gotLoc)

	rec = do(t, h, http.MethodGet, "/v1/badges/me", "", map[string]string{"X-User-ID": "user-1", "X-Timezone": "UTC"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UTC", gotLoc.String())

	rec = do(t, h, http.MethodGet, "/v1/badges/me", "", map[string]string{"X-User-ID": "user-1", "X-Timezone": "Mars/Olympus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBadgesMe_PrefersAuthenticatedUser(t *testing.T) {
	var gotUser string
	svc := &fakeService{getBadgesMe: func(_ context.Context, userID string, _ *time.Location) (*achievement.BadgesMeResponse, error) {
		gotUser = userID
		return &achievement.BadgesMeResponse{}, nil
	}}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := sharedauth.WithUser(r.Context(), sharedauth.AuthenticatedUser{UserID: "from-token"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	RegisterRoutes(r, svc, Options{Logger: logging.Discard()})

	rec := do(t, r, http.MethodGet, "/v1/badges/me", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-token", gotUser)
}

func TestGetInProgress(t *testing.T) {
	var gotLimit int
	svc := &fakeService{getInProgress: func(_ context.Context, _ string, _ *time.Location, limit int) ([]badge.Result, error) {
		gotLimit = limit
		return []badge.Result{}, nil
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodGet, "/v1/badges/me/in-progress", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultInProgress, gotLimit)
	assert.JSONEq(t, `{"badges":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/badges/me/in-progress?limit=10", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotLimit)

	for _, bad := range []string{"0", "-1", "51", "x"} {
		rec = do(t, h, http.MethodGet, "/v1/badges/me/in-progress?limit="+bad, "", asUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestCheckBadge(t *testing.T) {
	svc := &fakeService{checkBadge: func(_ context.Context, _, badgeID string, _ *time.Location) (*achievement.CheckBadgeResponse, error) {
		if badgeID == "midnight_poet" {
			return nil, &badge.BadgeNotFoundError{ID: badgeID}
		}
		return &achievement.CheckBadgeResponse{Badge: badge.Result{Definition: badge.Definition{ID: badgeID}, Earned: true}, Unlocked: true}, nil
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodPost, "/v1/badges/me/first_words/check", "", asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp achievement.CheckBadgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Unlocked)
	assert.Equal(t, "first_words", resp.Badge.ID)

	rec = do(t, h, http.MethodPost, "/v1/badges/me/midnight_poet/check", "", asUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordEntry(t *testing.T) {
	var got achievement.EntryInput
	svc := &fakeService{recordEntry: func(_ context.Context, _ string, input achievement.EntryInput, _ *time.Location) (*achievement.RecordEntryResponse, error) {
		got = input
		switch input.PrimaryMood {
		case "bored":
			return nil, fmt.Errorf("%w: mood", achievement.ErrInvalidEntry)
		case "dup":
			return nil, fmt.Errorf("save journal entry: %w", journal.ErrConflict)
		case "boom":
			return nil, errors.New("firestore unavailable")
		}
		return &achievement.RecordEntryResponse{Entry: badge.Entry{ID: "e1"}, Unlocked: []badge.Result{}}, nil
	}}
	h := newRouter(svc, Options{})

	rec := do(t, h, http.MethodPost, "/v1/journal/entries", `{"text":"hello there","primaryMood":"calm","moodScore":7.5,"isVoiceEntry":true}`, asUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello there", got.Text)
	require.NotNil(t, got.MoodScore)
	assert.Equal(t, 7.5, *got.MoodScore)
	assert.True(t, got.IsVoiceEntry)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "malformed json", body: `{"text":`, status: http.StatusBadRequest, code: sharederrors.CodeBadRequest},
		{name: "unknown field", body: `{"txt":"hi"}`, status: http.StatusBadRequest, code: sharederrors.CodeBadRequest},
		{name: "trailing data", body: `{"text":"hi"}{}`, status: http.StatusBadRequest, code: sharederrors.CodeBadRequest},
		{name: "validation", body: `{"text":"hi","primaryMood":"bored"}`, status: http.StatusUnprocessableEntity, code: sharederrors.CodeValidation},
		{name: "conflict", body: `{"text":"hi","primaryMood":"dup"}`, status: http.StatusConflict, code: sharederrors.CodeConflict},
		{name: "internal", body: `{"text":"hi","primaryMood":"boom"}`, status: http.StatusInternalServerError, code: sharederrors.CodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/journal/entries", tc.body, asUser)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}

	big := `{"text":"` + strings.Repeat("a", maxEntryBodyBytes) + `"}`
	rec = do(t, h, http.MethodPost, "/v1/journal/entries", big, asUser)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecordAnalyticsView_WriteLimiter(t *testing.T) {
	calls := 0
	svc := &fakeService{recordView: func(context.Context, string, *time.Location) (*achievement.UnlockResponse, error) {
		calls++
		return &achievement.UnlockResponse{Unlocked: []badge.Result{}}, nil
	}}
	blockAll := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	rec := do(t, newRouter(svc, Options{}), http.MethodPost, "/v1/analytics/views", "", asUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	limited := newRouter(svc, Options{WriteLimiter: blockAll})
	rec = do(t, limited, http.MethodPost, "/v1/analytics/views", "", asUser)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, calls)

	rec = do(t, limited, http.MethodGet, "/v1/tiers", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestRecompute(t *testing.T) {
	var got []string
	svc := &fakeService{recompute: func(_ context.Context, userIDs []string, _ *time.Location) (*achievement.RecomputeResponse, error) {
		got = userIDs
		if len(userIDs) == 0 {
			return nil, fmt.Errorf("%w: empty", achievement.ErrInvalidInput)
		}
		return &achievement.RecomputeResponse{Users: []achievement.UserSummary{{UserID: "a"}, {UserID: "b"}}}, nil
	}}
	h := newRouter(svc, Options{InternalToken: internalToken})

	rec := do(t, h, http.MethodPost, "/internal/v1/badges/recompute", `{"userIds":["a","b"]}`, asService)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, got)

	rec = do(t, h, http.MethodPost, "/internal/v1/badges/recompute", `{"userIds":[]}`, asService)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecompute_RejectsUserCredentials(t *testing.T) {
	calls := 0
	svc := &fakeService{recompute: func(context.Context, []string, *time.Location) (*achievement.RecomputeResponse, error) {
		calls++
		return &achievement.RecomputeResponse{}, nil
	}}
	verifier, err := sharedauth.NewVerifier(sharedauth.Config{Mode: sharedauth.ModeNoop})
	require.NoError(t, err)

	opts := Options{Logger: logging.Discard(), InternalToken: internalToken}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sharedauth.Middleware(verifier))
		RegisterRoutes(r, svc, opts)
	})
	require.True(t, RegisterInternalRoutes(r, svc, opts))

	body := `{"userIds":["victim-1","victim-2"]}`
	for name, headers := range map[string]map[string]string{
		"bearer user token": {"Authorization": "Bearer user-1"},
		"user id header":    asUser,
		"wrong token":       {"Authorization": "Bearer user-1", sharedauth.ServiceTokenHeader: "guess"},
	} {
		rec := do(t, r, http.MethodPost, "/internal/v1/badges/recompute", body, headers)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, sharederrors.CodeUnauthorized, decodeError(t, rec).Code, name)
	}
	assert.Zero(t, calls)

	rec := do(t, r, http.MethodPost, "/internal/v1/badges/recompute", body, asService)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestRegisterInternalRoutes_DisabledWithoutToken(t *testing.T) {
	svc := &fakeService{recompute: func(context.Context, []string, *time.Location) (*achievement.RecomputeResponse, error) {
		t.Fatal("recompute must not be reachable")
		return nil, nil
	}}
	r := chi.NewRouter()
	assert.False(t, RegisterInternalRoutes(r, svc, Options{}))

	rec := do(t, r, http.MethodPost, "/internal/v1/badges/recompute", `{"userIds":["a"]}`, asService)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	assert.Equal(t, "ip:10.1.2.3", RateLimitKey(req))

	req.Header.Set("X-User-ID", "user-1")
	assert.Equal(t, "user:user-1", RateLimitKey(req))
}
