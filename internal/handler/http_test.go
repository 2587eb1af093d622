package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelley-server/internal/middleware"
	"shelley-server/internal/models"
	"shelley-server/internal/repository/mocks"
	"shelley-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("handler-test-secret")

type testEnv struct {
	router    *gin.Engine
	sessions  *mocks.SessionRepository
	progress  *mocks.ProgressRepository
	accounts  *mocks.AccountRepository
	overrides *mocks.NarrativeOverrideRepository
}

func newTestEnv(t *testing.T, config Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		sessions:  new(mocks.SessionRepository),
		progress:  new(mocks.ProgressRepository),
		accounts:  new(mocks.AccountRepository),
		overrides: new(mocks.NarrativeOverrideRepository),
	}

	logger := zap.NewNop()
	auth := service.NewAuthService(env.accounts, env.progress, testSecret, logger)
	h := NewHandler(
		service.NewSessionService(env.sessions, env.progress, logger),
		service.NewProgressService(env.progress, logger),
		service.NewRewardService(env.accounts, env.progress, logger),
		auth,
		service.NewNarrativeService(env.overrides, nil, logger),
		nil,
		config,
		logger,
		zerolog.Nop(),
	)

	env.router = gin.New()
	h.RegisterRoutes(env.router)
	return env
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signedAuthToken(t *testing.T, accountID int64, email string) string {
	t.Helper()
	claims := models.AccountClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func authCookie(t *testing.T, accountID int64, email string) *http.Cookie {
	t.Helper()
	return &http.Cookie{Name: middleware.AuthCookie, Value: signedAuthToken(t, accountID, email)}
}

func sessionCookie(id uuid.UUID) *http.Cookie {
	return &http.Cookie{Name: middleware.SessionCookie, Value: id.String()}
}

func TestPostSessionMintsCookieForNewVisitor(t *testing.T) {
	env := newTestEnv(t, Config{})
	created := &models.Session{ID: uuid.New()}
	env.sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(created, nil)

	w := doJSON(t, env.router, http.MethodPost, "/api/session", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID.String(), resp.SessionID)
	assert.Equal(t, 0, resp.Progress.GamesPlayed)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, created.ID.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestPostSessionResumeKeepsCookie(t *testing.T) {
	env := newTestEnv(t, Config{})
	id := uuid.New()
	env.sessions.On("Get", mock.Anything, id).Return(&models.Session{ID: id}, nil)
	env.sessions.On("Touch", mock.Anything, id).Return(nil)
	env.progress.On("GetBySessionID", mock.Anything, id).
		Return(&models.Progress{GamesPlayed: 3, GameRecords: map[string]models.GameRecord{}}, nil)

	w := doJSON(t, env.router, http.MethodPost, "/api/session", nil, sessionCookie(id))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "existing sessions keep their cookie")

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Progress.GamesPlayed)
}

func TestPostGameEventRequiresSessionCookie(t *testing.T) {
	env := newTestEnv(t, Config{})
	w := doJSON(t, env.router, http.MethodPost, "/api/game-event",
		models.GameEvent{Type: models.EventCompleted})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostGameEventUnknownSession(t *testing.T) {
	env := newTestEnv(t, Config{})
	id := uuid.New()
	env.progress.On("ApplyEvent", mock.Anything, id, mock.Anything).
		Return(nil, models.ErrSessionNotFound)

	w := doJSON(t, env.router, http.MethodPost, "/api/game-event",
		models.GameEvent{Type: models.EventCompleted}, sessionCookie(id))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostGameEventRejectsBadPayloads(t *testing.T) {
	env := newTestEnv(t, Config{})
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/game-event", bytes.NewReader([]byte("{not json")))
	req.AddCookie(sessionCookie(id))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.router, http.MethodPost, "/api/game-event",
		map[string]string{"type": "self_destruct"}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostGameEventReturnsFullRecord(t *testing.T) {
	env := newTestEnv(t, Config{})
	id := uuid.New()
	env.progress.On("ApplyEvent", mock.Anything, id,
		models.GameEvent{Type: models.EventCompleted, GameName: "po_runner", Score: 80}).
		Return(&models.Progress{
			GamesPlayed: 1, GamesCompleted: 1, TotalScore: 80, PoRelationship: 3,
			GameRecords: map[string]models.GameRecord{"po_runner": {TimesPlayed: 1, TimesCompleted: 1, HighScore: 80, LastScore: 80}},
		}, nil)

	w := doJSON(t, env.router, http.MethodPost, "/api/game-event",
		models.GameEvent{Type: models.EventCompleted, GameName: "po_runner", Score: 80}, sessionCookie(id))

	require.Equal(t, http.StatusOK, w.Code)
	var resp progressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Progress.GamesCompleted)
	assert.Equal(t, 80, resp.Progress.GameRecords["po_runner"].HighScore)
}

func TestGetRewardsRequiresAccount(t *testing.T) {
	env := newTestEnv(t, Config{})
	w := doJSON(t, env.router, http.MethodGet, "/api/rewards", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRewardsReturnsTierStatuses(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.accounts.On("GetByID", mock.Anything, int64(7)).
		Return(&models.Account{ID: 7, RewardsEarned: []string{}}, nil)
	env.progress.On("AggregateByAccount", mock.Anything, int64(7)).
		Return(&models.AggregatedProgress{GamesCompleted: 1}, nil)
	env.accounts.On("AddEarnedRewards", mock.Anything, int64(7), []string{"explorer"}).Return(nil)

	w := doJSON(t, env.router, http.MethodGet, "/api/rewards", nil, authCookie(t, 7, "po@shelley.test"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp rewardsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rewards, 5)
	assert.Equal(t, "explorer", resp.Rewards[0].ID)
	assert.True(t, resp.Rewards[0].Earned)
	assert.True(t, resp.Rewards[0].NewlyEarned)
}

func TestGetRewardsAcceptsBearerToken(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.accounts.On("GetByID", mock.Anything, int64(9)).
		Return(&models.Account{ID: 9, RewardsEarned: []string{"explorer"}}, nil)
	env.progress.On("AggregateByAccount", mock.Anything, int64(9)).
		Return(&models.AggregatedProgress{GamesCompleted: 1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/rewards", nil)
	req.Header.Set("Authorization", "Bearer "+signedAuthToken(t, 9, "po@shelley.test"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp rewardsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rewards, 5)
	assert.True(t, resp.Rewards[0].Earned)
	assert.False(t, resp.Rewards[0].NewlyEarned)
}

func TestPostAuthSignupSetsAuthCookie(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.accounts.On("Create", mock.Anything, "po@shelley.test", mock.Anything, (*string)(nil)).
		Return(&models.Account{ID: 11, Email: "po@shelley.test"}, nil)

	w := doJSON(t, env.router, http.MethodPost, "/api/auth",
		authRequest{Action: "signup", Email: "po@shelley.test", Password: "hunter22"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.AccountID)

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.AuthCookie {
			found = true
			assert.NotEmpty(t, cookie.Value)
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, found, "auth cookie issued")
}

func TestPostAuthSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.accounts.On("Create", mock.Anything, "po@shelley.test", mock.Anything, (*string)(nil)).
		Return(nil, models.ErrEmailAlreadyExists)

	w := doJSON(t, env.router, http.MethodPost, "/api/auth",
		authRequest{Action: "signup", Email: "po@shelley.test", Password: "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPostAuthUnknownAction(t *testing.T) {
	env := newTestEnv(t, Config{})
	w := doJSON(t, env.router, http.MethodPost, "/api/auth", authRequest{Action: "teleport"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostAuthLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, Config{})
	w := doJSON(t, env.router, http.MethodPost, "/api/auth", authRequest{Action: "logout"})

	require.Equal(t, http.StatusOK, w.Code)
	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.AuthCookie {
			cleared = true
			assert.Less(t, cookie.MaxAge, 0)
		}
	}
	assert.True(t, cleared)
}

func TestGetAuthStatus(t *testing.T) {
	env := newTestEnv(t, Config{})

	w := doJSON(t, env.router, http.MethodGet, "/api/auth", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anonymous authStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anonymous))
	assert.False(t, anonymous.Authenticated)

	w = doJSON(t, env.router, http.MethodGet, "/api/auth", nil, authCookie(t, 7, "po@shelley.test"))
	require.Equal(t, http.StatusOK, w.Code)
	var authed authStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authed))
	assert.True(t, authed.Authenticated)
	assert.Equal(t, int64(7), authed.AccountID)
	assert.Equal(t, "po@shelley.test", authed.Email)
}

func TestGetNarrativeServesMergedBeats(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.overrides.On("List", mock.Anything).Return([]models.BeatOverride{
		{BeatID: "intro", Lines: []models.BeatLine{{Text: "Replaced."}}},
	}, nil)

	w := doJSON(t, env.router, http.MethodGet, "/api/narrative", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp narrativeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Beats, 8)
	assert.True(t, resp.Beats[0].Overridden)
	assert.Equal(t, "Replaced.", resp.Beats[0].Lines[0].Text)
}

func TestPostNarrativeAdminGate(t *testing.T) {
	env := newTestEnv(t, Config{AdminSecret: "s3cret"})
	body := narrativeMutation{BeatID: "intro", Lines: []models.BeatLine{{Text: "x"}}}

	w := doJSON(t, env.router, http.MethodPost, "/api/narrative", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing secret")

	body.Secret = "wrong"
	w = doJSON(t, env.router, http.MethodPost, "/api/narrative", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong secret")

	unconfigured := newTestEnv(t, Config{})
	body.Secret = "anything"
	w = doJSON(t, unconfigured.router, http.MethodPost, "/api/narrative", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "no secret configured")
}

func TestPostNarrativeUpsertsOverride(t *testing.T) {
	env := newTestEnv(t, Config{AdminSecret: "s3cret"})
	lines := []models.BeatLine{{Speaker: "Po", Text: "Rewritten."}}
	env.overrides.On("Upsert", mock.Anything, "intro", lines, "admin").Return(nil)

	w := doJSON(t, env.router, http.MethodPost, "/api/narrative",
		narrativeMutation{Secret: "s3cret", BeatID: "intro", Lines: lines})

	require.Equal(t, http.StatusOK, w.Code)
	env.overrides.AssertExpectations(t)
}

func TestPostNarrativeRejectsUnknownBeat(t *testing.T) {
	env := newTestEnv(t, Config{AdminSecret: "s3cret"})
	w := doJSON(t, env.router, http.MethodPost, "/api/narrative",
		narrativeMutation{Secret: "s3cret", BeatID: "finale", Lines: []models.BeatLine{{Text: "x"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteNarrativeReverts(t *testing.T) {
	env := newTestEnv(t, Config{AdminSecret: "s3cret"})
	env.overrides.On("Delete", mock.Anything, "intro").Return(nil)

	w := doJSON(t, env.router, http.MethodDelete, "/api/narrative",
		narrativeMutation{Secret: "s3cret", BeatID: "intro"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp narrativeMutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Reverted)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{})
	w := doJSON(t, env.router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
