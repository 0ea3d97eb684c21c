package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

type memoryStore struct {
	profiles map[uuid.UUID]*models.Profile
	telegram map[int64]uuid.UUID
	sessions map[uuid.UUID]*models.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		telegram: make(map[int64]uuid.UUID),
		sessions: make(map[uuid.UUID]*models.Session),
	}
}

func (m *memoryStore) CreateProfile(_ context.Context, p *models.Profile) error {
	for _, other := range m.profiles {
		if other.Email == p.Email {
			return db.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	stored := *p
	m.profiles[p.ID] = &stored
	return nil
}

func (m *memoryStore) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == strings.ToLower(email) {
			found := *p
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memoryStore) UpsertTelegramProfile(_ context.Context, acct models.TelegramAccount) (*models.Profile, error) {
	if id, ok := m.telegram[acct.TelegramID]; ok {
		p := m.profiles[id]
		p.FullName = strings.TrimSpace(acct.FirstName + " " + acct.LastName)
		return p, nil
	}
	p := &models.Profile{
		ID:       uuid.New(),
		FullName: strings.TrimSpace(acct.FirstName + " " + acct.LastName),
		Username: acct.Username,
		Role:     models.RoleSeeker,
	}
	m.profiles[p.ID] = p
	m.telegram[acct.TelegramID] = p.ID
	return p, nil
}

func (m *memoryStore) CreateSession(_ context.Context, userID uuid.UUID, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	s := &models.Session{ID: uuid.New(), UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memoryStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	if s, ok := m.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s, nil
}

func fakeTelegram(raw string) (initdata.InitData, error) {
	if raw != "signed" {
		return initdata.InitData{}, errors.New("sign invalid")
	}
	return initdata.InitData{User: initdata.User{
		ID:        424242,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Username:  "ivanp",
	}}, nil
}

type fixture struct {
	app   *fiber.App
	store *memoryStore
	jwt   *utils.JWTService
}

func newFixture() *fixture {
	store := newMemoryStore()
	jwtService := utils.NewJWTService("test-secret", time.Hour)
	authenticator := middleware.NewAuthenticator(jwtService, store)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	NewAuthService(store, jwtService, fakeTelegram, false, zap.NewNop()).
		SetupRoutes(app, middleware.AuthMiddleware(authenticator))
	return &fixture{app: app, store: store, jwt: jwtService}
}

func (f *fixture) post(t *testing.T, path, body, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

const registerBody = `{"email":"Anna@Uni.edu","password":"correct horse","full_name":"Anna","university":"MSU"}`

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()

	resp, body := f.post(t, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "anna@uni.edu", user["email"])
	assert.Equal(t, models.RoleSeeker, user["role"])
	assert.NotContains(t, user, "password_hash")

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	claims, err := f.jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.UserID)

	resp, _ = f.post(t, "/api/auth/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.post(t, "/api/auth/login", `{"email":"anna@uni.edu","password":"wrong password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.post(t, "/api/auth/login", `{"email":"nobody@uni.edu","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = f.post(t, "/api/auth/login", `{"email":"anna@uni.edu","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, token, body["token"])
	assert.Len(t, f.store.sessions, 2)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()

	cases := []string{
		`{"email":"not-an-email","password":"correct horse","full_name":"Anna"}`,
		`{"email":"anna@uni.edu","password":"short","full_name":"Anna"}`,
		`{"email":"anna@uni.edu","password":"correct horse","full_name":"  "}`,
		`{"email":"anna@uni.edu","password":"correct horse","full_name":"Anna","role":"admin"}`,
	}
	for _, body := range cases {
		resp, out := f.post(t, "/api/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "BAD_REQUEST", out["code"], body)
	}
	assert.Empty(t, f.store.profiles)
}

func TestTelegramLogin(t *testing.T) {
	f := newFixture()

	resp, _ := f.post(t, "/api/auth/telegram", `{"init_data":"forged"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.post(t, "/api/auth/telegram", `{"init_data":"signed"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := body["user"].(map[string]interface{})["id"]
	assert.Equal(t, "Ivan Petrov", body["user"].(map[string]interface{})["full_name"])
	assert.NotNil(t, sessionCookie(resp))

	resp, body = f.post(t, "/api/auth/telegram", `{"init_data":"signed"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, body["user"].(map[string]interface{})["id"])
	assert.Len(t, f.store.profiles, 1)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture()

	resp, body := f.post(t, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["token"].(string)

	resp, _ = f.post(t, "/api/auth/logout", "", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	if cookie := sessionCookie(resp); assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
	}

	for _, s := range f.store.sessions {
		assert.NotNil(t, s.RevokedAt)
	}

	resp, _ = f.post(t, "/api/auth/logout", "", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
