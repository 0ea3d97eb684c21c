package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

type memoryStore struct {
	profiles map[uuid.UUID]*models.Profile
	settings map[uuid.UUID]*models.UserSettings
	summary  models.DashboardSummary
}

func newMemoryStore(profiles ...*models.Profile) *memoryStore {
	m := &memoryStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		settings: make(map[uuid.UUID]*models.UserSettings),
	}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memoryStore) GetProfileByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	found := *p
	return &found, nil
}

func (m *memoryStore) UpdateProfile(_ context.Context, p *models.Profile) error {
	for id, other := range m.profiles {
		if id != p.ID && p.Username != "" && other.Username == p.Username {
			return db.ErrDuplicate
		}
	}
	stored := *p
	m.profiles[p.ID] = &stored
	return nil
}

func (m *memoryStore) SetIdentityDocument(_ context.Context, userID uuid.UUID, url string) error {
	p, ok := m.profiles[userID]
	if !ok {
		return db.ErrNotFound
	}
	p.IDDocumentURL = url
	return nil
}

func (m *memoryStore) GetSettings(_ context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	if st, ok := m.settings[userID]; ok {
		found := *st
		return &found, nil
	}
	def := models.DefaultSettings(userID)
	return &def, nil
}

func (m *memoryStore) SaveSettings(_ context.Context, st *models.UserSettings) error {
	st.UpdatedAt = time.Now()
	stored := *st
	m.settings[st.UserID] = &stored
	return nil
}

func (m *memoryStore) GetDashboardSummary(_ context.Context, _ uuid.UUID) (*models.DashboardSummary, error) {
	sum := m.summary
	return &sum, nil
}

type bucket struct {
	uploads map[string][]byte
}

func (b *bucket) Put(_ context.Context, userID uuid.UUID, fileName, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := userID.String() + "/" + fileName
	b.uploads[key] = data
	return "https://docs.example/" + key, nil
}

type signingBucket struct {
	bucket
}

func (b *signingBucket) UploadParams(_ uuid.UUID, now time.Time) (map[string]string, error) {
	return map[string]string{"signature": "abc", "timestamp": "1"}, nil
}

func newApp(svc *ProfileService, userID uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	identity := func(c fiber.Ctx) error {
		middleware.SetIdentity(c, userID.String(), uuid.NewString())
		return c.Next()
	}
	svc.SetupRoutes(app, identity)
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func documentRequest(t *testing.T, fileName, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="document"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/identity-document", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProfileGetAndUpdate(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna", Email: "anna@uni.edu", Role: models.RoleSeeker}
	store := newMemoryStore(me)
	app := newApp(NewProfileService(store, &bucket{uploads: map[string][]byte{}}, zap.NewNop()), me.ID)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anna@uni.edu", body["profile"].(map[string]interface{})["email"])

	status, body = send(t, app, jsonRequest(http.MethodPut, "/api/profile",
		`{"full_name":"Anna Petrova","username":"anna","university":"MSU","role":"contributor"}`))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Anna Petrova", store.profiles[me.ID].FullName)
	assert.Equal(t, models.RoleContributor, store.profiles[me.ID].Role)

	status, _ = send(t, app, jsonRequest(http.MethodPut, "/api/profile", `{"full_name":"Anna","role":"admin"}`))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send(t, app, jsonRequest(http.MethodPut, "/api/profile", `{"full_name":""}`))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateProfileDuplicateUsername(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}
	other := &models.Profile{ID: uuid.New(), FullName: "Boris", Username: "boris"}
	app := newApp(NewProfileService(newMemoryStore(me, other), &bucket{}, zap.NewNop()), me.ID)

	status, body := send(t, app, jsonRequest(http.MethodPut, "/api/profile", `{"full_name":"Anna","username":"boris"}`))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestPublicProfileHidesPrivateFields(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}
	other := &models.Profile{ID: uuid.New(), FullName: "Boris", Email: "boris@uni.edu", IDDocumentURL: "https://docs/b.png"}
	app := newApp(NewProfileService(newMemoryStore(me, other), &bucket{}, zap.NewNop()), me.ID)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/profile/"+other.ID.String(), nil))
	require.Equal(t, http.StatusOK, status)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "Boris", profile["full_name"])
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "id_document_url")

	status, _ = send(t, app, httptest.NewRequest(http.MethodGet, "/api/profile/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadIdentityDocument(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}
	store := newMemoryStore(me)
	docs := &bucket{uploads: map[string][]byte{}}
	app := newApp(NewProfileService(store, docs, zap.NewNop()), me.ID)

	status, body := send(t, app, documentRequest(t, "passport.png", "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, status)

	url := body["id_document_url"].(string)
	assert.Equal(t, url, store.profiles[me.ID].IDDocumentURL)
	assert.Equal(t, []byte("png-bytes"), docs.uploads[me.ID.String()+"/passport.png"])

	status, _ = send(t, app, documentRequest(t, "script.sh", "text/x-shellscript", []byte("#!/bin/sh")))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send(t, app, jsonRequest(http.MethodPost, "/api/profile/identity-document", `{}`))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUploadParamsDependOnStorage(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}

	plain := newApp(NewProfileService(newMemoryStore(me), &bucket{}, zap.NewNop()), me.ID)
	status, _ := send(t, plain, httptest.NewRequest(http.MethodGet, "/api/upload/params", nil))
	assert.Equal(t, http.StatusNotFound, status)

	signing := newApp(NewProfileService(newMemoryStore(me), &signingBucket{}, zap.NewNop()), me.ID)
	status, body := send(t, signing, httptest.NewRequest(http.MethodGet, "/api/upload/params", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "abc", body["signature"])
}

func TestSettingsDefaultsAndPartialUpdate(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}
	store := newMemoryStore(me)
	app := newApp(NewProfileService(store, &bucket{}, zap.NewNop()), me.ID)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, status)
	settings := body["settings"].(map[string]interface{})
	assert.Equal(t, true, settings["notifications_enabled"])
	assert.Equal(t, "light", settings["theme"])

	status, _ = send(t, app, jsonRequest(http.MethodPut, "/api/settings", `{"theme":"dark"}`))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "dark", store.settings[me.ID].Theme)
	assert.True(t, store.settings[me.ID].NotificationsEnabled)

	status, _ = send(t, app, jsonRequest(http.MethodPut, "/api/settings", `{"notifications_enabled":false}`))
	require.Equal(t, http.StatusOK, status)
	assert.False(t, store.settings[me.ID].NotificationsEnabled)
	assert.Equal(t, "dark", store.settings[me.ID].Theme)

	status, _ = send(t, app, jsonRequest(http.MethodPut, "/api/settings", `{"theme":"neon"}`))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDashboardSummary(t *testing.T) {
	me := &models.Profile{ID: uuid.New(), FullName: "Anna"}
	store := newMemoryStore(me)
	store.summary = models.DashboardSummary{Jobs: 3, MatchedJobs: 1, IncomingRequests: 4, Wishlist: 2}
	app := newApp(NewProfileService(store, &bucket{}, zap.NewNop()), me.ID)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, status)
	summary := body["summary"].(map[string]interface{})
	assert.EqualValues(t, 3, summary["jobs"])
	assert.EqualValues(t, 1, summary["matched_jobs"])
	assert.EqualValues(t, 4, summary["incoming_requests"])
	assert.EqualValues(t, 2, summary["wishlist"])
}
