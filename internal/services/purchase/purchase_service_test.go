package purchase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/apperr"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

type memoryStore struct {
	jobs      map[uuid.UUID]*models.Job
	purchases []models.Purchase
}

func (m *memoryStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, db.ErrNotFound
}

func (m *memoryStore) CreatePurchase(_ context.Context, p *models.Purchase) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.purchases = append(m.purchases, *p)
	return nil
}

func (m *memoryStore) ListPurchases(_ context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	out := []models.Purchase{}
	for _, p := range m.purchases {
		if p.BuyerID == buyerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestParseAmount(t *testing.T) {
	valid := []string{"0.01", "12.5", "12.50", "12.500", "9999999999.99"}
	for _, raw := range valid {
		_, err := parseAmount(decimal.RequireFromString(raw))
		assert.NoError(t, err, raw)
	}

	invalid := []string{"0", "-5", "0.001", "10000000000"}
	for _, raw := range invalid {
		_, err := parseAmount(decimal.RequireFromString(raw))
		assert.True(t, apperr.Is(err, "BAD_REQUEST"), raw)
	}
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPurchaseFlow(t *testing.T) {
	buyer, maker := uuid.New(), uuid.New()
	theirs := &models.Job{ID: uuid.New(), Name: "Resume review", Maker: maker, Partner: models.NoPartner}
	mine := &models.Job{ID: uuid.New(), Name: "My job", Maker: buyer, Partner: models.NoPartner}
	store := &memoryStore{jobs: map[uuid.UUID]*models.Job{theirs.ID: theirs, mine.ID: mine}}

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	NewPurchaseService(store, zap.NewNop()).SetupRoutes(app, func(c fiber.Ctx) error {
		middleware.SetIdentity(c, buyer.String(), uuid.NewString())
		return c.Next()
	})

	status, _ := do(t, app, http.MethodPost, "/api/purchases", `{"job_id":"`+theirs.ID.String()+`","amount":"0"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/purchases", `{"job_id":"`+mine.ID.String()+`","amount":"10"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/purchases", `{"job_id":"`+uuid.NewString()+`","amount":"10"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/api/purchases", `{"job_id":"`+theirs.ID.String()+`","amount":"19.99","note":" rush "}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, app, http.MethodPost, "/api/purchases", `{"job_id":"`+theirs.ID.String()+`","amount":5.01}`)
	require.Equal(t, http.StatusCreated, status)

	require.Len(t, store.purchases, 2)
	assert.Equal(t, "rush", store.purchases[0].Note)
	assert.True(t, store.purchases[0].Amount.Equal(decimal.RequireFromString("19.99")))

	status, body := do(t, app, http.MethodGet, "/api/purchases", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "25.00", body["total"])
}
