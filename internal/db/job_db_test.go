package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/rajivgeraev/skillswap-api/internal/models"
)

// newPostgresStore поднимает PostgreSQL в контейнере и применяет миграции
func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("нужен Docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("skillswap_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(dsn, zap.NewNop()))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &Store{pool: pool, log: zap.NewNop()}
}

func createProfile(t *testing.T, store *Store, name string) uuid.UUID {
	t.Helper()
	p := &models.Profile{FullName: name, Role: models.RoleSeeker}
	require.NoError(t, store.CreateProfile(context.Background(), p))
	return p.ID
}

func TestAssignPartnerOnPostgres(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	maker := createProfile(t, store, "Anna")
	other := createProfile(t, store, "Boris")

	job := &models.Job{Name: "Essay review", Maker: maker}
	require.NoError(t, store.CreateJob(ctx, job))

	assigned, err := store.AssignPartner(ctx, job.ID, other, "carl")
	require.NoError(t, err)
	assert.False(t, assigned, "назначить партнёра может только автор")

	assigned, err = store.AssignPartner(ctx, uuid.New(), maker, "carl")
	require.NoError(t, err)
	assert.False(t, assigned)

	assigned, err = store.AssignPartner(ctx, job.ID, maker, "carl")
	require.NoError(t, err)
	assert.True(t, assigned)

	assigned, err = store.AssignPartner(ctx, job.ID, maker, "dina")
	require.NoError(t, err)
	assert.False(t, assigned, "работа уже занята")

	stored, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "carl", stored.Partner)

	open, err := store.ListOpenJobs(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestAssignPartnerConcurrentOnPostgres(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	maker := createProfile(t, store, "Anna")
	job := &models.Job{Name: "Logo design", Maker: maker}
	require.NoError(t, store.CreateJob(ctx, job))

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)
	for i := 0; i < n; i++ {
		partner := uuid.NewString()
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.AssignPartner(ctx, job.ID, maker, partner)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins = append(wins, partner)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, wins, 1)
	stored, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, wins[0], stored.Partner)
}
