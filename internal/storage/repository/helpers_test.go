package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/content-marketplace/internal/migrations"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с указанной ролью
func (f *TestDataFactory) CreateUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	name := "u" + uuid.NewString()[:8]
	u, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        name + "@example.com",
		Username:     name,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

// SubmitDocument проводит загрузку документа пользователем без ограничений по состоянию
func (f *TestDataFactory) SubmitDocument(t *testing.T, userID string, at time.Time) *models.OnboardingProgress {
	t.Helper()
	p, err := f.storage.SubmitIdentityDocument(context.Background(), userID,
		"identity/"+userID+"/"+uuid.NewString()+".png", at, func(models.IdentityStatus) error { return nil })
	require.NoError(t, err)
	return p
}

// CreateContent создает тестовый контент автора
func (f *TestDataFactory) CreateContent(t *testing.T, creatorID string, price int64) *models.Content {
	t.Helper()
	c, err := f.storage.CreateContent(context.Background(), models.Content{
		CreatorID:    creatorID,
		Title:        "Episode",
		PriceCents:   price,
		FileRef:      "content/" + creatorID + "/" + uuid.NewString() + ".mp4",
		ThumbnailRef: "thumbnails/" + creatorID + "/" + uuid.NewString() + ".jpg",
	})
	require.NoError(t, err)
	return c
}

// CreateTier создает тестовый тариф автора
func (f *TestDataFactory) CreateTier(t *testing.T, creatorID string, price int64) *models.SubscriptionTier {
	t.Helper()
	tier, err := f.storage.CreateTier(context.Background(), models.SubscriptionTier{
		CreatorID:  creatorID,
		Name:       "Gold",
		PriceCents: price,
		Benefits:   []string{"early access", "monthly Q&A"},
		IsActive:   true,
	})
	require.NoError(t, err)
	return tier
}

// countRows возвращает количество строк по условию
func countRows(t *testing.T, s *Storage, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB.QueryRow(query, args...).Scan(&n))
	return n
}

// mustField возвращает сырое значение поля JSON-объекта
func mustField(t *testing.T, payload []byte, field string) json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &obj))
	raw, ok := obj[field]
	require.True(t, ok, "field %s missing", field)
	return raw
}
