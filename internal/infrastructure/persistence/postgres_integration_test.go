//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/account"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/migration"
	"github.com/sddportal/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("sdd_test"),
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

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrations.FS, "", nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	return db
}

func TestPostgres_UploadLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormUploadRepository(db)
	ctx := context.Background()

	agency := uuid.New()
	u, err := upload.NewUpload("debits.csv", &agency, nil, nil, []upload.Record{
		{"iban": "DE89370400440532013000", "amount": "10.00"},
		{"iban": "GB82WEST12345698765432", "amount": "20.50"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	u.Rows[0].Status = upload.RowStatusApproved
	u.Rows[0].BaseTransactionID = "TX-1"
	u.RowsChanged()
	require.NoError(t, repo.SaveRows(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.ApprovedCount)
	assert.Equal(t, upload.RowStatusApproved, found.Rows[0].Status)
	assert.Equal(t, "TX-1", found.Rows[0].BaseTransactionID)
	assert.Equal(t, upload.RowStatusPending, found.Rows[1].Status)

	list, total, err := repo.List(ctx, upload.Scope{AgencyID: &agency}, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Rows, 2)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, upload.ErrUploadNotFound)
}

func TestPostgres_AccountConfig(t *testing.T) {
	db := newPostgresDB(t)
	repo := NewGormAccountConfigRepository(db)
	ctx := context.Background()

	cfg := &account.Config{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            "Gym Berlin",
		DefaultCurrency: "EUR",
	}
	require.NoError(t, repo.Save(ctx, cfg))

	found, err := repo.FindByID(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gym Berlin", found.Name)
	assert.Empty(t, found.FieldMapping)
}
