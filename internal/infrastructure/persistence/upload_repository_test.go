package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/payment"
	"github.com/sddportal/backend/internal/domain/shared"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUploadTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UploadModel{}, &models.AccountConfigModel{}))
	return db
}

func newUploadFixture(t *testing.T, agencyID, accountID *uuid.UUID, records ...upload.Record) *upload.Upload {
	t.Helper()
	if len(records) == 0 {
		records = []upload.Record{
			{"iban": "DE89370400440532013000", "amount": "10.00"},
			{"iban": "GB82WEST12345698765432", "amount": "20.50"},
		}
	}
	u, err := upload.NewUpload("debits.csv", agencyID, accountID, nil, records)
	require.NoError(t, err)
	return u
}

func TestGormUploadRepository_SaveAndFind(t *testing.T) {
	repo := NewGormUploadRepository(setupUploadTestDB(t))
	ctx := context.Background()
	agency := uuid.New()

	u := newUploadFixture(t, &agency, nil)
	u.StorageKey = upload.StorageKeyFor(u.ID, u.FileName)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "debits.csv", found.FileName)
	assert.Equal(t, u.StorageKey, found.StorageKey)
	assert.Equal(t, &agency, found.AgencyID)
	assert.Nil(t, found.AccountID)
	require.Len(t, found.Records, 2)
	assert.Equal(t, "20.50", found.Records[1]["amount"])
	require.Len(t, found.Rows, 2)
	assert.Equal(t, upload.RowStatusPending, found.Rows[0].Status)
}

func TestGormUploadRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormUploadRepository(setupUploadTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, upload.ErrUploadNotFound)
}

func TestGormUploadRepository_FindByID_NormalizesRows(t *testing.T) {
	db := setupUploadTestDB(t)
	repo := NewGormUploadRepository(db)
	ctx := context.Background()

	u := newUploadFixture(t, nil, nil)
	require.NoError(t, repo.Save(ctx, u))
	require.NoError(t, db.Model(&models.UploadModel{}).Where("id = ?", u.ID).Update("rows", "[]").Error)

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, found.Rows, 2, "missing rows are synthesized as pending")
	assert.Equal(t, upload.RowStatusPending, found.Rows[1].Status)
}

func TestGormUploadRepository_SaveRows(t *testing.T) {
	repo := NewGormUploadRepository(setupUploadTestDB(t))
	ctx := context.Background()

	u := newUploadFixture(t, nil, nil)
	require.NoError(t, repo.Save(ctx, u))

	row := &u.Rows[0]
	row.BeginAttempt(&payment.SaleRequest{TransactionID: "TX-1", IBAN: "DE89370400440532013000"}, time.Now())
	row.ApplyAccepted(&payment.GatewayResponse{OK: true, Status: "approved", UniqueID: "U1", TransactionID: "TX-1"})
	u.RowsChanged()
	require.NoError(t, repo.SaveRows(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, upload.RowStatusApproved, found.Rows[0].Status)
	assert.Equal(t, "U1", found.Rows[0].UniqueID())
	assert.Equal(t, 1, found.Rows[0].Attempts)
	assert.Equal(t, payment.MaskIBAN("DE89370400440532013000"), found.Rows[0].Request.IBAN)
	assert.Equal(t, 1, found.ApprovedCount)
	assert.Equal(t, u.Version, found.Version)
	assert.Len(t, found.Records, 2, "records untouched")

	t.Run("missing upload", func(t *testing.T) {
		ghost := newUploadFixture(t, nil, nil)
		assert.ErrorIs(t, repo.SaveRows(ctx, ghost), upload.ErrUploadNotFound)
	})
}

func TestGormUploadRepository_List(t *testing.T) {
	repo := NewGormUploadRepository(setupUploadTestDB(t))
	ctx := context.Background()
	agencyA, agencyB := uuid.New(), uuid.New()
	accountA := uuid.New()

	inA := newUploadFixture(t, &agencyA, nil)
	inAccount := newUploadFixture(t, &agencyA, &accountA)
	inAccount.FileName = "march-run.csv"
	inB := newUploadFixture(t, &agencyB, nil)
	unassigned := newUploadFixture(t, nil, nil)
	for i, u := range []*upload.Upload{inA, inAccount, inB, unassigned} {
		u.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, u))
	}

	t.Run("superadmin sees all newest first", func(t *testing.T) {
		items, total, err := repo.List(ctx, upload.Scope{All: true}, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, items, 4)
		assert.Equal(t, unassigned.ID, items[0].ID)
		assert.Nil(t, items[0].Records, "records are not loaded in listings")
		assert.Len(t, items[0].Rows, 2)
	})

	t.Run("agency scope", func(t *testing.T) {
		items, total, err := repo.List(ctx, upload.Scope{AgencyID: &agencyA}, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("account scope", func(t *testing.T) {
		items, _, err := repo.List(ctx, upload.Scope{AccountID: &accountA}, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, inAccount.ID, items[0].ID)
	})

	t.Run("empty scope sees nothing", func(t *testing.T) {
		items, total, err := repo.List(ctx, upload.Scope{}, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})

	t.Run("search and paging", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "MARCH"
		items, total, err := repo.List(ctx, upload.Scope{All: true}, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)

		filter = shared.Filter{Page: 2, PageSize: 3, OrderBy: "created_at", OrderDir: "asc"}
		items, total, err = repo.List(ctx, upload.Scope{All: true}, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, items, 1)
		assert.Equal(t, unassigned.ID, items[0].ID)
	})
}

func TestGormUploadRepository_Delete(t *testing.T) {
	repo := NewGormUploadRepository(setupUploadTestDB(t))
	ctx := context.Background()

	u := newUploadFixture(t, nil, nil)
	require.NoError(t, repo.Save(ctx, u))

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err := repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, upload.ErrUploadNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), upload.ErrUploadNotFound)
}

func newMockUploadRepository(t *testing.T) (*GormUploadRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormUploadRepository(gormDB), mock, mockDB
}

// SaveRows must be a single UPDATE that never touches the records column.
func TestGormUploadRepository_SaveRows_SingleStatement(t *testing.T) {
	repo, mock, mockDB := newMockUploadRepository(t)
	defer mockDB.Close()

	u := newUploadFixture(t, nil, nil)
	u.RowsChanged()

	mock.ExpectExec(`UPDATE "uploads" SET .*"rows"=.* WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveRows(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUploadRepository_SaveRows_StoreError(t *testing.T) {
	repo, mock, mockDB := newMockUploadRepository(t)
	defer mockDB.Close()

	u := newUploadFixture(t, nil, nil)
	mock.ExpectExec(`UPDATE "uploads"`).WillReturnError(sql.ErrConnDone)

	err := repo.SaveRows(context.Background(), u)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
