package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amadorcf/YourBank-account-service/shared/apperrors"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	"github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*AccountWriteRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewAccountWriteRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock, db
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "account_number", "user_id", "account_type", "account_status", "available_balance", "created_at", "updated_at",
	})
}

func TestFindByAccountNumber(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC0000042").
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "ACTIVE", "150.5", fixedNow, fixedNow))

	account, err := repo.FindByAccountNumber(context.Background(), "ACC0000042")
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	assert.Equal(t, models.AccountTypeSavings, account.AccountType)
	assert.Equal(t, models.AccountStatusActive, account.AccountStatus)
	assert.Equal(t, "150.5", account.AvailableBalance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByAccountNumberNotFound(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC9999999").
		WillReturnRows(accountRows())

	_, err := repo.FindByAccountNumber(context.Background(), "ACC9999999")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestFindByUserIDAndType(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE user_id = \$1 AND account_type = \$2`).
		WithArgs(int64(3), "CURRENT").
		WillReturnRows(accountRows().AddRow(8, "ACC0000043", 3, "CURRENT", "PENDING", "0", fixedNow, fixedNow))

	account, err := repo.FindByUserIDAndType(context.Background(), 3, models.AccountTypeCurrent)
	require.NoError(t, err)
	assert.Equal(t, "ACC0000043", account.AccountNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUserIDReturnsOldest(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE user_id = \$1 ORDER BY id LIMIT 1`).
		WithArgs(int64(3)).
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "ACTIVE", "10", fixedNow, fixedNow))

	account, err := repo.FindByUserID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveInsertsNewAccount(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("ACC0000042", int64(3), "SAVINGS", "PENDING", sqlmock.AnyArg(), fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	account := &models.Account{
		AccountNumber:    "ACC0000042",
		UserID:           3,
		AccountType:      models.AccountTypeSavings,
		AccountStatus:    models.AccountStatusPending,
		AvailableBalance: decimal.Zero,
	}
	require.NoError(t, repo.Save(context.Background(), account))
	assert.Equal(t, int64(11), account.ID)
	assert.Equal(t, fixedNow, account.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveInsertUniqueViolationIsConflict(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_user_id_account_type_key"})

	err := repo.Save(context.Background(), &models.Account{
		AccountNumber: "ACC0000042", UserID: 3,
		AccountType: models.AccountTypeSavings, AccountStatus: models.AccountStatusPending,
	})
	assert.True(t, apperrors.Is(err, apperrors.KindResourceConflict))
}

func TestSaveAccountNumberCollisionIsNotConflict(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_account_number_key"})

	err := repo.Save(context.Background(), &models.Account{
		AccountNumber: "ACC0000042", UserID: 3,
		AccountType: models.AccountTypeSavings, AccountStatus: models.AccountStatusPending,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.Kind(""), apperrors.KindOf(err))
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "accounts_account_number_key", pqErr.Constraint)
}

func TestSaveUpdatesExistingAccount(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(int64(7), "ACC0000042", int64(3), "SAVINGS", "CLOSED", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &models.Account{
		ID: 7, AccountNumber: "ACC0000042", UserID: 3,
		AccountType: models.AccountTypeSavings, AccountStatus: models.AccountStatusClosed,
	}
	require.NoError(t, repo.Save(context.Background(), account))
	assert.Equal(t, fixedNow, account.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUpdateMissingRow(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.Account{ID: 99, AccountNumber: "ACC0000099"})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

// unreachableRedis returns a client whose commands fail immediately, so every cache
// read is a miss and every cache write is dropped.
func unreachableRedis(t *testing.T) *goredis.Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestReadRepositoryFallsBackToPostgres(t *testing.T) {
	_, mock, db := newMockRepo(t)
	readRepo := NewAccountReadRepository(db, unreachableRedis(t), time.Minute)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC0000042").
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "PENDING", "150.5", fixedNow, fixedNow))

	view, err := readRepo.GetByAccountNumber(context.Background(), "ACC0000042")
	require.NoError(t, err)
	assert.Equal(t, "150.5", view.AvailableBalance.String())
	assert.Equal(t, models.AccountStatusPending, view.AccountStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadRepositoryGetByUserIDNotFound(t *testing.T) {
	_, mock, db := newMockRepo(t)
	readRepo := NewAccountReadRepository(db, unreachableRedis(t), time.Minute)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(accountRows())

	_, err := readRepo.GetByUserID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
