package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refuseSetHook fails every SET while letting other commands through.
type refuseSetHook struct{}

func (refuseSetHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (refuseSetHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == "set" {
			err := errors.New("OOM command not allowed when used memory > 'maxmemory'")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (refuseSetHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: m.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return m, rdb
}

func TestReadRepositoryWarmsCacheThenServesFromIt(t *testing.T) {
	_, mock, db := newMockRepo(t)
	m, rdb := newMiniredisClient(t)
	readRepo := NewAccountReadRepository(db, rdb, time.Minute)

	// Only one query is expected: the second read must come from Redis.
	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC0000042").
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "ACTIVE", "150.5", fixedNow, fixedNow))

	first, err := readRepo.GetByAccountNumber(context.Background(), "ACC0000042")
	require.NoError(t, err)
	assert.True(t, m.Exists("account:view:ACC0000042"))
	assert.Equal(t, time.Minute, m.TTL("account:view:ACC0000042"))

	second, err := readRepo.GetByAccountNumber(context.Background(), "ACC0000042")
	require.NoError(t, err)
	assert.Equal(t, "150.5", second.AvailableBalance.String())
	assert.Equal(t, models.AccountStatusActive, second.AccountStatus)
	assert.Equal(t, first.AccountID, second.AccountID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheAccountViewRefreshesEntry(t *testing.T) {
	_, mock, db := newMockRepo(t)
	_, rdb := newMiniredisClient(t)
	readRepo := NewAccountReadRepository(db, rdb, time.Minute)
	ctx := context.Background()

	view := &models.AccountView{
		AccountNumber:    "ACC0000042",
		AccountStatus:    models.AccountStatusActive,
		AvailableBalance: decimal.NewFromInt(100),
	}
	readRepo.CacheAccountView(ctx, view)

	view.AvailableBalance = decimal.Zero
	readRepo.CacheAccountView(ctx, view)

	got, err := readRepo.GetByAccountNumber(ctx, "ACC0000042")
	require.NoError(t, err)
	assert.True(t, got.AvailableBalance.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheAccountViewEvictsStaleEntryWhenWriteFails(t *testing.T) {
	_, mock, db := newMockRepo(t)
	m, rdb := newMiniredisClient(t)
	readRepo := NewAccountReadRepository(db, rdb, 0)
	ctx := context.Background()

	readRepo.CacheAccountView(ctx, &models.AccountView{
		AccountNumber:    "ACC0000042",
		AccountStatus:    models.AccountStatusActive,
		AvailableBalance: decimal.NewFromInt(100),
	})
	require.True(t, m.Exists("account:view:ACC0000042"))

	rdb.AddHook(refuseSetHook{})
	readRepo.CacheAccountView(ctx, &models.AccountView{
		AccountNumber:    "ACC0000042",
		AccountStatus:    models.AccountStatusActive,
		AvailableBalance: decimal.Zero,
	})
	assert.False(t, m.Exists("account:view:ACC0000042"), "stale view must not survive a failed refresh")

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC0000042").
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "ACTIVE", "0", fixedNow, fixedNow))

	got, err := readRepo.GetByAccountNumber(ctx, "ACC0000042")
	require.NoError(t, err)
	assert.True(t, got.AvailableBalance.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadRepositoryReloadsAfterViewExpires(t *testing.T) {
	_, mock, db := newMockRepo(t)
	m, rdb := newMiniredisClient(t)
	readRepo := NewAccountReadRepository(db, rdb, time.Minute)
	ctx := context.Background()

	readRepo.CacheAccountView(ctx, &models.AccountView{
		AccountNumber:    "ACC0000042",
		AccountStatus:    models.AccountStatusActive,
		AvailableBalance: decimal.NewFromInt(100),
	})
	m.FastForward(2 * time.Minute)

	mock.ExpectQuery(`SELECT .* FROM accounts WHERE account_number = \$1`).
		WithArgs("ACC0000042").
		WillReturnRows(accountRows().AddRow(7, "ACC0000042", 3, "SAVINGS", "CLOSED", "0", fixedNow, fixedNow))

	got, err := readRepo.GetByAccountNumber(ctx, "ACC0000042")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusClosed, got.AccountStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}
