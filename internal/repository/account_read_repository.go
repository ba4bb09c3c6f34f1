package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/models"
	sharedredis "github.com/amadorcf/YourBank-account-service/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

const accountViewKeyPrefix = "account:view:"

// AccountReadRepository handles all read operations for accounts.
// It treats Redis as the primary read store (the CQRS read model) and falls
// back to PostgreSQL transparently, warming the cache on every cold read.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.AccountView]
}

// NewAccountReadRepository builds the read side. Cached views expire after ttl, which
// bounds how long an entry can outlive a lost cache write.
func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client, ttl time.Duration) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.AccountView](redisClient, accountViewKeyPrefix, ttl),
	}
}

// GetByAccountNumber returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, accountNumber); ok {
		return view, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	account, err := queryAccount(ctx, r.db, query, accountNumber)
	if err != nil {
		return nil, err
	}

	view := models.AccountToView(account)
	r.CacheAccountView(ctx, view)
	return view, nil
}

// GetByUserID returns the oldest account of userID from PostgreSQL and warms its cache entry.
func (r *AccountReadRepository) GetByUserID(ctx context.Context, userID int64) (*models.AccountView, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id LIMIT 1`
	account, err := queryAccount(ctx, r.db, query, userID)
	if err != nil {
		return nil, err
	}

	view := models.AccountToView(account)
	r.CacheAccountView(ctx, view)
	return view, nil
}

// CacheAccountView stores or refreshes the Redis read model for an account.
// Called by the command service after every mutation to keep the read model current.
// When the write fails the old entry is evicted so the next read reloads from PostgreSQL.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	if err := r.cache.Set(ctx, view.AccountNumber, view); err != nil {
		_ = r.cache.Delete(ctx, view.AccountNumber)
	}
}
