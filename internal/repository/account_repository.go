package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/apperrors"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	"github.com/lib/pq"
)

var ErrAccountNotFound = errors.New("account not found")

const (
	uniqueViolation = "23505"

	// userAccountTypeConstraint enforces one account per (user, account type).
	userAccountTypeConstraint = "accounts_user_id_account_type_key"
)

const accountColumns = `id, account_number, user_id, account_type, account_status, available_balance, created_at, updated_at`

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of truth).
type AccountWriteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *AccountWriteRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return queryAccount(ctx, r.db, query, accountNumber)
}

func (r *AccountWriteRepository) FindByUserIDAndType(ctx context.Context, userID int64, accountType models.AccountType) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND account_type = $2`
	return queryAccount(ctx, r.db, query, userID, accountType)
}

// FindByUserID returns the oldest account owned by userID.
func (r *AccountWriteRepository) FindByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id LIMIT 1`
	return queryAccount(ctx, r.db, query, userID)
}

func queryAccount(ctx context.Context, db *sql.DB, query string, args ...any) (*models.Account, error) {
	var account models.Account
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&account.ID, &account.AccountNumber, &account.UserID, &account.AccountType,
		&account.AccountStatus, &account.AvailableBalance, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Save inserts account when it has no record key yet and updates the keyed row otherwise.
// The store owns the (user_id, account_type) uniqueness rule: a violation is reported as
// a ResourceConflict so concurrent creations for the same pair cannot both succeed.
func (r *AccountWriteRepository) Save(ctx context.Context, account *models.Account) error {
	now := r.now()
	if account.ID == 0 {
		return r.insert(ctx, account, now)
	}

	query := `
		UPDATE accounts
		SET account_number = $2, user_id = $3, account_type = $4, account_status = $5,
			available_balance = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.AccountNumber, account.UserID, account.AccountType,
		account.AccountStatus, account.AvailableBalance, now,
	)
	if err != nil {
		return translateWriteError("failed to update account", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAccountNotFound
	}
	account.UpdatedAt = now
	return nil
}

func (r *AccountWriteRepository) insert(ctx context.Context, account *models.Account, now time.Time) error {
	query := `
		INSERT INTO accounts (account_number, user_id, account_type, account_status, available_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		account.AccountNumber, account.UserID, account.AccountType,
		account.AccountStatus, account.AvailableBalance, now, now,
	).Scan(&account.ID)
	if err != nil {
		return translateWriteError("failed to create account", err)
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func translateWriteError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == userAccountTypeConstraint {
		return apperrors.ResourceConflict("Account already exists")
	}
	return fmt.Errorf("%s: %w", msg, err)
}
