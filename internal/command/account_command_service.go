package command

import (
	"context"
	"errors"

	"github.com/amadorcf/YourBank-account-service/internal/identity"
	"github.com/amadorcf/YourBank-account-service/internal/metrics"
	"github.com/amadorcf/YourBank-account-service/internal/repository"
	"github.com/amadorcf/YourBank-account-service/shared/apperrors"
	"github.com/amadorcf/YourBank-account-service/shared/cqrs"
	"github.com/amadorcf/YourBank-account-service/shared/events"
	"github.com/amadorcf/YourBank-account-service/shared/logger"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	"github.com/amadorcf/YourBank-account-service/shared/utils"
	"github.com/shopspring/decimal"
)

// MinimumStatusChangeBalance is the balance an account must hold before its status
// may be changed.
var MinimumStatusChangeBalance = decimal.NewFromInt(10)

// AccountStore is the write store of accounts. Lookups return
// repository.ErrAccountNotFound when nothing matches.
type AccountStore interface {
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByUserIDAndType(ctx context.Context, userID int64, accountType models.AccountType) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
}

// UserDirectory returns identity.ErrUserNotFound for unknown users.
type UserDirectory interface {
	ResolveUser(ctx context.Context, userID int64) (*models.User, error)
}

type SequenceGenerator interface {
	NextAccountSequence(ctx context.Context) (int64, error)
}

type AccountViewCache interface {
	CacheAccountView(ctx context.Context, view *models.AccountView)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// BalanceReader is the query-side balance lookup closing re-derives the balance through.
type BalanceReader interface {
	GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (string, error)
}

type Config struct {
	Store       AccountStore
	Users       UserDirectory
	Sequence    SequenceGenerator
	Views       AccountViewCache
	Publisher   EventPublisher
	Balances    BalanceReader
	SuccessCode string
}

// AccountCommandService writes account state and keeps the read model in sync.
type AccountCommandService struct {
	store       AccountStore
	users       UserDirectory
	sequence    SequenceGenerator
	views       AccountViewCache
	publisher   EventPublisher
	balances    BalanceReader
	successCode string
}

func NewAccountCommandService(cfg Config) *AccountCommandService {
	return &AccountCommandService{
		store:       cfg.Store,
		users:       cfg.Users,
		sequence:    cfg.Sequence,
		views:       cfg.Views,
		publisher:   cfg.Publisher,
		balances:    cfg.Balances,
		successCode: cfg.SuccessCode,
	}
}

// CreateAccount opens a PENDING, zero-balance account for an existing user, at most one
// per (user, account type). A sequence value is consumed only once both checks pass.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (resp *models.Response, err error) {
	defer func() { observe("create", err) }()

	if _, err := s.users.ResolveUser(ctx, cmd.UserID); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFound("User not found")
		}
		return nil, apperrors.DependencyUnavailable("identity directory unavailable", err)
	}

	accountType, err := models.ParseAccountType(cmd.AccountType)
	if err != nil {
		return nil, apperrors.InvalidRequest(err.Error())
	}

	existing, err := s.store.FindByUserIDAndType(ctx, cmd.UserID, accountType)
	switch {
	case err == nil && existing != nil:
		logger.Error("account already exists", nil, logger.Fields{
			"userId":        cmd.UserID,
			"accountType":   accountType,
			"accountNumber": existing.AccountNumber,
		})
		return nil, apperrors.ResourceConflict("Account already exists")
	case err != nil && !errors.Is(err, repository.ErrAccountNotFound):
		return nil, apperrors.DependencyUnavailable("account store unavailable", err)
	}

	seq, err := s.sequence.NextAccountSequence(ctx)
	if err != nil {
		return nil, apperrors.DependencyUnavailable("sequence generator unavailable", err)
	}

	account := &models.Account{
		AccountNumber:    utils.FormatAccountNumber(seq),
		UserID:           cmd.UserID,
		AccountType:      accountType,
		AccountStatus:    models.AccountStatusPending,
		AvailableBalance: decimal.Zero,
	}
	if err := s.save(ctx, account); err != nil {
		return nil, err
	}

	s.refresh(ctx, account, events.AccountCreated, events.AccountCreatedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
		AccountType:   account.AccountType.String(),
	})
	logger.Info("account created", logger.Fields{
		"accountNumber": account.AccountNumber,
		"userId":        account.UserID,
		"accountType":   account.AccountType,
	})
	return s.success("Account created successfully"), nil
}

// UpdateStatus moves an account to the requested status. Both checks run against the
// stored record before the new status is applied.
func (s *AccountCommandService) UpdateStatus(ctx context.Context, cmd cqrs.UpdateAccountStatusCommand) (resp *models.Response, err error) {
	defer func() { observe("update_status", err) }()

	account, err := s.find(ctx, cmd.AccountNumber, "Account not found")
	if err != nil {
		return nil, err
	}

	// Known ambiguity: ACTIVE accounts are the ones rejected here even though the
	// message speaks of inactive/closed accounts. The behaviour is kept as found.
	if account.AccountStatus == models.AccountStatusActive || account.AccountStatus.IsTerminal() {
		return nil, apperrors.AccountStatus("Account is inactive/closed")
	}
	if account.AvailableBalance.LessThan(MinimumStatusChangeBalance) {
		return nil, apperrors.InsufficientFunds("Minimum balance of 10 is required")
	}

	// CLOSED would skip the zero balance rule; closing has its own operation.
	if cmd.Status.IsTerminal() {
		return nil, apperrors.InvalidRequest("Use the close operation to close an account")
	}

	previous := account.AccountStatus
	account.AccountStatus = cmd.Status
	if err := s.save(ctx, account); err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(previous.String(), account.AccountStatus.String())
	s.refresh(ctx, account, events.AccountStatusUpdated, events.AccountStatusUpdatedEvent{
		AccountNumber:  account.AccountNumber,
		PreviousStatus: previous.String(),
		Status:         account.AccountStatus.String(),
	})
	return s.success("Account updated successfully"), nil
}

// UpdateAccount overwrites the stored account from cmd.Data.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (resp *models.Response, err error) {
	defer func() { observe("update", err) }()

	// Known defect kept as found: the lookup uses the account number carried in the
	// body, so cmd.AccountNumber (the path identifier) plays no part in it.
	account, err := s.find(ctx, cmd.Data.AccountNumber, "Account not found on the server")
	if err != nil {
		return nil, err
	}

	models.ApplyAccountData(account, cmd.Data)
	if err := s.save(ctx, account); err != nil {
		return nil, err
	}

	s.refresh(ctx, account, events.AccountUpdated, events.AccountUpdatedEvent{
		AccountNumber:    account.AccountNumber,
		UserID:           account.UserID,
		AvailableBalance: account.AvailableBalance.String(),
	})
	return s.success("Account updated successfully"), nil
}

// CloseAccount marks a zero-balance account CLOSED and persists it. Closing an account
// that is already CLOSED succeeds without writing or announcing anything.
func (s *AccountCommandService) CloseAccount(ctx context.Context, cmd cqrs.CloseAccountCommand) (resp *models.Response, err error) {
	defer func() { observe("close", err) }()

	account, err := s.find(ctx, cmd.AccountNumber, "")
	if err != nil {
		return nil, err
	}
	if account.AccountStatus.IsTerminal() {
		return s.success("Account closed successfully"), nil
	}

	rendered, err := s.balances.GetBalance(ctx, cqrs.GetBalanceQuery{AccountNumber: cmd.AccountNumber})
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(rendered)
	if err != nil {
		return nil, apperrors.DependencyUnavailable("unreadable balance", err)
	}
	// The read model may lag the write store; both must agree on zero.
	if !balance.IsZero() || !account.AvailableBalance.IsZero() {
		return nil, apperrors.AccountClosing("Balance should be zero")
	}

	previous := account.AccountStatus
	account.AccountStatus = models.AccountStatusClosed
	if err := s.save(ctx, account); err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(previous.String(), account.AccountStatus.String())
	s.refresh(ctx, account, events.AccountClosed, events.AccountClosedEvent{
		AccountNumber: account.AccountNumber,
		UserID:        account.UserID,
	})
	return s.success("Account closed successfully"), nil
}

func (s *AccountCommandService) find(ctx context.Context, accountNumber, notFoundMessage string) (*models.Account, error) {
	account, err := s.store.FindByAccountNumber(ctx, accountNumber)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, apperrors.ResourceNotFound(notFoundMessage)
	}
	if err != nil {
		return nil, apperrors.DependencyUnavailable("account store unavailable", err)
	}
	return account, nil
}

func (s *AccountCommandService) save(ctx context.Context, account *models.Account) error {
	err := s.store.Save(ctx, account)
	if err == nil {
		return nil
	}
	if apperrors.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperrors.ResourceNotFound("Account not found on the server")
	}
	return apperrors.DependencyUnavailable("account store unavailable", err)
}

// refresh updates the read model and announces the change. Neither step is allowed to
// fail the write that already happened.
func (s *AccountCommandService) refresh(ctx context.Context, account *models.Account, eventType string, data any) {
	s.views.CacheAccountView(ctx, models.AccountToView(account))
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		logger.Error("failed to publish account event", err, logger.Fields{
			"event":         eventType,
			"accountNumber": account.AccountNumber,
		})
	}
}

func (s *AccountCommandService) success(message string) *models.Response {
	return &models.Response{ResponseCode: s.successCode, Message: message}
}

func observe(operation string, err error) {
	switch {
	case err == nil:
		metrics.RecordOperation(operation, "success")
	case apperrors.KindOf(err) != "":
		metrics.RecordOperation(operation, string(apperrors.KindOf(err)))
	default:
		metrics.RecordOperation(operation, "error")
	}
}
