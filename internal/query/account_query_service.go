package query

import (
	"context"
	"errors"

	"github.com/amadorcf/YourBank-account-service/internal/repository"
	"github.com/amadorcf/YourBank-account-service/shared/apperrors"
	"github.com/amadorcf/YourBank-account-service/shared/cqrs"
	"github.com/amadorcf/YourBank-account-service/shared/models"
)

// AccountReader is the read model. Lookups return repository.ErrAccountNotFound when
// nothing matches.
type AccountReader interface {
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.AccountView, error)
	GetByUserID(ctx context.Context, userID int64) (*models.AccountView, error)
}

type AccountQueryService struct {
	reader AccountReader
}

func NewAccountQueryService(reader AccountReader) *AccountQueryService {
	return &AccountQueryService{reader: reader}
}

func (s *AccountQueryService) ReadAccountByAccountNumber(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountData, error) {
	view, err := s.byAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	data := models.ViewToData(view)
	return &data, nil
}

// GetBalance renders the available balance in its plain decimal form, e.g. "150.5".
func (s *AccountQueryService) GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (string, error) {
	view, err := s.byAccountNumber(ctx, q.AccountNumber)
	if err != nil {
		return "", err
	}
	return view.AvailableBalance.String(), nil
}

// ReadAccountByUserID returns the user's account, which must be ACTIVE. Users holding
// several accounts get the oldest one.
func (s *AccountQueryService) ReadAccountByUserID(ctx context.Context, q cqrs.GetAccountByUserQuery) (*models.AccountData, error) {
	view, err := s.reader.GetByUserID(ctx, q.UserID)
	if err != nil {
		return nil, translateReadError(err)
	}
	if view.AccountStatus != models.AccountStatusActive {
		return nil, apperrors.AccountStatus("Account is inactive/closed")
	}
	data := models.ViewToData(view)
	return &data, nil
}

func (s *AccountQueryService) byAccountNumber(ctx context.Context, accountNumber string) (*models.AccountView, error) {
	view, err := s.reader.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, translateReadError(err)
	}
	return view, nil
}

func translateReadError(err error) error {
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperrors.ResourceNotFound("")
	}
	return apperrors.DependencyUnavailable("account store unavailable", err)
}
