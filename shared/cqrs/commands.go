package cqrs

import "github.com/amadorcf/YourBank-account-service/shared/models"

// CreateAccountCommand opens an account of AccountType (wire name) for UserID.
type CreateAccountCommand struct {
	UserID      int64
	AccountType string
}

// UpdateAccountStatusCommand moves the account identified by AccountNumber to Status.
type UpdateAccountStatusCommand struct {
	AccountNumber string
	Status        models.AccountStatus
}

// UpdateAccountCommand overwrites an account from Data. AccountNumber is the path
// identifier the request arrived on.
type UpdateAccountCommand struct {
	AccountNumber string
	Data          models.AccountData
}

type CloseAccountCommand struct {
	AccountNumber string
}
