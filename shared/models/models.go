package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

func (t AccountType) String() string { return string(t) }

// ParseAccountType maps the wire name of an account type onto its variant.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeSavings, AccountTypeCurrent:
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

func (s AccountStatus) String() string { return string(s) }

// IsTerminal reports whether no lifecycle operation may move an account out of s.
func (s AccountStatus) IsTerminal() bool { return s == AccountStatusClosed }

// ParseAccountStatus maps the wire name of an account status onto its variant.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountStatusPending, AccountStatusActive, AccountStatusBlocked, AccountStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

// Account is the write model persisted in PostgreSQL.
// ID is the internal record key; AccountNumber is the customer-facing identifier.
type Account struct {
	ID               int64
	AccountNumber    string
	UserID           int64
	AccountType      AccountType
	AccountStatus    AccountStatus
	AvailableBalance decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AccountData is the wire shape of an account. Enumerations travel as their names.
type AccountData struct {
	AccountID        int64           `json:"accountId,omitempty"`
	AccountNumber    string          `json:"accountNumber,omitempty"`
	UserID           int64           `json:"userId"`
	AccountType      string          `json:"accountType"`
	AccountStatus    string          `json:"accountStatus,omitempty"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// Response is the success result of a lifecycle write.
type Response struct {
	ResponseCode string `json:"responseCode"`
	Message      string `json:"message"`
}

// User is the subset of the identity directory's user record the account service needs.
type User struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"emailId,omitempty"`
	Status    string `json:"status,omitempty"`
}
