package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is the read-optimised projection of an account, cached in Redis.
type AccountView struct {
	AccountID        int64           `json:"accountId"`
	AccountNumber    string          `json:"accountNumber"`
	UserID           int64           `json:"userId"`
	AccountType      AccountType     `json:"accountType"`
	AccountStatus    AccountStatus   `json:"accountStatus"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CreatedAt        time.Time       `json:"createdTimestamp"`
	UpdatedAt        time.Time       `json:"updatedTimestamp"`
}
