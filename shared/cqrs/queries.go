package cqrs

// GetAccountQuery fetches a single account by account number.
type GetAccountQuery struct {
	AccountNumber string
}

// GetBalanceQuery fetches the available balance of an account.
type GetBalanceQuery struct {
	AccountNumber string
}

// GetAccountByUserQuery fetches the account owned by a user.
type GetAccountByUserQuery struct {
	UserID int64
}
