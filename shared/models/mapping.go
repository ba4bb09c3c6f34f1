package models

// AccountToData renders the write model in its wire shape.
func AccountToData(a *Account) AccountData {
	return AccountData{
		AccountID:        a.ID,
		AccountNumber:    a.AccountNumber,
		UserID:           a.UserID,
		AccountType:      a.AccountType.String(),
		AccountStatus:    a.AccountStatus.String(),
		AvailableBalance: a.AvailableBalance,
	}
}

// AccountToView converts the PostgreSQL write model to the Redis read view model.
func AccountToView(a *Account) *AccountView {
	return &AccountView{
		AccountID:        a.ID,
		AccountNumber:    a.AccountNumber,
		UserID:           a.UserID,
		AccountType:      a.AccountType,
		AccountStatus:    a.AccountStatus,
		AvailableBalance: a.AvailableBalance,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// ViewToData renders a read view in its wire shape.
func ViewToData(v *AccountView) AccountData {
	return AccountData{
		AccountID:        v.AccountID,
		AccountNumber:    v.AccountNumber,
		UserID:           v.UserID,
		AccountType:      v.AccountType.String(),
		AccountStatus:    v.AccountStatus.String(),
		AvailableBalance: v.AvailableBalance,
	}
}

// ApplyAccountData overwrites the plain fields of dst from d without validating them.
// The record key, type and status are never taken from d: status changes go through the
// lifecycle operations so the closing and terminal-state rules hold.
func ApplyAccountData(dst *Account, d AccountData) {
	dst.AccountNumber = d.AccountNumber
	dst.UserID = d.UserID
	dst.AvailableBalance = d.AvailableBalance
}
