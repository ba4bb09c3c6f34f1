package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccountNumberPrefix precedes the zero-padded sequence value of every account number.
const AccountNumberPrefix = "ACC"

// FormatAccountNumber renders a sequence value as an account number, e.g. 42 -> ACC0000042.
func FormatAccountNumber(sequence int64) string {
	return fmt.Sprintf("%s%07d", AccountNumberPrefix, sequence)
}

// ValidateAccountNumber validates the account number format
func ValidateAccountNumber(accountNumber string) bool {
	digits, ok := strings.CutPrefix(accountNumber, AccountNumberPrefix)
	if !ok || len(digits) < 7 {
		return false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
