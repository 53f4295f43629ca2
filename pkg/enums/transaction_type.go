package enums

import "fmt"

// TransactionType describes the allowed values for the `transaction_type`
// column in the transactions ledger.
type TransactionType string

const (
	TransactionTypeRequest     TransactionType = "request"
	TransactionTypeReturn      TransactionType = "return"
	TransactionTypeRestock     TransactionType = "restock"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeRequest,
	TransactionTypeReturn,
	TransactionTypeRestock,
	TransactionTypeTransferIn,
	TransactionTypeTransferOut,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType converts the raw string to TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
