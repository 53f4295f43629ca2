package transactions

import (
	"strconv"
	"strings"

	"github.com/rdelgado-dev/stockroom-backend/pkg/db/models"
	"github.com/rdelgado-dev/stockroom-backend/pkg/enums"
)

// Legacy remarks back-reference: "REQUEST_TX_ID:<id>" optionally followed by
// "|<free text>". New return rows carry linked_request_transaction_id instead;
// the parser only exists so historic rows keep matching.
const requestRefPrefix = "REQUEST_TX_ID:"

// formatRequestRef renders the legacy remarks back-reference. The write path
// never emits it anymore; the repository uses it to match historic rows.
func formatRequestRef(requestTxID int64, note string) string {
	ref := requestRefPrefix + strconv.FormatInt(requestTxID, 10)
	if note == "" {
		return ref
	}
	return ref + "|" + note
}

// parseRequestRef extracts the request transaction id from a legacy remarks
// value. Returns false when the remarks carry no back-reference.
func parseRequestRef(remarks string) (int64, bool) {
	if !strings.HasPrefix(remarks, requestRefPrefix) {
		return 0, false
	}
	raw := strings.TrimPrefix(remarks, requestRefPrefix)
	if idx := strings.IndexByte(raw, '|'); idx >= 0 {
		raw = raw[:idx]
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// applyLegacyLink fills LinkedRequestTxID on return rows written before the
// column existed, so readers see one consistent link field. The stored row is
// untouched.
func applyLegacyLink(row *models.Transaction) {
	if row == nil || row.TransactionType != enums.TransactionTypeReturn {
		return
	}
	if row.LinkedRequestTxID != nil || row.Remarks == nil {
		return
	}
	if id, ok := parseRequestRef(*row.Remarks); ok {
		row.LinkedRequestTxID = &id
	}
}
