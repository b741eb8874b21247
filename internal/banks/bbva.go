package banks

import (
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// BBVA parses notification messages from BBVA Colombia.
type BBVA struct{}

var bbvaTypes = []typeKeyword{
	{"transferencia", model.TypeTransfer},
	{"retiro", model.TypeWithdrawal},
	{"abono", model.TypeCredit},
	{"deposito", model.TypeCredit},
	{"compra", model.TypeDebit},
	{"pago", model.TypeDebit},
	{"consumo", model.TypeDebit},
}

// BankName implements Parser.
func (BBVA) BankName() string { return "BBVA" }

// SenderIDs implements Parser.
func (BBVA) SenderIDs() []string {
	return []string{"bbva", "85330"}
}

// CanHandle implements Parser.
func (b BBVA) CanHandle(senderID string) bool {
	return matchesSender(b.SenderIDs(), senderID)
}

// Parse implements Parser.
func (b BBVA) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	amount, ok := findAmount(body)
	if !ok {
		return nil
	}
	txType, ok := detectType(body, bbvaTypes)
	if !ok {
		return nil
	}

	info := &model.TransactionInfo{
		Type:       txType,
		Amount:     amount,
		Currency:   model.DefaultCurrency,
		Balance:    findBalance(body),
		CardLast4:  findCardLast4(body),
		Reference:  findReference(body),
		BankName:   b.BankName(),
		Timestamp:  timestamp,
		RawMessage: body,
	}

	switch txType {
	case model.TypeDebit:
		info.Merchant = extractAfter(body, "en")
	case model.TypeTransfer:
		info.Merchant = extractAfter(body, "a")
	case model.TypeCredit:
		info.Merchant = extractAfter(body, "de")
	case model.TypeWithdrawal:
		info.Description = "Retiro en cajero"
	}

	return info
}
