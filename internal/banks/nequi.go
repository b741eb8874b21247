package banks

import (
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// Nequi parses notification messages from Nequi.
type Nequi struct{}

var nequiTypes = []typeKeyword{
	{"enviaste", model.TypeTransfer},
	{"retiraste", model.TypeWithdrawal},
	{"recibiste", model.TypeCredit},
	{"te llego", model.TypeCredit},
	{"pagaste", model.TypeDebit},
	{"compraste", model.TypeDebit},
	{"compra", model.TypeDebit},
}

// BankName implements Parser.
func (Nequi) BankName() string { return "Nequi" }

// SenderIDs implements Parser.
func (Nequi) SenderIDs() []string {
	return []string{"nequi", "87725"}
}

// CanHandle implements Parser.
func (n Nequi) CanHandle(senderID string) bool {
	return matchesSender(n.SenderIDs(), senderID)
}

// Parse implements Parser.
func (n Nequi) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	amount, ok := findAmount(body)
	if !ok {
		return nil
	}
	txType, ok := detectType(body, nequiTypes)
	if !ok {
		return nil
	}

	info := &model.TransactionInfo{
		Type:       txType,
		Amount:     amount,
		Currency:   model.DefaultCurrency,
		Balance:    findBalance(body),
		Reference:  findReference(body),
		BankName:   n.BankName(),
		Timestamp:  timestamp,
		RawMessage: body,
	}

	switch txType {
	case model.TypeTransfer:
		info.Merchant = extractAfter(body, "a")
	case model.TypeCredit:
		info.Merchant = extractAfter(body, "de", "desde")
	case model.TypeDebit:
		info.Merchant = extractAfter(body, "en", "a")
	case model.TypeWithdrawal:
		info.Description = "Retiro Nequi"
	}

	return info
}
