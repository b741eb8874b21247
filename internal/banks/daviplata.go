package banks

import (
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// Daviplata parses notification messages from DaviPlata.
type Daviplata struct{}

var daviplataTypes = []typeKeyword{
	{"pasaste", model.TypeTransfer},
	{"enviaste", model.TypeTransfer},
	{"sacaste", model.TypeWithdrawal},
	{"retiro", model.TypeWithdrawal},
	{"recibiste", model.TypeCredit},
	{"te metieron", model.TypeCredit},
	{"pagaste", model.TypeDebit},
	{"compraste", model.TypeDebit},
	{"pago", model.TypeDebit},
}

// BankName implements Parser.
func (Daviplata) BankName() string { return "DaviPlata" }

// SenderIDs implements Parser.
func (Daviplata) SenderIDs() []string {
	return []string{"daviplata", "85888"}
}

// CanHandle implements Parser.
func (d Daviplata) CanHandle(senderID string) bool {
	return matchesSender(d.SenderIDs(), senderID)
}

// Parse implements Parser.
func (d Daviplata) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	amount, ok := findAmount(body)
	if !ok {
		return nil
	}
	txType, ok := detectType(body, daviplataTypes)
	if !ok {
		return nil
	}

	info := &model.TransactionInfo{
		Type:       txType,
		Amount:     amount,
		Currency:   model.DefaultCurrency,
		Balance:    findBalance(body),
		Reference:  findReference(body),
		BankName:   d.BankName(),
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
		info.Description = "Retiro DaviPlata"
	}

	return info
}
