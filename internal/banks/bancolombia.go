package banks

import (
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// Bancolombia parses notification messages from Bancolombia.
type Bancolombia struct{}

// bancolombiaTypes is ordered most-specific first: "transferiste" and
// "enviaste" must win over the generic purchase keywords, or outbound
// transfers get misread as purchases.
var bancolombiaTypes = []typeKeyword{
	{"transferiste", model.TypeTransfer},
	{"enviaste", model.TypeTransfer},
	{"transferencia", model.TypeTransfer},
	{"retiraste", model.TypeWithdrawal},
	{"retiro", model.TypeWithdrawal},
	{"recibiste", model.TypeCredit},
	{"consignacion", model.TypeCredit},
	{"abono", model.TypeCredit},
	{"nomina", model.TypeCredit},
	{"compra", model.TypeDebit},
	{"pago", model.TypeDebit},
	{"cargo", model.TypeDebit},
}

// BankName implements Parser.
func (Bancolombia) BankName() string { return "Bancolombia" }

// SenderIDs implements Parser.
func (Bancolombia) SenderIDs() []string {
	return []string{"bancolombia", "85540", "87400"}
}

// CanHandle implements Parser.
func (b Bancolombia) CanHandle(senderID string) bool {
	return matchesSender(b.SenderIDs(), senderID)
}

// Parse implements Parser.
func (b Bancolombia) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	amount, ok := findAmount(body)
	if !ok {
		return nil
	}
	txType, ok := detectType(body, bancolombiaTypes)
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
		info.Merchant = extractAfter(body, "de", "desde")
	case model.TypeWithdrawal:
		info.Description = "Retiro en cajero"
	}

	return info
}
