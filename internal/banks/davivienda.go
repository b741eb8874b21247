package banks

import (
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// Davivienda parses notification messages from Banco Davivienda.
type Davivienda struct{}

var daviviendaTypes = []typeKeyword{
	{"transferencia enviada", model.TypeTransfer},
	{"transferiste", model.TypeTransfer},
	{"retiro", model.TypeWithdrawal},
	{"avance", model.TypeWithdrawal},
	{"consignacion", model.TypeCredit},
	{"abono", model.TypeCredit},
	{"transferencia recibida", model.TypeCredit},
	{"compra", model.TypeDebit},
	{"pago", model.TypeDebit},
}

// BankName implements Parser.
func (Davivienda) BankName() string { return "Davivienda" }

// SenderIDs implements Parser.
func (Davivienda) SenderIDs() []string {
	return []string{"davivienda", "85999"}
}

// CanHandle implements Parser.
func (d Davivienda) CanHandle(senderID string) bool {
	return matchesSender(d.SenderIDs(), senderID)
}

// Parse implements Parser.
func (d Davivienda) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	amount, ok := findAmount(body)
	if !ok {
		return nil
	}
	txType, ok := detectType(body, daviviendaTypes)
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
		BankName:   d.BankName(),
		Timestamp:  timestamp,
		RawMessage: body,
	}

	switch txType {
	case model.TypeDebit:
		info.Merchant = extractAfter(body, "en")
	case model.TypeTransfer:
		info.Merchant = extractAfter(body, "a la cuenta", "a")
	case model.TypeCredit:
		info.Merchant = extractAfter(body, "de", "desde")
	case model.TypeWithdrawal:
		info.Description = "Retiro en cajero"
	}

	return info
}
