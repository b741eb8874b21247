package banks

import (
	"regexp"
	"strings"
	"time"

	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/money"
)

// Generic is the fallback parser for senders no bank parser recognizes. It
// relies on keyword heuristics over the body instead of sender identity,
// so sender dispatch never selects it: CanHandle is always false and
// callers must ask CanParse first.
type Generic struct{}

// exclusionKeywords reject a message outright before any other signal is
// considered: promotions, periodic summaries, OTP codes and account
// maintenance notices routinely contain amounts and spending words without
// being transactions.
var exclusionKeywords = []string{
	"resumen del mes",
	"resumen de tus",
	"estado de cuenta",
	"codigo de verificacion",
	"codigo es",
	"clave dinamica",
	"no compartas",
	"promocion",
	"descuento",
	"felicitaciones",
	"cuota de manejo sera",
	"actualiza tus datos",
	"mantenimiento programado",
	"invitamos",
}

var expenseKeywords = []string{
	"compra",
	"pago",
	"pagaste",
	"retiro",
	"retiraste",
	"debito",
	"cargo",
	"consumo",
	"transferencia",
	"enviaste",
}

var incomeKeywords = []string{
	"recibiste",
	"consignacion",
	"abono",
	"deposito",
	"nomina",
	"te llego",
}

// genericAmountRes are the currency notations tried in order against the
// body until one yields a parseable amount. Each capture must end on a
// digit so a sentence-ending period is not swallowed into the amount.
var genericAmountRes = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*([0-9](?:[0-9.,]*[0-9])?)`),
	regexp.MustCompile(`(?i)\bCOP\s*([0-9](?:[0-9.,]*[0-9])?)`),
	regexp.MustCompile(`(?i)\bpor\s+(?:valor\s+de\s+)?([0-9](?:[0-9.,]*[0-9])?)`),
	regexp.MustCompile(`(?i)\bvalor\s*:?\s*([0-9](?:[0-9.,]*[0-9])?)`),
}

// BankName implements Parser.
func (Generic) BankName() string { return "Desconocido" }

// SenderIDs implements Parser.
func (Generic) SenderIDs() []string { return nil }

// CanHandle implements Parser. The generic parser is never chosen by
// sender; it always answers false.
func (Generic) CanHandle(string) bool { return false }

// CanParse is the body-only pre-check for fallback parsing: the message
// must contain no exclusion keyword, at least one expense or income
// keyword, and at least one parseable amount.
func (g Generic) CanParse(body string) bool {
	folded := foldBody(body)
	for _, kw := range exclusionKeywords {
		if strings.Contains(folded, kw) {
			return false
		}
	}
	if !containsAny(folded, expenseKeywords) && !containsAny(folded, incomeKeywords) {
		return false
	}
	_, ok := g.findAmount(body)
	return ok
}

// Parse implements Parser.
func (g Generic) Parse(body string, timestamp time.Time) *model.TransactionInfo {
	if !g.CanParse(body) {
		return nil
	}
	amount, ok := g.findAmount(body)
	if !ok {
		return nil
	}

	folded := foldBody(body)
	txType := model.TypeDebit
	switch {
	case containsAny(folded, incomeKeywords):
		txType = model.TypeCredit
	case strings.Contains(folded, "retir"):
		txType = model.TypeWithdrawal
	case strings.Contains(folded, "transferencia"), strings.Contains(folded, "enviaste"):
		txType = model.TypeTransfer
	}

	return &model.TransactionInfo{
		Type:       txType,
		Amount:     amount,
		Currency:   model.DefaultCurrency,
		Balance:    findBalance(body),
		CardLast4:  findCardLast4(body),
		Reference:  findReference(body),
		BankName:   g.BankName(),
		Timestamp:  timestamp,
		RawMessage: body,
	}
}

func (Generic) findAmount(body string) (float64, bool) {
	for _, re := range genericAmountRes {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if value, ok := money.Parse(m[1]); ok {
			return value, true
		}
	}
	return 0, false
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
