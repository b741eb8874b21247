package fuzzy

import (
	"strings"
	"time"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/money"
)

// typeWords maps transaction-type field text to a type, checked in order so
// transfer phrasing wins over generic spending words.
var typeWords = []struct {
	word   string
	txType model.TransactionType
}{
	{"transfer", model.TypeTransfer},
	{"envi", model.TypeTransfer},
	{"retir", model.TypeWithdrawal},
	{"sacaste", model.TypeWithdrawal},
	{"recib", model.TypeCredit},
	{"consignacion", model.TypeCredit},
	{"abono", model.TypeCredit},
	{"compra", model.TypeDebit},
	{"pag", model.TypeDebit},
}

// ExtractTransaction applies a learned pattern to a body and assembles a
// TransactionInfo from the extracted fields. A nil result means the pattern
// did not match or the fields do not amount to a transaction.
func (m *Matcher) ExtractTransaction(p model.LearnedBankPattern, body string, timestamp time.Time) (*model.TransactionInfo, float64) {
	if !p.Enabled {
		return nil, 0
	}
	match := m.Match(p.Pattern, body)
	if match == nil {
		return nil, 0
	}

	rawAmount, ok := match.Fields[model.FieldAmount]
	if !ok {
		return nil, 0
	}
	amount, ok := money.Parse(rawAmount)
	if !ok {
		return nil, 0
	}

	info := &model.TransactionInfo{
		Type:       model.TypeDebit,
		Amount:     amount,
		Currency:   model.DefaultCurrency,
		Merchant:   strings.TrimSpace(match.Fields[model.FieldMerchant]),
		CardLast4:  match.Fields[model.FieldCardLast4],
		BankName:   p.BankName,
		Timestamp:  timestamp,
		RawMessage: body,
	}
	if raw, ok := match.Fields[model.FieldBalance]; ok {
		if balance, ok := money.Parse(raw); ok {
			info.Balance = &balance
		}
	}
	if raw, ok := match.Fields[model.FieldTransactionType]; ok {
		folded := common.FoldAccents(raw)
		for _, tw := range typeWords {
			if strings.Contains(folded, tw.word) {
				info.Type = tw.txType
				break
			}
		}
	}

	return info, match.Confidence
}

// MatchesSender reports whether the pattern claims the sender id, using the
// same containment rule bank parsers use.
func MatchesSender(p model.LearnedBankPattern, senderID string) bool {
	sender := strings.ToLower(strings.TrimSpace(senderID))
	if sender == "" {
		return false
	}
	for _, id := range p.SenderIDs {
		if strings.Contains(sender, strings.ToLower(id)) {
			return true
		}
	}
	return false
}
