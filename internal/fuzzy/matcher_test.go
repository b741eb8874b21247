package fuzzy

import (
	"testing"
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// purchasePattern mirrors what inference produces for a two-anchor purchase
// message: "Compra por $<amount> en <merchant>."
func purchasePattern() model.InferredPattern {
	return model.InferredPattern{
		Segments: []model.PatternSegment{
			model.FixedText("Compra por $", true),
			model.Variable(model.FieldAmount),
			model.FixedText(" en ", true),
			model.Variable(model.FieldMerchant),
		},
	}
}

func TestMatcherMatch(t *testing.T) {
	matcher := NewMatcher(Config{})

	tests := []struct {
		wantFields map[model.FieldType]string
		name       string
		body       string
		pattern    model.InferredPattern
		wantMatch  bool
	}{
		{
			name:      "exact anchors",
			pattern:   purchasePattern(),
			body:      "Compra por $45.000 en TIENDA D1",
			wantMatch: true,
			wantFields: map[model.FieldType]string{
				model.FieldAmount:   "45.000",
				model.FieldMerchant: "TIENDA D1",
			},
		},
		{
			name:      "anchor case differences",
			pattern:   purchasePattern(),
			body:      "COMPRA POR $99.500 EN CARULLA",
			wantMatch: true,
			wantFields: map[model.FieldType]string{
				model.FieldAmount:   "99.500",
				model.FieldMerchant: "CARULLA",
			},
		},
		{
			name:      "small anchor drift tolerated when fuzzy allowed",
			pattern:   purchasePattern(),
			body:      "Compras por $45.000 en TIENDA D1",
			wantMatch: true,
			wantFields: map[model.FieldType]string{
				model.FieldAmount:   "45.000",
				model.FieldMerchant: "TIENDA D1",
			},
		},
		{
			name: "drift rejected when fuzzy not allowed",
			pattern: model.InferredPattern{
				Segments: []model.PatternSegment{
					model.FixedText("Compra por $", false),
					model.Variable(model.FieldAmount),
				},
			},
			body:      "Compras por $45.000",
			wantMatch: false,
		},
		{
			name:      "missing anchor fails",
			pattern:   purchasePattern(),
			body:      "Retiraste $80.000. Saldo: $120.000",
			wantMatch: false,
		},
		{
			name:      "empty extraction fails",
			pattern:   purchasePattern(),
			body:      "Compra por $ en TIENDA D1",
			wantMatch: false,
		},
		{
			name:      "amount field must parse as money",
			pattern:   purchasePattern(),
			body:      "Compra por $sin-monto en TIENDA D1",
			wantMatch: false,
		},
		{
			name:      "empty body fails",
			pattern:   purchasePattern(),
			body:      "",
			wantMatch: false,
		},
		{
			name:      "pattern without segments fails",
			pattern:   model.InferredPattern{},
			body:      "Compra por $45.000 en TIENDA D1",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.pattern, tt.body)
			if !tt.wantMatch {
				if got != nil {
					t.Fatalf("Match() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Match() = nil, want a match")
			}
			if got.Confidence < matcher.cfg.MinConfidence {
				t.Errorf("Confidence = %v, below minimum %v", got.Confidence, matcher.cfg.MinConfidence)
			}
			for field, want := range tt.wantFields {
				if got.Fields[field] != want {
					t.Errorf("Fields[%s] = %q, want %q", field, got.Fields[field], want)
				}
			}
		})
	}
}

func TestMatcherExactMatchHasFullConfidence(t *testing.T) {
	matcher := NewMatcher(Config{})
	got := matcher.Match(purchasePattern(), "Compra por $45.000 en TIENDA D1")
	if got == nil {
		t.Fatal("Match() = nil, want a match")
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for exact anchors", got.Confidence)
	}
}

func TestMatcherFuzzySearchWindowIsBounded(t *testing.T) {
	matcher := NewMatcher(Config{SearchWindow: 8})

	pattern := model.InferredPattern{
		Segments: []model.PatternSegment{
			model.FixedText("Pago de ", true),
			model.Variable(model.FieldMerchant),
		},
	}

	// An exact anchor is found at any distance; a drifted one only inside
	// the fuzzy search window.
	exact := "aviso importante para usted hoy: Pago de NETFLIX"
	if got := matcher.Match(pattern, exact); got == nil {
		t.Error("exact anchor past the window should still match")
	}

	drifted := "aviso importante para usted hoy: Psgo de NETFLIX"
	if got := matcher.Match(pattern, drifted); got != nil {
		t.Errorf("Match() found drifted anchor beyond the search window: %+v", got)
	}
}

func TestMatcherFinalVariableConsumesRemainder(t *testing.T) {
	matcher := NewMatcher(Config{})
	pattern := model.InferredPattern{
		Segments: []model.PatternSegment{
			model.FixedText("Enviaste ", true),
			model.Variable(model.FieldAmount),
		},
	}

	got := matcher.Match(pattern, "Enviaste $50.000")
	if got == nil {
		t.Fatal("Match() = nil, want a match")
	}
	if got.Fields[model.FieldAmount] != "$50.000" {
		t.Errorf("amount = %q, want %q", got.Fields[model.FieldAmount], "$50.000")
	}
}

func TestMatcherCardFieldValidation(t *testing.T) {
	matcher := NewMatcher(Config{})
	pattern := model.InferredPattern{
		Segments: []model.PatternSegment{
			model.FixedText("con tarjeta *", true),
			model.Variable(model.FieldCardLast4),
		},
	}

	if got := matcher.Match(pattern, "con tarjeta *9876"); got == nil {
		t.Error("four digit suffix should match")
	} else if got.Fields[model.FieldCardLast4] != "9876" {
		t.Errorf("card = %q, want 9876", got.Fields[model.FieldCardLast4])
	}

	if got := matcher.Match(pattern, "con tarjeta *98"); got != nil {
		t.Errorf("two digit suffix should not match, got %+v", got)
	}
}

func TestExtractTransaction(t *testing.T) {
	matcher := NewMatcher(Config{})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pattern := model.LearnedBankPattern{
		ID:        "p1",
		BankName:  "Lulo",
		SenderIDs: []string{"lulo", "891234"},
		Enabled:   true,
		Pattern: model.InferredPattern{
			Segments: []model.PatternSegment{
				model.Variable(model.FieldTransactionType),
				model.FixedText(" por $", true),
				model.Variable(model.FieldAmount),
				model.FixedText(" en ", true),
				model.Variable(model.FieldMerchant),
			},
		},
	}

	tests := []struct {
		name       string
		body       string
		wantType   model.TransactionType
		wantAmount float64
		wantNil    bool
	}{
		{
			name:       "purchase",
			body:       "Compra por $78.000 en PANADERIA LA 70",
			wantType:   model.TypeDebit,
			wantAmount: 78000,
		},
		{
			name:       "transfer phrasing wins over spending words",
			body:       "Transferencia pagada por $30.000 en canal web",
			wantType:   model.TypeTransfer,
			wantAmount: 30000,
		},
		{
			name:    "no match returns nil",
			body:    "Tu clave es 123456",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, confidence := matcher.ExtractTransaction(pattern, tt.body, now)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ExtractTransaction() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ExtractTransaction() = nil, want a transaction")
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.BankName != "Lulo" {
				t.Errorf("BankName = %q, want Lulo", got.BankName)
			}
			if confidence <= 0 {
				t.Errorf("confidence = %v, want > 0", confidence)
			}
		})
	}
}

func TestExtractTransactionDisabledPattern(t *testing.T) {
	matcher := NewMatcher(Config{})
	pattern := model.LearnedBankPattern{
		ID:      "p1",
		Enabled: false,
		Pattern: model.InferredPattern{
			Segments: []model.PatternSegment{
				model.FixedText("Compra por $", true),
				model.Variable(model.FieldAmount),
			},
		},
	}

	got, _ := matcher.ExtractTransaction(pattern, "Compra por $10.000", time.Now())
	if got != nil {
		t.Errorf("disabled pattern extracted %+v, want nil", got)
	}
}

func TestMatchesSender(t *testing.T) {
	pattern := model.LearnedBankPattern{SenderIDs: []string{"lulo", "891234"}}

	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{name: "short code", sender: "891234", want: true},
		{name: "name with suffix", sender: "Lulo Bank", want: true},
		{name: "unknown", sender: "300123", want: false},
		{name: "empty", sender: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesSender(pattern, tt.sender); got != tt.want {
				t.Errorf("MatchesSender(%q) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}
