package banks

import (
	"testing"
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

var testTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestBancolombiaParse(t *testing.T) {
	tests := []struct {
		wantBalance  *float64
		name         string
		body         string
		wantCard     string
		wantMerchant string
		wantType     model.TransactionType
		wantAmount   float64
		wantNil      bool
	}{
		{
			name:         "card purchase with balance",
			body:         "Compra por $150.000 con TC *1234 en ALMACEN EXITO. Consulte saldo: $500.000",
			wantType:     model.TypeDebit,
			wantAmount:   150000,
			wantBalance:  floatPtr(500000),
			wantCard:     "1234",
			wantMerchant: "ALMACEN EXITO",
		},
		{
			name:         "outbound transfer beats purchase keywords",
			body:         "Transferiste $200.000 a JUAN PEREZ. Saldo disponible $1.300.000",
			wantType:     model.TypeTransfer,
			wantAmount:   200000,
			wantBalance:  floatPtr(1300000),
			wantMerchant: "JUAN PEREZ",
		},
		{
			name:         "incoming payroll credit",
			body:         "Recibiste $2.500.000 por nomina de ACME SAS",
			wantType:     model.TypeCredit,
			wantAmount:   2500000,
			wantMerchant: "ACME SAS",
		},
		{
			name:        "decimal amount ends at the sentence period",
			body:        "Pago de servicios por $45,50. Saldo: $120.000",
			wantType:    model.TypeDebit,
			wantAmount:  45.5,
			wantBalance: floatPtr(120000),
		},
		{
			name:    "no amount present",
			body:    "Compra rechazada en ALMACEN EXITO",
			wantNil: true,
		},
		{
			name:    "amount without a transaction keyword",
			body:    "Tu cupo disponible es $3.000.000",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bancolombia{}.Parse(tt.body, testTime)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Parse(%q) = %+v, want nil", tt.body, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want a transaction", tt.body)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if !equalBalance(got.Balance, tt.wantBalance) {
				t.Errorf("Balance = %v, want %v", deref(got.Balance), deref(tt.wantBalance))
			}
			if got.CardLast4 != tt.wantCard {
				t.Errorf("CardLast4 = %q, want %q", got.CardLast4, tt.wantCard)
			}
			if got.Merchant != tt.wantMerchant {
				t.Errorf("Merchant = %q, want %q", got.Merchant, tt.wantMerchant)
			}
			if got.BankName != "Bancolombia" {
				t.Errorf("BankName = %q, want Bancolombia", got.BankName)
			}
			if got.Currency != model.DefaultCurrency {
				t.Errorf("Currency = %q, want %q", got.Currency, model.DefaultCurrency)
			}
			if got.RawMessage != tt.body {
				t.Errorf("RawMessage not preserved")
			}
			if !got.Timestamp.Equal(testTime) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, testTime)
			}
		})
	}
}

func TestNequiParse(t *testing.T) {
	tests := []struct {
		wantBalance *float64
		name        string
		body        string
		wantDesc    string
		wantType    model.TransactionType
		wantAmount  float64
	}{
		{
			name:        "withdrawal with balance",
			body:        "Retiraste $80.000. Saldo: $120.000",
			wantType:    model.TypeWithdrawal,
			wantAmount:  80000,
			wantBalance: floatPtr(120000),
			wantDesc:    "Retiro Nequi",
		},
		{
			name:       "outgoing send",
			body:       "Enviaste $50.000 a Maria. Todo salio bien",
			wantType:   model.TypeTransfer,
			wantAmount: 50000,
		},
		{
			name:       "incoming money",
			body:       "Te llego plata: recibiste $30.000 de Pedro",
			wantType:   model.TypeCredit,
			wantAmount: 30000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nequi{}.Parse(tt.body, testTime)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want a transaction", tt.body)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if !equalBalance(got.Balance, tt.wantBalance) {
				t.Errorf("Balance = %v, want %v", deref(got.Balance), deref(tt.wantBalance))
			}
			if got.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestDetectTypeOrder(t *testing.T) {
	// "Transferiste" messages also contain no purchase words, but a body
	// carrying both must resolve to the more specific phrase.
	body := "Transferiste $10.000 para el pago de servicios"
	txType, ok := detectType(body, bancolombiaTypes)
	if !ok {
		t.Fatal("detectType found no type")
	}
	if txType != model.TypeTransfer {
		t.Errorf("detectType = %s, want %s", txType, model.TypeTransfer)
	}
}

func TestDetectTypeFoldsAccents(t *testing.T) {
	body := "Consignación por $1.000.000 recibida"
	txType, ok := detectType(body, bancolombiaTypes)
	if !ok {
		t.Fatal("detectType found no type")
	}
	if txType != model.TypeCredit {
		t.Errorf("detectType = %s, want %s", txType, model.TypeCredit)
	}
}

func TestMatchesSender(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{name: "exact short code", sender: "85540", want: true},
		{name: "name with prefix", sender: "Bancolombia Alertas", want: true},
		{name: "case insensitive", sender: "BANCOLOMBIA", want: true},
		{name: "unrelated sender", sender: "899000", want: false},
		{name: "empty sender", sender: "", want: false},
	}

	parser := Bancolombia{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parser.CanHandle(tt.sender); got != tt.want {
				t.Errorf("CanHandle(%q) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}

func TestRegistryDispatchOrder(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name     string
		sender   string
		wantBank string
	}{
		{name: "bancolombia short code", sender: "85540", wantBank: "Bancolombia"},
		{name: "nequi by name", sender: "Nequi", wantBank: "Nequi"},
		{name: "daviplata short code", sender: "85888", wantBank: "DaviPlata"},
		{name: "davivienda by name", sender: "Davivienda", wantBank: "Davivienda"},
		{name: "bbva short code", sender: "85330", wantBank: "BBVA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := registry.ParserFor(tt.sender)
			if p == nil {
				t.Fatalf("ParserFor(%q) = nil", tt.sender)
			}
			if p.BankName() != tt.wantBank {
				t.Errorf("ParserFor(%q) = %s, want %s", tt.sender, p.BankName(), tt.wantBank)
			}
		})
	}

	if p := registry.ParserFor("555123"); p != nil {
		t.Errorf("ParserFor(unknown) = %s, want nil", p.BankName())
	}
}

func TestGenericCanParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "expense keyword with amount",
			body: "Pago exitoso por $45.000 en tienda local",
			want: true,
		},
		{
			name: "income keyword with amount",
			body: "Abono recibido por valor de 320.000",
			want: true,
		},
		{
			name: "monthly summary is excluded despite keywords",
			body: "Tu resumen del mes: gastaste $1.200.000 en compras",
			want: false,
		},
		{
			name: "otp code is excluded",
			body: "Tu codigo de verificacion es 845123. No compartas este codigo",
			want: false,
		},
		{
			name: "promotion is excluded",
			body: "Promocion! Compra hoy con 20% de descuento, hasta $50.000",
			want: false,
		},
		{
			name: "keyword without amount",
			body: "Tu pago fue rechazado, intenta de nuevo",
			want: false,
		},
		{
			name: "amount without keyword",
			body: "Tu saldo es $1.000.000",
			want: false,
		},
	}

	g := Generic{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanParse(tt.body); got != tt.want {
				t.Errorf("CanParse(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestGenericParse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantType   model.TransactionType
		wantAmount float64
	}{
		{
			name:       "default expense is a debit",
			body:       "Pago exitoso por $45.000 en tienda local",
			wantType:   model.TypeDebit,
			wantAmount: 45000,
		},
		{
			name:       "income keyword wins",
			body:       "Consignacion por $320.000 a tu cuenta",
			wantType:   model.TypeCredit,
			wantAmount: 320000,
		},
		{
			name:       "withdrawal stem",
			body:       "Retiro por $100.000 en cajero",
			wantType:   model.TypeWithdrawal,
			wantAmount: 100000,
		},
		{
			name:       "transfer keyword",
			body:       "Transferencia realizada por $75.000, cargo aplicado",
			wantType:   model.TypeTransfer,
			wantAmount: 75000,
		},
		{
			name:       "cop notation",
			body:       "Compra aprobada COP 89.900",
			wantType:   model.TypeDebit,
			wantAmount: 89900,
		},
		{
			name:       "decimal amount at a sentence boundary",
			body:       "Pagaste $45,50. Saldo: $120.000",
			wantType:   model.TypeDebit,
			wantAmount: 45.5,
		},
		{
			name:       "grouped decimal amount at a sentence boundary",
			body:       "Compra por $1.234,56. Consulte saldo: $500.000",
			wantType:   model.TypeDebit,
			wantAmount: 1234.56,
		},
	}

	g := Generic{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Parse(tt.body, testTime)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want a transaction", tt.body)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.BankName != "Desconocido" {
				t.Errorf("BankName = %q, want Desconocido", got.BankName)
			}
		})
	}
}

func TestGenericCanHandleIsAlwaysFalse(t *testing.T) {
	g := Generic{}
	for _, sender := range []string{"", "85540", "cualquiera"} {
		if g.CanHandle(sender) {
			t.Errorf("CanHandle(%q) = true, want false", sender)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	body := "Compra por $150.000 con TC *1234 en ALMACEN EXITO. Consulte saldo: $500.000"
	first := Bancolombia{}.Parse(body, testTime)
	second := Bancolombia{}.Parse(body, testTime)
	if first == nil || second == nil {
		t.Fatal("expected both parses to succeed")
	}
	if *first.Balance != *second.Balance {
		t.Errorf("balances differ: %v vs %v", *first.Balance, *second.Balance)
	}
	first.Balance, second.Balance = nil, nil
	if *first != *second {
		t.Errorf("repeated parse differs: %+v vs %+v", *first, *second)
	}
}

func floatPtr(v float64) *float64 { return &v }

func equalBalance(got, want *float64) bool {
	if got == nil || want == nil {
		return got == want
	}
	return *got == *want
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
