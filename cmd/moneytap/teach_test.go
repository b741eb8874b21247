package main

import (
	"context"
	"strings"
	"testing"

	"github.com/juanfec/moneytap/internal/cli"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/testutil"
)

func TestRunTeachSessionSavesPattern(t *testing.T) {
	store := testutil.SetupTestDB(t)

	// One answer per prompt: sender, body, amount text, merchant text,
	// optional fields terminator, add-another, then the same for the
	// second example, then approval and default category.
	script := strings.Join([]string{
		"891234",
		"Compra por $45.000 en TIENDA D1.",
		"45.000",
		"TIENDA D1",
		"",
		"y",
		"891234",
		"Compra por $1.250.000 en EXITO POBLADO.",
		"1.250.000",
		"EXITO POBLADO",
		"",
		"n",
		"y",
		"groceries",
	}, "\n") + "\n"

	reader := cli.NewReader(strings.NewReader(script))
	if err := runTeachSession(context.Background(), reader, store, "Lulo"); err != nil {
		t.Fatalf("runTeachSession failed: %v", err)
	}

	patterns, err := store.GetLearnedPatterns(context.Background())
	if err != nil {
		t.Fatalf("GetLearnedPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}

	p := patterns[0]
	if p.BankName != "Lulo" {
		t.Errorf("BankName = %q, want Lulo", p.BankName)
	}
	if len(p.SenderIDs) == 0 || p.SenderIDs[0] != "891234" {
		t.Errorf("SenderIDs = %v, want [891234]", p.SenderIDs)
	}
	if p.DefaultCategory != model.CategoryGroceries {
		t.Errorf("DefaultCategory = %s, want %s", p.DefaultCategory, model.CategoryGroceries)
	}
	if !p.Enabled {
		t.Error("Enabled = false, want true")
	}
	if len(p.Examples) != 2 {
		t.Errorf("got %d examples, want 2", len(p.Examples))
	}
}

func TestRunTeachSessionDiscard(t *testing.T) {
	store := testutil.SetupTestDB(t)

	script := strings.Join([]string{
		"891234",
		"Compra por $45.000 en TIENDA D1.",
		"45.000",
		"TIENDA D1",
		"",
		"y",
		"891234",
		"Compra por $1.250.000 en EXITO POBLADO.",
		"1.250.000",
		"EXITO POBLADO",
		"",
		"n",
		"n",
	}, "\n") + "\n"

	reader := cli.NewReader(strings.NewReader(script))
	if err := runTeachSession(context.Background(), reader, store, "Lulo"); err != nil {
		t.Fatalf("runTeachSession failed: %v", err)
	}

	patterns, err := store.GetLearnedPatterns(context.Background())
	if err != nil {
		t.Fatalf("GetLearnedPatterns failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("got %d patterns after discard, want 0", len(patterns))
	}
}
