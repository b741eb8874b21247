package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeInboxFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inbox.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write inbox file: %v", err)
	}
	return path
}

func TestFileReaderMessages(t *testing.T) {
	content := `{"id":"m-1","sender":"85540","body":"Compra por $150.000 en EXITO","timestampMillis":1741943400000,"read":true}

{"sender":"87725","body":"Retiraste $80.000. Saldo: $120.000","timestampMillis":1741943460000}
`
	reader := NewFileReader(writeInboxFile(t, content))
	messages, err := reader.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	first := messages[0]
	if first.ID != "m-1" {
		t.Errorf("ID = %q, want m-1", first.ID)
	}
	if first.Sender != "85540" {
		t.Errorf("Sender = %q, want 85540", first.Sender)
	}
	if first.Body != "Compra por $150.000 en EXITO" {
		t.Errorf("Body = %q", first.Body)
	}
	if !first.Read {
		t.Error("Read = false, want true")
	}
	want := time.UnixMilli(1741943400000)
	if !first.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, want)
	}

	// The blank line is skipped, so the second message sits on line 3 and
	// picks up that line number as its id.
	second := messages[1]
	if second.ID != "3" {
		t.Errorf("ID = %q, want 3", second.ID)
	}
	if second.Read {
		t.Error("Read = true, want false")
	}
}

func TestFileReaderMalformedLineFailsRead(t *testing.T) {
	content := `{"id":"m-1","sender":"85540","body":"ok","timestampMillis":1}
{"id":"m-2","sender":
`
	reader := NewFileReader(writeInboxFile(t, content))
	if _, err := reader.Messages(context.Background()); err == nil {
		t.Fatal("Messages succeeded on a malformed line, want error")
	}
}

func TestFileReaderMissingFile(t *testing.T) {
	reader := NewFileReader(filepath.Join(t.TempDir(), "missing.jsonl"))
	if _, err := reader.Messages(context.Background()); err == nil {
		t.Fatal("Messages succeeded on a missing file, want error")
	}
}

func TestFileReaderEmptyFile(t *testing.T) {
	reader := NewFileReader(writeInboxFile(t, ""))
	messages, err := reader.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
}

func TestFileReaderContextCancellation(t *testing.T) {
	content := `{"id":"m-1","sender":"85540","body":"ok","timestampMillis":1}
`
	reader := NewFileReader(writeInboxFile(t, content))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.Messages(ctx); err == nil {
		t.Fatal("Messages succeeded with a cancelled context, want error")
	}
}
