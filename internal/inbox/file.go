// Package inbox provides InboxReader implementations. The real message
// inbox lives on the host platform; for CLI use a JSON-lines export file
// stands in for it.
package inbox

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/juanfec/moneytap/internal/service"
)

// fileMessage is one line of the export file.
type fileMessage struct {
	ID              string `json:"id"`
	Sender          string `json:"sender"`
	Body            string `json:"body"`
	TimestampMillis int64  `json:"timestampMillis"`
	Read            bool   `json:"read"`
}

// FileReader reads messages from a JSON-lines export file.
type FileReader struct {
	path string
}

var _ service.InboxReader = (*FileReader)(nil)

// NewFileReader creates a reader over the given export file.
func NewFileReader(path string) *FileReader {
	return &FileReader{path: path}
}

// Messages implements service.InboxReader. Blank lines are skipped; a
// malformed line fails the whole read so a truncated export is noticed.
func (r *FileReader) Messages(ctx context.Context) ([]service.InboxMessage, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inbox file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []service.InboxMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var msg fileMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		id := msg.ID
		if id == "" {
			id = strconv.Itoa(line)
		}
		out = append(out, service.InboxMessage{
			ID:        id,
			Sender:    msg.Sender,
			Body:      msg.Body,
			Timestamp: time.UnixMilli(msg.TimestampMillis),
			Read:      msg.Read,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inbox file: %w", err)
	}
	return out, nil
}
