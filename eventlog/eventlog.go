// Package eventlog reads and writes transition event logs in two
// interchangeable formats: line-delimited JSON for hand-editable logs
// and length-prefixed msgpack frames for compact captures. ReadFile
// and WriteFile dispatch on the path extension.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/justapithecus/faultline/iox"
	"github.com/justapithecus/faultline/types"
)

// maxLineSize bounds a single JSONL line (1 MiB). Events with large
// metadata payloads fit comfortably; anything bigger is malformed.
const maxLineSize = 1 << 20

// ExtJSONL is the extension for line-delimited JSON logs.
const ExtJSONL = ".jsonl"

// Framed-capture extensions.
const (
	ExtBinary = ".bin"
	ExtTFM    = ".tfm"
)

// WriteJSONL writes events as line-delimited JSON, one event per line.
func WriteJSONL(w io.Writer, events []types.TransitionEvent) error {
	for i, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %d: %w", i, err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write event %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONL reads line-delimited JSON events. Blank lines are
// tolerated; a malformed line is reported by number.
func ReadJSONL(r io.Reader) ([]types.TransitionEvent, error) {
	var events []types.TransitionEvent

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var ev types.TransitionEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode event: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}

// ReadFile reads an event log, choosing the codec by extension:
// .jsonl for line-delimited JSON, .bin or .tfm for framed msgpack.
func ReadFile(path string) ([]types.TransitionEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	defer iox.DiscardClose(f)

	switch ext := filepath.Ext(path); ext {
	case ExtJSONL:
		return ReadJSONL(f)
	case ExtBinary, ExtTFM:
		return ReadFrames(f)
	default:
		return nil, fmt.Errorf("unsupported event log extension %q (want %s, %s, or %s)", ext, ExtJSONL, ExtBinary, ExtTFM)
	}
}

// WriteFile writes an event log, choosing the codec by extension the
// same way ReadFile does.
func WriteFile(path string, events []types.TransitionEvent) error {
	ext := filepath.Ext(path)
	switch ext {
	case ExtJSONL, ExtBinary, ExtTFM:
	default:
		return fmt.Errorf("unsupported event log extension %q (want %s, %s, or %s)", ext, ExtJSONL, ExtBinary, ExtTFM)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create event log %s: %w", path, err)
	}

	var writeErr error
	if ext == ExtJSONL {
		writeErr = WriteJSONL(f, events)
	} else {
		writeErr = WriteFrames(f, events)
	}
	if writeErr != nil {
		iox.DiscardClose(f)
		return writeErr
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close event log %s: %w", path, err)
	}
	return nil
}
