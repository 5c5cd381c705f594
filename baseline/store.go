// Package baseline persists failure-rate snapshots so later analyses can
// be compared against a known-good run.
//
// A baseline is the rates output of a report, stored verbatim as JSON and
// reloaded for report.CompareToBaseline. Stores address baselines by key;
// keys are plain names without path separators.
package baseline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/justapithecus/faultline/report"
)

// Sentinel errors for store failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates no baseline exists under the requested key.
	ErrNotFound = errors.New("baseline not found")

	// ErrInvalidKey indicates a key that cannot name a stored baseline.
	ErrInvalidKey = errors.New("invalid baseline key")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = errors.New("authentication failed")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")

	// errStorage classifies failures no other sentinel covers.
	errStorage = errors.New("storage error")
)

// Store persists and retrieves baseline rate snapshots.
type Store interface {
	// Save persists rates under key, replacing any existing baseline.
	Save(ctx context.Context, key string, rates report.RatesMap) error

	// Load retrieves the baseline stored under key.
	// Returns an error matching ErrNotFound when the key does not exist.
	Load(ctx context.Context, key string) (report.RatesMap, error)

	// List returns the stored baseline keys in lexical order.
	List(ctx context.Context) ([]string, error)
}

// StorageError wraps an underlying store error with classification.
// It preserves the original error in the chain for inspection via errors.As.
type StorageError struct {
	// Kind is the sentinel error for classification (e.g. ErrNotFound).
	Kind error
	// Op is the operation that failed ("save", "load", "list").
	Op string
	// Path is the file path or object key involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// wrapErr classifies err and wraps it with operation context.
// Returns nil if err is nil.
func wrapErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: classify(err), Op: op, Path: path, Err: err}
}

// classify determines the sentinel for err, by type where possible and by
// message patterns otherwise.
func classify(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "no such file", "does not exist", "not found", "nosuchkey", "404"):
		return ErrNotFound
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout
	case containsAny(msg, "nocredentialproviders", "credentials", "expiredtoken",
		"401", "unauthorized", "accessdenied", "forbidden", "403"):
		return ErrAuth
	case containsAny(msg, "connection refused", "no route to host", "network unreachable",
		"dial tcp", "i/o timeout"):
		return ErrNetwork
	default:
		return errStorage
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// validateKey rejects keys that would escape the store's namespace.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
