// Package trieerrors defines the error taxonomy shared by every layer of the
// trie (alphamap, tail, doublearray, trie, format, dbsync).
package trieerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the class of error a trie operation failed with.
type Kind string

const (
	// UnmappedCharacter is returned when a key contains a code point outside
	// the frozen alphabet.
	UnmappedCharacter Kind = "UnmappedCharacter"
	// KeyNotFound is returned by lookups and deletes of an absent key.
	KeyNotFound Kind = "KeyNotFound"
	// EmptyKeyDisallowed is returned only by call sites that opt into
	// rejecting the empty-string key.
	EmptyKeyDisallowed Kind = "EmptyKeyDisallowed"
	// FormatError is returned when a saved image fails a magic or structural
	// sanity check on load.
	FormatError Kind = "FormatError"
	// IoError wraps an underlying stream failure during save/load.
	IoError Kind = "IoError"
	// AlphabetFrozen is returned when a range is added to an alphabet that
	// has already been used to build a trie.
	AlphabetFrozen Kind = "AlphabetFrozen"
	// ConcurrentMutation is the kind for a walker observing a structural
	// change made by a concurrent writer. No operation in this module
	// checks for such a change, so none returns it.
	ConcurrentMutation Kind = "ConcurrentMutation"
)

// TrieError is the error type returned by every exported operation in this
// module. It carries enough context to reproduce the failure without
// re-walking the structure.
type TrieError struct {
	Kind  Kind
	Key   string
	Code  rune
	cause error
}

func (e *TrieError) Error() string {
	switch e.Kind {
	case UnmappedCharacter:
		return fmt.Sprintf("%s: code point %U not in alphabet", e.Kind, e.Code)
	case KeyNotFound:
		return fmt.Sprintf("%s: %q", e.Kind, e.Key)
	case FormatError, IoError:
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.cause)
		}
		return string(e.Kind)
	default:
		if e.Key != "" {
			return fmt.Sprintf("%s: %q", e.Kind, e.Key)
		}
		return string(e.Kind)
	}
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *TrieError) Unwrap() error { return e.cause }

// New builds a TrieError with no wrapped cause.
func New(kind Kind, key string) *TrieError {
	return &TrieError{Kind: kind, Key: key}
}

// NewUnmapped builds an UnmappedCharacter error for the given code point.
func NewUnmapped(cp rune) *TrieError {
	return &TrieError{Kind: UnmappedCharacter, Code: cp}
}

// Wrap attaches cause to a new TrieError of the given kind, using
// github.com/pkg/errors so callers can still recover the original stack via
// errors.Cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *TrieError {
	return &TrieError{
		Kind:  kind,
		Key:   fmt.Sprintf(format, args...),
		cause: errors.Wrap(cause, string(kind)),
	}
}

// Is reports whether err is a TrieError of the given kind, unwrapping
// pkg/errors-wrapped causes along the way.
func Is(err error, kind Kind) bool {
	var te *TrieError
	for err != nil {
		if e, ok := err.(*TrieError); ok {
			te = e
			break
		}
		err = errors.Unwrap(err)
	}
	return te != nil && te.Kind == kind
}
