// Package domain errors.go contains sentinel errors
package domain

import "errors"

// Sentinel domain-level errors reused by higher layers.
var (
	// ErrNotFound indicates the addressed birthday record does not exist.
	ErrNotFound = errors.New("birthday not found")
	// ErrDecrypt indicates a stored field failed authentication or was
	// produced under a different key. Reads abort on the first occurrence.
	ErrDecrypt = errors.New("field decryption failed")
	// ErrValidation indicates structurally invalid input (bad date, bad name).
	ErrValidation = errors.New("invalid input")
	// ErrStorage indicates an I/O failure against the backing database.
	ErrStorage = errors.New("storage failure")
)
