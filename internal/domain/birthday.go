package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ISODate is the wire and storage format for birthdates.
const ISODate = "2006-01-02"

// MaxNameLen bounds the plaintext length of a stored name.
const MaxNameLen = 30

// Birthday is a decrypted record from the store. Birthdate keeps the full
// date including the year the person was born; ranking only uses month+day.
type Birthday struct {
	ID        int64
	Name      string
	Birthdate time.Time
}

// ValidateName rejects empty names and names of MaxNameLen runes or more.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(name) >= MaxNameLen {
		return fmt.Errorf("%w: name must be less than %d characters", ErrValidation, MaxNameLen)
	}
	return nil
}

// ParseISODate parses a YYYY-MM-DD date, returning ErrValidation on failure.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birthdate %q is not a YYYY-MM-DD date", ErrValidation, s)
	}
	return t, nil
}
