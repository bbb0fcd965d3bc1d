// Package contact defines the contact record, its field validation, and the
// in-memory Book that persists every mutation through a Store.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultGroup is the group assigned when none is given.
const DefaultGroup = "Other"

// Phone numbers must carry between MinPhoneDigits and MaxPhoneDigits digits
// once punctuation and spaces are stripped.
const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// Sentinel errors returned by validation and Book operations.
var (
	ErrEmptyName    = errors.New("contact: name cannot be empty")
	ErrExists       = errors.New("contact: already exists")
	ErrNotFound     = errors.New("contact: not found")
	ErrInvalidPhone = errors.New("contact: invalid phone number")
	ErrInvalidEmail = errors.New("contact: invalid email")

	// ErrInvalidTimestamp is returned by UnmarshalJSON alongside a fully
	// decoded record whose unparseable timestamps were left zero.
	ErrInvalidTimestamp = errors.New("contact: invalid timestamp")
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+$`)
)

// Contact is a single address book entry. The name is the key in the Book
// and is not stored on the record itself.
type Contact struct {
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry pairs a contact with its name for ordered listings.
type Entry struct {
	Name string
	Contact
}

// ValidatePhone strips every non-digit from s and returns the digits when
// their count is within [MinPhoneDigits, MaxPhoneDigits].
func ValidatePhone(s string) (string, error) {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return "", fmt.Errorf("%w: %q has %d digits, want %d-%d",
			ErrInvalidPhone, s, len(digits), MinPhoneDigits, MaxPhoneDigits)
	}
	return digits, nil
}

// ValidateEmail accepts the empty string or an address shaped like
// local@domain.tld.
func ValidateEmail(s string) error {
	if s == "" {
		return nil
	}
	if !emailPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return nil
}

// naiveISO is the timestamp layout written by older data files, which carry
// no zone offset.
const naiveISO = "2006-01-02T15:04:05.999999"

// UnmarshalJSON decodes a contact, accepting a null email and timestamps with
// or without a zone offset. A timestamp that cannot be parsed is left zero and
// reported through an error wrapping ErrInvalidTimestamp; the rest of the
// record is still decoded into c.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw struct {
		Phone     string  `json:"phone"`
		Email     *string `json:"email"`
		Group     string  `json:"group"`
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var errs []error
	created, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: created_at %q", ErrInvalidTimestamp, raw.CreatedAt))
	}
	updated, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: updated_at %q", ErrInvalidTimestamp, raw.UpdatedAt))
	}

	*c = Contact{
		Phone:     raw.Phone,
		Group:     raw.Group,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if raw.Email != nil {
		c.Email = *raw.Email
	}
	return errors.Join(errs...)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveISO, s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
