// Package field provides small value objects for form fields. Each wraps a
// raw string with a validity predicate; values are immutable and rebuilt on
// every keystroke, so validation is always against the current text.
package field

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email is an email address field value.
type Email struct {
	Raw string
}

func NewEmail(raw string) Email {
	return Email{Raw: strings.TrimSpace(raw)}
}

func (e Email) Valid() bool {
	return emailPattern.MatchString(e.Raw)
}

func (e Email) Validate() error {
	if e.Raw == "" {
		return errors.FieldRequired("Email")
	}
	if !e.Valid() {
		return errors.FieldInvalid("Email", "is not a valid address.")
	}
	return nil
}

// Password is a password field value. The policy requires at least
// MinPasswordLength characters with at least one letter and one digit.
type Password struct {
	Raw string
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

func NewPassword(raw string) Password {
	return Password{Raw: raw}
}

func (p Password) Valid() bool {
	if len(p.Raw) < MinPasswordLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range p.Raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func (p Password) Validate() error {
	if p.Raw == "" {
		return errors.FieldRequired("Password")
	}
	if !p.Valid() {
		return errors.FieldInvalid("Password", "must be at least 8 characters with a letter and a digit.")
	}
	return nil
}

// ValidateConfirmation checks the policy and that the confirmation matches
// exactly. A mismatch is a distinct error from a weak password.
func (p Password) ValidateConfirmation(confirmation string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Raw != confirmation {
		return errors.PasswordsDoNotMatch()
	}
	return nil
}

// Name is a person or workspace display name.
type Name struct {
	Raw string
}

func NewName(raw string) Name {
	return Name{Raw: strings.TrimSpace(raw)}
}

func (n Name) Valid() bool {
	return n.Raw != ""
}

func (n Name) Validate() error {
	if !n.Valid() {
		return errors.FieldRequired("Name")
	}
	return nil
}

// Host is a server host field value. Blank and embedded spaces are
// rejected with distinct errors.
type Host struct {
	Raw string
}

func NewHost(raw string) Host {
	return Host{Raw: strings.TrimSpace(raw)}
}

func (h Host) Valid() bool {
	return h.Raw != "" && !strings.ContainsAny(h.Raw, " \t")
}

func (h Host) Validate() error {
	if h.Raw == "" {
		return errors.FieldRequired("Host")
	}
	if strings.ContainsAny(h.Raw, " \t") {
		return errors.FieldInvalid("Host", "must not contain spaces.")
	}
	return nil
}

// Port is a TCP port field value. Valid ports parse as integers in 1-65535.
type Port struct {
	Raw string
}

func NewPort(raw string) Port {
	return Port{Raw: strings.TrimSpace(raw)}
}

// Number returns the parsed port, or 0 if the value is invalid.
func (p Port) Number() int {
	n, err := strconv.Atoi(p.Raw)
	if err != nil || n < 1 || n > 65535 {
		return 0
	}
	return n
}

func (p Port) Valid() bool {
	return p.Number() != 0
}

func (p Port) Validate() error {
	if p.Raw == "" {
		return errors.FieldRequired("Port")
	}
	if _, err := strconv.Atoi(p.Raw); err != nil {
		return errors.FieldInvalid("Port", "must be a number.")
	}
	if !p.Valid() {
		return errors.FieldInvalid("Port", "must be between 1 and 65535.")
	}
	return nil
}

// CompanyName is a company name field value used by the registry lookup.
type CompanyName struct {
	Raw string
}

// MinLookupLength is the minimum length before a registry search fires.
const MinLookupLength = 3

func NewCompanyName(raw string) CompanyName {
	return CompanyName{Raw: strings.TrimSpace(raw)}
}

func (c CompanyName) Valid() bool {
	return c.Raw != ""
}

// Searchable reports whether the name is long enough to trigger a
// remote registry lookup.
func (c CompanyName) Searchable() bool {
	return len([]rune(c.Raw)) >= MinLookupLength
}

func (c CompanyName) Validate() error {
	if !c.Valid() {
		return errors.FieldRequired("Company name")
	}
	return nil
}

// VatNumber is a VAT registration number field value.
type VatNumber struct {
	Raw string
}

var vatPattern = regexp.MustCompile(`^[A-Z]{2}[A-Za-z0-9]{2,12}$`)

func NewVatNumber(raw string) VatNumber {
	return VatNumber{Raw: strings.ToUpper(strings.TrimSpace(raw))}
}

func (v VatNumber) Valid() bool {
	return vatPattern.MatchString(v.Raw)
}

func (v VatNumber) Validate() error {
	if v.Raw == "" {
		return errors.FieldRequired("VAT number")
	}
	if !v.Valid() {
		return errors.FieldInvalid("VAT number", "must start with a two-letter country code.")
	}
	return nil
}
