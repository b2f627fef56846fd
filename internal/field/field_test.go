package field

import (
	"testing"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

func TestEmailValidation(t *testing.T) {
	cases := []struct {
		raw   string
		valid bool
	}{
		{"a@b.com", true},
		{"first.last@example.co.uk", true},
		{"", false},
		{"no-at-sign", false},
		{"a@b", false},
		{"a b@c.com", false},
	}
	for _, tc := range cases {
		if got := NewEmail(tc.raw).Valid(); got != tc.valid {
			t.Errorf("Email(%q).Valid() = %v, want %v", tc.raw, got, tc.valid)
		}
	}
}

func TestEmailValidate_RequiredVsInvalid(t *testing.T) {
	if err := NewEmail("").Validate(); errors.UserMessage(err) != "Email is required." {
		t.Errorf("blank email: %v", err)
	}
	if err := NewEmail("nope").Validate(); !errors.Is(err, errors.KindValidation) {
		t.Errorf("invalid email should be a validation error, got %v", err)
	}
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		raw   string
		valid bool
	}{
		{"Secret123!", true},
		{"abcdefg1", true},
		{"short1", false},       // too short
		{"nodigitshere", false}, // no digit
		{"12345678", false},     // no letter
		{"", false},
	}
	for _, tc := range cases {
		if got := NewPassword(tc.raw).Valid(); got != tc.valid {
			t.Errorf("Password(%q).Valid() = %v, want %v", tc.raw, got, tc.valid)
		}
	}
}

func TestPasswordConfirmation_MismatchIsDistinct(t *testing.T) {
	err := NewPassword("Secret123!").ValidateConfirmation("Secret123?")
	if errors.UserMessage(err) != "Passwords do not match." {
		t.Errorf("expected mismatch error, got %v", err)
	}

	// A weak password fails the policy check before the match check.
	err = NewPassword("weak").ValidateConfirmation("weak")
	if errors.UserMessage(err) == "Passwords do not match." {
		t.Error("weak password should fail policy, not match")
	}

	if err := NewPassword("Secret123!").ValidateConfirmation("Secret123!"); err != nil {
		t.Errorf("matching valid password should pass, got %v", err)
	}
}

func TestHostValidation_SpaceVsRequired(t *testing.T) {
	if err := NewHost("").Validate(); errors.UserMessage(err) != "Host is required." {
		t.Errorf("blank host: %v", err)
	}
	err := NewHost("10 0 0 1").Validate()
	if errors.UserMessage(err) != "Host must not contain spaces." {
		t.Errorf("host with spaces: %v", err)
	}
	if err := NewHost("10.0.0.1").Validate(); err != nil {
		t.Errorf("valid host rejected: %v", err)
	}
	if err := NewHost("billing.example.com").Validate(); err != nil {
		t.Errorf("valid hostname rejected: %v", err)
	}
}

func TestHostTrimsOuterWhitespaceOnly(t *testing.T) {
	// Leading/trailing whitespace is input noise; embedded spaces are not.
	if !NewHost("  10.0.0.1  ").Valid() {
		t.Error("outer whitespace should be trimmed")
	}
	if NewHost("10 0.0.1").Valid() {
		t.Error("embedded space should be rejected")
	}
}

func TestPortBoundaries(t *testing.T) {
	cases := []struct {
		raw   string
		valid bool
	}{
		{"1", true},
		{"65535", true},
		{"0", false},
		{"65536", false},
		{"-1", false},
		{"", false},
		{"http", false},
		{"8080", true},
	}
	for _, tc := range cases {
		if got := NewPort(tc.raw).Valid(); got != tc.valid {
			t.Errorf("Port(%q).Valid() = %v, want %v", tc.raw, got, tc.valid)
		}
	}
}

func TestPortNumber(t *testing.T) {
	if n := NewPort("8443").Number(); n != 8443 {
		t.Errorf("expected 8443, got %d", n)
	}
	if n := NewPort("65536").Number(); n != 0 {
		t.Errorf("out-of-range port should report 0, got %d", n)
	}
}

func TestCompanyNameSearchable(t *testing.T) {
	if NewCompanyName("Ac").Searchable() {
		t.Error("two characters should not trigger a lookup")
	}
	if !NewCompanyName("Acm").Searchable() {
		t.Error("three characters should trigger a lookup")
	}
	// Rune count, not byte count.
	if !NewCompanyName("äöü").Searchable() {
		t.Error("three runes should trigger a lookup")
	}
}

func TestVatNumber(t *testing.T) {
	if !NewVatNumber("NL123456789B01").Valid() {
		t.Error("valid VAT number rejected")
	}
	if !NewVatNumber("de129273398").Valid() {
		t.Error("lowercase input should be normalized and accepted")
	}
	if NewVatNumber("12345").Valid() {
		t.Error("VAT without country code accepted")
	}
}
