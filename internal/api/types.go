package api

import (
	"encoding/json"
	"time"
)

// ServerInfo describes a Ledgerdesk server, returned by the handshake
// endpoint before any authentication happens.
type ServerInfo struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	Edition          string `json:"edition"` // "cloud" or "self-hosted"
	MinClientVersion string `json:"min_client_version,omitempty"`
}

// User is the authenticated account.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Language      string `json:"language,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// AuthSession is returned by login and register.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate changes mutable account fields.
type ProfileUpdate struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language,omitempty"`
}

// Session is one device session holding a valid token.
type Session struct {
	ID         string    `json:"id"`
	Device     string    `json:"device"`
	LastActive time.Time `json:"last_active"`
	Current    bool      `json:"current"`
}

// Address is a postal address attached to a workspace.
type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// CompanyMatch is one hit from the external company registry.
type CompanyMatch struct {
	RegistryID string  `json:"registry_id"`
	Name       string  `json:"name"`
	VatNumber  string  `json:"vat_number"`
	Address    Address `json:"address"`
}

// Workspace entity types.
const (
	EntityFreelancer = "freelancer"
	EntityCompany    = "company"
)

// CreateTenantRequest creates a new workspace. IdempotencyKey lets the
// server dedupe a retried create.
type CreateTenantRequest struct {
	IdempotencyKey string  `json:"idempotency_key"`
	Type           string  `json:"type"` // EntityFreelancer or EntityCompany
	Name           string  `json:"name"`
	RegistryID     string  `json:"registry_id,omitempty"`
	VatNumber      string  `json:"vat_number,omitempty"`
	Address        Address `json:"address,omitempty"`
}

// Tenant is a workspace the user belongs to.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Role string `json:"role,omitempty"`
}

// Document review statuses.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// Document is an incoming invoice or receipt awaiting review.
type Document struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	Kind         string          `json:"kind"` // "invoice" or "receipt"
	Counterparty string          `json:"counterparty"`
	AmountCents  int64           `json:"amount_cents"`
	Currency     string          `json:"currency"`
	IssuedAt     time.Time       `json:"issued_at"`
	Status       string          `json:"status"`
	Raw          json.RawMessage `json:"raw,omitempty"` // source payload as received
}

// Decision verdicts.
const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
)

// Decision records a review verdict for one document.
type Decision struct {
	DocumentID     string `json:"document_id"`
	Verdict        string `json:"verdict"`
	Note           string `json:"note,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Event types pushed on the server event stream.
const (
	EventProfileUpdated  = "profile.updated"
	EventSessionRevoked  = "session.revoked"
	EventDocumentQueued  = "document.queued"
	EventDocumentDecided = "document.decided"
)

// Event is one message from the server event stream.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
