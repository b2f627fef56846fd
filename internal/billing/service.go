// Package billing handles the document review queue: incoming invoices
// and receipts awaiting an approve/reject verdict.
package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Service orchestrates document review for one active workspace.
type Service struct {
	client   *api.Client
	tenantID func() string
}

// NewService creates a billing service. tenantID is read per call so the
// service follows workspace switches without rewiring.
func NewService(client *api.Client, tenantID func() string) *Service {
	return &Service{client: client, tenantID: tenantID}
}

// Pending lists documents awaiting review.
func (s *Service) Pending(ctx context.Context) ([]api.Document, error) {
	return s.client.Documents(ctx, s.tenantID(), api.DocumentPending)
}

// Decide records a verdict for one document. Each decision carries a fresh
// idempotency key; replaying the same Decision value (user-initiated retry)
// keeps the key, so the server sees one decision.
func (s *Service) Decide(ctx context.Context, d api.Decision) error {
	if d.IdempotencyKey == "" {
		d.IdempotencyKey = uuid.NewString()
	}
	if err := s.client.DecideDocument(ctx, s.tenantID(), d); err != nil {
		return err
	}
	logger.Component("billing").Info("document decided", "document", d.DocumentID, "verdict", d.Verdict)
	return nil
}

// NewDecision builds a Decision with its idempotency key fixed up front,
// so a retry after failure replays the identical request.
func NewDecision(documentID, verdict, note string) api.Decision {
	return api.Decision{
		DocumentID:     documentID,
		Verdict:        verdict,
		Note:           note,
		IdempotencyKey: uuid.NewString(),
	}
}
