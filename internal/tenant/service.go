// Package tenant manages workspaces: listing, selection, and the creation
// flow fed by the workspace wizard.
package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Service orchestrates workspace operations.
type Service struct {
	client *api.Client
	cfg    *config.Config
}

// NewService creates a tenant service bound to the given client and
// local config.
func NewService(client *api.Client, cfg *config.Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// List returns the workspaces the user belongs to.
func (s *Service) List(ctx context.Context) ([]api.Tenant, error) {
	return s.client.Tenants(ctx)
}

// Activate records the selected workspace locally.
func (s *Service) Activate(t api.Tenant) {
	s.cfg.SetActiveTenantID(t.ID)
	if err := s.cfg.Save(); err != nil {
		logger.Warn("tenant: could not persist active workspace: %v", err)
	}
}

// ActiveID returns the locally selected workspace ID, or "".
func (s *Service) ActiveID() string {
	return s.cfg.GetActiveTenantID()
}

// Create creates a workspace and activates it. The idempotency key is
// generated here so a user-initiated retry of the exact same request is
// deduplicated server-side.
func (s *Service) Create(ctx context.Context, req api.CreateTenantRequest) (api.Tenant, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	t, err := s.client.CreateTenant(ctx, req)
	if err != nil {
		if errors.Is(err, errors.KindConflict) {
			return api.Tenant{}, err
		}
		return api.Tenant{}, errors.TenantCreateFailed(req.Name, err)
	}
	logger.Component("tenant").Info("workspace created", "id", t.ID, "type", t.Type)
	s.Activate(t)
	return t, nil
}
