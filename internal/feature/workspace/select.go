package workspace

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// SelectState is the sealed state set for the workspace-selection screen.
type SelectState interface{ selectState() }

type (
	// SelectLoading fetches the workspace list.
	SelectLoading struct{}
	// SelectReady shows the available workspaces.
	SelectReady struct{ Tenants []api.Tenant }
	// SelectErrored is a failed list fetch.
	SelectErrored struct {
		Cause error
		Retry store.Intent
	}
)

func (SelectLoading) selectState() {}
func (SelectReady) selectState()  {}
func (SelectErrored) selectState() {}

// Selection intents.
type (
	// Refresh reloads the workspace list.
	Refresh struct{}
	// Choose activates one workspace.
	Choose struct{ Tenant api.Tenant }
	// RetrySelect replays the failed list fetch.
	RetrySelect struct{}

	loadTenants struct{}
)

// Selection actions.
type (
	// Activated is emitted once a workspace is the active one.
	Activated struct{ Tenant api.Tenant }
	// NoneAvailable is emitted when the account has no workspaces yet;
	// the app opens the creation wizard.
	NoneAvailable struct{}
)

// TenantLister lists and activates workspaces.
type TenantLister interface {
	List(ctx context.Context) ([]api.Tenant, error)
	Activate(t api.Tenant)
}

// SelectContainer is the workspace-selection screen container.
type SelectContainer struct {
	*store.Store[SelectState]
	tenants TenantLister
}

// NewSelectContainer creates and starts the container; the list fetch
// begins immediately.
func NewSelectContainer(tl TenantLister) *SelectContainer {
	c := &SelectContainer{
		Store:   store.New[SelectState]("workspace-select", SelectLoading{}),
		tenants: tl,
	}
	c.Run(c.reduce)
	c.Dispatch(loadTenants{})
	return c
}

func (c *SelectContainer) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case loadTenants, Refresh:
		c.UpdateState(func(SelectState) SelectState { return SelectLoading{} })
		c.load(ctx)
	case Choose:
		store.With(c.Store, func(s SelectReady) {
			c.tenants.Activate(i.Tenant)
			c.Emit(Activated{Tenant: i.Tenant})
		})
	case RetrySelect:
		store.With(c.Store, func(s SelectErrored) {
			c.UpdateState(func(SelectState) SelectState { return SelectLoading{} })
			c.Dispatch(s.Retry)
		})
	}
}

func (c *SelectContainer) load(ctx context.Context) {
	tenants, err := c.tenants.List(ctx)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(SelectState) SelectState {
			return SelectErrored{Cause: err, Retry: loadTenants{}}
		})
		return
	}
	if len(tenants) == 0 {
		c.Emit(NoneAvailable{})
	}
	c.UpdateState(func(SelectState) SelectState {
		return SelectReady{Tenants: tenants}
	})
}
