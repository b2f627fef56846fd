// Package workspace holds the workspace screens: selecting an existing
// workspace and the multi-step creation wizard.
package workspace

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// Step is one page of the creation wizard.
type Step int

const (
	StepTypeSelection Step = iota
	StepCompanyName
	StepVatAndAddress
)

func (s Step) String() string {
	switch s {
	case StepTypeSelection:
		return "TypeSelection"
	case StepCompanyName:
		return "CompanyName"
	case StepVatAndAddress:
		return "VatAndAddress"
	default:
		return "Unknown"
	}
}

// StepsFor returns the ordered step list for an entity type. A freelancer
// workspace is named after the account, so the company steps are skipped
// entirely.
func StepsFor(entityType string) []Step {
	if entityType == api.EntityFreelancer {
		return []Step{StepTypeSelection}
	}
	return []Step{StepTypeSelection, StepCompanyName, StepVatAndAddress}
}

// LookupState is the nested state of the registry lookup inside the
// wizard's company-name step.
type LookupState interface{ lookupState() }

type (
	// LookupIdle means no lookup has run for the current name.
	LookupIdle struct{}
	// LookupRunning is an in-flight registry search.
	LookupRunning struct{ Query string }
	// LookupDone holds the matches of the last completed search.
	LookupDone struct {
		Query   string
		Matches []api.CompanyMatch
	}
	// LookupFailed is a failed search; the wizard stays on the name step.
	LookupFailed struct {
		Query string
		Cause error
	}
)

func (LookupIdle) lookupState()    {}
func (LookupRunning) lookupState() {}
func (LookupDone) lookupState()    {}
func (LookupFailed) lookupState()  {}

// Confirmation is the disambiguation sub-state shown when the registry
// returned matches: the user picks one or chooses to enter details
// manually.
type Confirmation struct {
	Matches []api.CompanyMatch
}

// State is the sealed state set for the creation wizard.
type State interface{ wizardState() }

// Loading fetches the account before the wizard opens; the freelancer
// path names the workspace after it.
type Loading struct{}

// Wizard is the active multi-step form.
type Wizard struct {
	User       api.User
	Step       Step
	EntityType string

	CompanyName field.CompanyName
	VatNumber   field.VatNumber
	Street      string
	PostalCode  string
	City        string
	Country     string

	Lookup       LookupState
	Confirmation *Confirmation
	StepError    string
}

// Creating is the in-flight create call. The request is fully built and
// carries its idempotency key, so replaying it is safe.
type Creating struct {
	Request api.CreateTenantRequest
}

// Errored is a failed load or create. Previous restores the wizard as it
// was before the failure; Retry replays the failed operation.
type Errored struct {
	Cause    error
	Retry    store.Intent
	Previous *Wizard // nil when the initial load failed
}

func (Loading) wizardState()  {}
func (Wizard) wizardState()   {}
func (Creating) wizardState() {}
func (Errored) wizardState()  {}

// Intents.
type (
	// SelectType picks the entity type on the first step.
	SelectType struct{ EntityType string }
	// Next advances the wizard; on the last relevant step it creates
	// the workspace.
	Next struct{}
	// BackStep walks one step back through the ordered step list.
	BackStep struct{}

	UpdateCompanyName struct{ Value string }
	UpdateVatNumber   struct{ Value string }
	UpdateStreet      struct{ Value string }
	UpdatePostalCode  struct{ Value string }
	UpdateCity        struct{ Value string }
	UpdateCountry     struct{ Value string }

	// SelectEntity picks one registry match from the confirmation and
	// creates the workspace from it, skipping the VAT/address step.
	SelectEntity struct{ Match api.CompanyMatch }
	// EnterManually dismisses the confirmation and continues to the
	// VAT/address step with the typed name.
	EnterManually struct{}
	// DismissConfirmation returns to the name step without choosing.
	DismissConfirmation struct{}

	Retry struct{}
	// Restore leaves the error state and returns to the previous
	// wizard page without retrying.
	Restore struct{}

	load         struct{}
	replayCreate struct{ Request api.CreateTenantRequest }
)

// Created is emitted once the workspace exists.
type Created struct{ Tenant api.Tenant }

// UserFetcher fetches the account during Loading.
type UserFetcher interface {
	CurrentUser(ctx context.Context) (api.User, error)
}

// CompanySearcher runs the registry lookup.
type CompanySearcher interface {
	Search(ctx context.Context, query string) ([]api.CompanyMatch, error)
}

// TenantCreator creates the workspace.
type TenantCreator interface {
	Create(ctx context.Context, req api.CreateTenantRequest) (api.Tenant, error)
}

// Container is the creation wizard container.
type Container struct {
	*store.Store[State]
	users    UserFetcher
	registry CompanySearcher
	tenants  TenantCreator
}

// NewContainer creates and starts the wizard; the account load begins
// immediately.
func NewContainer(users UserFetcher, registry CompanySearcher, tenants TenantCreator) *Container {
	c := &Container{
		Store:    store.New[State]("workspace-wizard", Loading{}),
		users:    users,
		registry: registry,
		tenants:  tenants,
	}
	c.Run(c.reduce)
	c.Dispatch(load{})
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case load:
		c.loadUser(ctx)
	case SelectType:
		c.editWizard(func(w Wizard) Wizard {
			if w.Step == StepTypeSelection {
				w.EntityType = i.EntityType
				w.StepError = ""
			}
			return w
		})
	case Next:
		c.next(ctx)
	case BackStep:
		c.editWizard(func(w Wizard) Wizard {
			steps := StepsFor(w.EntityType)
			for idx, s := range steps {
				if s == w.Step && idx > 0 {
					w.Step = steps[idx-1]
					break
				}
			}
			w.StepError = ""
			w.Confirmation = nil
			return w
		})
	case UpdateCompanyName:
		c.editWizard(func(w Wizard) Wizard {
			w.CompanyName = field.NewCompanyName(i.Value)
			w.Lookup = LookupIdle{}
			w.StepError = ""
			return w
		})
	case UpdateVatNumber:
		c.editWizard(func(w Wizard) Wizard { w.VatNumber = field.NewVatNumber(i.Value); w.StepError = ""; return w })
	case UpdateStreet:
		c.editWizard(func(w Wizard) Wizard { w.Street = i.Value; w.StepError = ""; return w })
	case UpdatePostalCode:
		c.editWizard(func(w Wizard) Wizard { w.PostalCode = i.Value; w.StepError = ""; return w })
	case UpdateCity:
		c.editWizard(func(w Wizard) Wizard { w.City = i.Value; w.StepError = ""; return w })
	case UpdateCountry:
		c.editWizard(func(w Wizard) Wizard { w.Country = i.Value; w.StepError = ""; return w })
	case SelectEntity:
		store.With(c.Store, func(w Wizard) {
			if w.Confirmation == nil {
				return
			}
			req := api.CreateTenantRequest{
				IdempotencyKey: uuid.NewString(),
				Type:           api.EntityCompany,
				Name:           i.Match.Name,
				RegistryID:     i.Match.RegistryID,
				VatNumber:      i.Match.VatNumber,
				Address:        i.Match.Address,
			}
			c.create(ctx, req, &w)
		})
	case EnterManually:
		c.editWizard(func(w Wizard) Wizard {
			if w.Confirmation != nil {
				w.Confirmation = nil
				w.Step = StepVatAndAddress
			}
			return w
		})
	case DismissConfirmation:
		c.editWizard(func(w Wizard) Wizard {
			w.Confirmation = nil
			return w
		})
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.Dispatch(s.Retry)
		})
	case Restore:
		store.With(c.Store, func(s Errored) {
			if s.Previous == nil {
				return
			}
			c.UpdateState(func(State) State { return *s.Previous })
		})
	case replayCreate:
		store.With(c.Store, func(s Errored) {
			c.create(ctx, i.Request, s.Previous)
		})
	}
}

// editWizard applies an edit only while the wizard page is active.
func (c *Container) editWizard(apply func(Wizard) Wizard) {
	c.UpdateState(func(s State) State {
		if w, ok := s.(Wizard); ok {
			return apply(w)
		}
		return s
	})
}

func (c *Container) loadUser(ctx context.Context) {
	user, err := c.users.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{Cause: err, Retry: load{}}
		})
		return
	}
	c.UpdateState(func(State) State {
		return Wizard{
			User:       user,
			Step:       StepTypeSelection,
			EntityType: api.EntityCompany,
			Lookup:     LookupIdle{},
		}
	})
}

// next advances the wizard. Which work happens depends on the current
// step: the type-selection step can finish immediately for freelancers,
// the name step runs the registry lookup, and the final step creates the
// workspace.
func (c *Container) next(ctx context.Context) {
	store.With(c.Store, func(w Wizard) {
		if w.Confirmation != nil {
			return // disambiguation needs an explicit choice
		}
		switch w.Step {
		case StepTypeSelection:
			if w.EntityType == api.EntityFreelancer {
				req := api.CreateTenantRequest{
					IdempotencyKey: uuid.NewString(),
					Type:           api.EntityFreelancer,
					Name:           w.User.DisplayName,
				}
				c.create(ctx, req, &w)
				return
			}
			c.editWizard(func(w Wizard) Wizard { w.Step = StepCompanyName; return w })
		case StepCompanyName:
			c.lookupOrAdvance(ctx, w)
		case StepVatAndAddress:
			c.finishManually(ctx, w)
		}
	})
}

// lookupOrAdvance runs the registry search for the typed name. Names
// shorter than the lookup minimum stay on the step with an inline error.
func (c *Container) lookupOrAdvance(ctx context.Context, w Wizard) {
	if !w.CompanyName.Searchable() {
		c.editWizard(func(w Wizard) Wizard {
			w.StepError = "Company name must be at least 3 characters."
			return w
		})
		return
	}
	query := w.CompanyName.Raw
	c.editWizard(func(w Wizard) Wizard {
		w.Lookup = LookupRunning{Query: query}
		return w
	})

	matches, err := c.registry.Search(ctx, query)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.editWizard(func(w Wizard) Wizard {
			w.Lookup = LookupFailed{Query: query, Cause: err}
			return w
		})
		return
	}

	c.editWizard(func(w Wizard) Wizard {
		w.Lookup = LookupDone{Query: query, Matches: matches}
		if len(matches) > 0 {
			w.Confirmation = &Confirmation{Matches: matches}
		} else {
			// Nothing in the registry: the user enters details manually.
			w.Step = StepVatAndAddress
		}
		return w
	})
}

func (c *Container) finishManually(ctx context.Context, w Wizard) {
	if err := c.validateManual(w); err != nil {
		c.editWizard(func(w Wizard) Wizard {
			w.StepError = errors.UserMessage(err)
			return w
		})
		return
	}
	req := api.CreateTenantRequest{
		IdempotencyKey: uuid.NewString(),
		Type:           api.EntityCompany,
		Name:           w.CompanyName.Raw,
		VatNumber:      w.VatNumber.Raw,
		Address: api.Address{
			Street:     w.Street,
			PostalCode: w.PostalCode,
			City:       w.City,
			Country:    w.Country,
		},
	}
	c.create(ctx, req, &w)
}

func (c *Container) validateManual(w Wizard) error {
	if err := w.VatNumber.Validate(); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"Street", w.Street},
		{"Postal code", w.PostalCode},
		{"City", w.City},
		{"Country", w.Country},
	} {
		if f.value == "" {
			return errors.FieldRequired(f.name)
		}
	}
	return nil
}

// create runs the tenant creation. previous is the wizard page to restore
// on failure, captured by value at the moment of transition.
func (c *Container) create(ctx context.Context, req api.CreateTenantRequest, previous *Wizard) {
	c.UpdateState(func(State) State { return Creating{Request: req} })

	t, err := c.tenants.Create(ctx, req)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{
				Cause:    err,
				Retry:    replayCreate{Request: req},
				Previous: previous,
			}
		})
		return
	}
	c.Emit(Created{Tenant: t})
}
