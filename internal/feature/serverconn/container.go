// Package serverconn holds the server-connection screen: pick a host and
// port, validate the server actually speaks the Ledgerdesk protocol, then
// confirm the connection. A reset-to-cloud shortcut points the client back
// at the hosted endpoint.
package serverconn

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/field"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
)

// State is the sealed state set for the server-connection screen.
type State interface{ serverConnState() }

// Input is the editable host/port form. Host and port carry independent
// inline errors so both can be reported at once.
type Input struct {
	Host      field.Host
	Port      field.Port
	HostError string
	PortError string
}

// Validating is the in-flight handshake.
type Validating struct {
	Host    field.Host
	Port    field.Port
	BaseURL string
}

// Confirm shows the probed server identity and waits for the user to
// accept it.
type Confirm struct {
	Host    field.Host
	Port    field.Port
	BaseURL string
	Info    api.ServerInfo
}

// Errored is a failed handshake with the intent to replay.
type Errored struct {
	Host    field.Host
	Port    field.Port
	BaseURL string
	Cause   error
	Retry   store.Intent
}

func (Input) serverConnState()      {}
func (Validating) serverConnState() {}
func (Confirm) serverConnState()    {}
func (Errored) serverConnState()    {}

// Intents.
type (
	UpdateHost struct{ Value string }
	UpdatePort struct{ Value string }
	// Validate runs local checks, then probes the server.
	Validate struct{}
	// Accept confirms the probed server and emits Connected.
	Accept struct{}
	// Back returns from the confirmation step to the form.
	Back struct{}
	// UseCloud validates the hosted endpoint instead of a custom server.
	UseCloud struct{}
	Retry    struct{}

	replayProbe struct {
		Host    field.Host
		Port    field.Port
		BaseURL string
	}
)

// Connected is emitted when the user accepts a validated server.
type Connected struct {
	BaseURL string
	Info    api.ServerInfo
}

// Prober is the injected use-case: handshake with a candidate server.
type Prober interface {
	Probe(ctx context.Context, baseURL string) (api.ServerInfo, error)
}

// BaseURL builds the server base URL for a validated host and port.
// A host carrying an explicit scheme is respected; everything else
// defaults to https.
func BaseURL(host field.Host, port field.Port) string {
	h := host.Raw
	if !strings.Contains(h, "://") {
		h = "https://" + h
	}
	return fmt.Sprintf("%s:%d", h, port.Number())
}

// Container is the server-connection screen container.
type Container struct {
	*store.Store[State]
	prober Prober
}

// NewContainer creates and starts the container. The initial form is
// prefilled with the previously configured host and port, if any.
func NewContainer(p Prober, host, port string) *Container {
	c := &Container{
		Store: store.New[State]("server-connection", Input{
			Host: field.NewHost(host),
			Port: field.NewPort(port),
		}),
		prober: p,
	}
	c.Run(c.reduce)
	return c
}

func (c *Container) reduce(ctx context.Context, i store.Intent) {
	switch i := i.(type) {
	case UpdateHost:
		c.edit(func(s Input) Input {
			s.Host = field.NewHost(i.Value)
			s.HostError = ""
			return s
		})
	case UpdatePort:
		c.edit(func(s Input) Input {
			s.Port = field.NewPort(i.Value)
			s.PortError = ""
			return s
		})
	case Validate:
		c.validate(ctx)
	case Accept:
		store.With(c.Store, func(s Confirm) {
			c.Emit(Connected{BaseURL: s.BaseURL, Info: s.Info})
		})
	case Back:
		store.With(c.Store, func(s Confirm) {
			c.UpdateState(func(State) State {
				return Input{Host: s.Host, Port: s.Port}
			})
		})
	case UseCloud:
		store.With(c.Store, func(s Input) {
			host := field.NewHost(api.CloudBaseURL)
			port := field.NewPort("443")
			c.UpdateState(func(State) State {
				return Validating{Host: host, Port: port, BaseURL: api.CloudBaseURL}
			})
			c.probe(ctx, host, port, api.CloudBaseURL)
		})
	case Retry:
		store.With(c.Store, func(s Errored) {
			c.UpdateState(func(State) State {
				return Validating{Host: s.Host, Port: s.Port, BaseURL: s.BaseURL}
			})
			c.Dispatch(s.Retry)
		})
	case replayProbe:
		c.UpdateState(func(State) State {
			return Validating{Host: i.Host, Port: i.Port, BaseURL: i.BaseURL}
		})
		c.probe(ctx, i.Host, i.Port, i.BaseURL)
	}
}

// edit applies a form edit. Editing while Errored returns to the form with
// the previous values restored.
func (c *Container) edit(apply func(Input) Input) {
	c.UpdateState(func(s State) State {
		switch s := s.(type) {
		case Input:
			return apply(s)
		case Errored:
			return apply(Input{Host: s.Host, Port: s.Port})
		default:
			return s
		}
	})
}

// validate runs the local field checks; only a fully valid form triggers
// the network probe.
func (c *Container) validate(ctx context.Context) {
	store.With(c.Store, func(s Input) {
		hostErr := s.Host.Validate()
		portErr := s.Port.Validate()
		if hostErr != nil || portErr != nil {
			c.UpdateState(func(State) State {
				return Input{
					Host:      s.Host,
					Port:      s.Port,
					HostError: errors.UserMessage(hostErr),
					PortError: errors.UserMessage(portErr),
				}
			})
			return
		}
		base := BaseURL(s.Host, s.Port)
		c.UpdateState(func(State) State {
			return Validating{Host: s.Host, Port: s.Port, BaseURL: base}
		})
		c.probe(ctx, s.Host, s.Port, base)
	})
}

func (c *Container) probe(ctx context.Context, host field.Host, port field.Port, base string) {
	info, err := c.prober.Probe(ctx, base)
	if err != nil {
		if errors.Is(err, errors.KindCancelled) {
			return
		}
		c.UpdateState(func(State) State {
			return Errored{
				Host:    host,
				Port:    port,
				BaseURL: base,
				Cause:   err,
				Retry:   replayProbe{Host: host, Port: port, BaseURL: base},
			}
		})
		return
	}
	c.UpdateState(func(State) State {
		return Confirm{Host: host, Port: port, BaseURL: base, Info: info}
	})
}
