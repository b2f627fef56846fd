// Package app is the Bubble Tea shell around the screen containers. It
// owns navigation, key-to-intent mapping, and the channel listeners that
// turn container state changes and actions into messages.
package app

import (
	"context"
	"net/url"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/account"
	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/billing"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/login"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/passwordreset"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/profile"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/register"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/review"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/serverconn"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/sessions"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/workspace"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
	"github.com/ledgerdesk/ledgerdesk/internal/registry"
	"github.com/ledgerdesk/ledgerdesk/internal/store"
	"github.com/ledgerdesk/ledgerdesk/internal/tenant"
	"github.com/ledgerdesk/ledgerdesk/internal/ui"
)

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *config.Config
	version string

	client   *api.Client
	accounts *account.Service
	tenants  *tenant.Service
	billing  *billing.Service
	lookup   *registry.Lookup

	screen Screen
	width  int
	height int

	header *ui.Header
	footer *ui.Footer

	serverConn *serverconn.Container
	loginC     *login.Container
	registerC  *register.Container
	forgotC    *passwordreset.ForgotContainer
	resetC     *passwordreset.ResetContainer
	wsSelect   *workspace.SelectContainer
	wizardC    *workspace.Container
	profileC   *profile.Container
	passwordC  *profile.PasswordContainer
	sessionsC  *sessions.Container
	reviewC    *review.Container

	stream *api.EventStream

	form       *form
	cursor     int
	rejectMode bool
	noteInput  textinput.Model
	settings   *settings

	user            api.User
	activeWorkspace string
	resetEmail      string
}

// prober runs the connection handshake against a candidate server without
// touching the app's main client.
type prober struct{}

func (prober) Probe(ctx context.Context, baseURL string) (api.ServerInfo, error) {
	return api.New(baseURL).Handshake(ctx)
}

// New creates the root model.
func New(cfg *config.Config, version string) *Model {
	base := cfg.GetServerURL()
	if base == "" {
		base = api.CloudBaseURL
	}
	client := api.New(base)
	client.SetToken(cfg.GetAuthToken())

	ui.SetTheme(ui.ThemeName(cfg.GetTheme()))

	m := &Model{
		cfg:      cfg,
		version:  version,
		client:   client,
		accounts: account.NewService(client, cfg),
		tenants:  tenant.NewService(client, cfg),
		lookup:   registry.NewLookup(client),
		header:   ui.NewHeader(),
		footer:   ui.NewFooter(),
	}
	m.billing = billing.NewService(client, cfg.GetActiveTenantID)
	m.header.SetServer(hostOf(base))

	m.screen = m.startScreen()
	return m
}

// startScreen picks where the app opens based on what local state exists.
func (m *Model) startScreen() Screen {
	switch {
	case m.cfg.GetServerURL() == "":
		return ScreenServerConn
	case m.cfg.GetAuthToken() == "":
		return ScreenLogin
	case m.cfg.GetActiveTenantID() == "":
		return ScreenWorkspaceSelect
	default:
		return ScreenReview
	}
}

// Init starts the first screen's container and listeners.
func (m *Model) Init() tea.Cmd {
	cmd := m.enter(m.screen)
	if !m.cfg.GetWelcomeShown() {
		m.cfg.MarkWelcomeShown()
		if err := m.cfg.Save(); err != nil {
			logger.Warn("app: saving config: %v", err)
		}
		return tea.Batch(cmd, m.showFlash("Welcome to ledgerdesk"))
	}
	return cmd
}

// Close tears down every live container and the event stream.
func (m *Model) Close() {
	m.leaveAll()
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	logger.Close()
}

// listeners arms the change and action listeners for one container.
func listeners[S any](screen Screen, s *store.Store[S]) tea.Cmd {
	return tea.Batch(
		listenForChange(screen, s.Changes(), s.Done()),
		listenForAction(screen, s.Actions(), s.Done()),
	)
}

// enter creates the container(s) for a screen, builds its form, and arms
// the listeners. The previous screen must already be left.
func (m *Model) enter(screen Screen) tea.Cmd {
	m.screen = screen
	m.cursor = 0
	m.rejectMode = false
	logger.Debug("app: entering screen %s", screen)

	switch screen {
	case ScreenServerConn:
		host, port := splitHostPort(m.cfg.GetServerURL())
		m.serverConn = serverconn.NewContainer(prober{}, host, port)
		m.form = newForm(
			formField{label: "Host", placeholder: "books.example.com", value: host},
			formField{label: "Port", placeholder: "443", value: port},
		)
		return listeners(screen, m.serverConn.Store)

	case ScreenLogin:
		m.loginC = login.NewContainer(m.accounts)
		m.form = newForm(
			formField{label: "Email", placeholder: "you@example.com", value: m.cfg.GetAccountEmail()},
			formField{label: "Password", secret: true},
		)
		return listeners(screen, m.loginC.Store)

	case ScreenRegister:
		m.registerC = register.NewContainer(m.accounts)
		m.form = newForm(
			formField{label: "Name"},
			formField{label: "Email", placeholder: "you@example.com"},
			formField{label: "Password", secret: true},
			formField{label: "Confirm password", secret: true},
		)
		return listeners(screen, m.registerC.Store)

	case ScreenForgotPassword:
		m.forgotC = passwordreset.NewForgotContainer(m.accounts)
		m.form = newForm(
			formField{label: "Email", placeholder: "you@example.com", value: m.cfg.GetAccountEmail()},
		)
		return listeners(screen, m.forgotC.Store)

	case ScreenResetPassword:
		m.resetC = passwordreset.NewResetContainer(m.accounts)
		m.form = newForm(
			formField{label: "Reset code"},
			formField{label: "New password", secret: true},
			formField{label: "Confirm password", secret: true},
		)
		return listeners(screen, m.resetC.Store)

	case ScreenWorkspaceSelect:
		m.wsSelect = workspace.NewSelectContainer(m.tenants)
		return listeners(screen, m.wsSelect.Store)

	case ScreenWorkspaceWizard:
		m.wizardC = workspace.NewContainer(m.accounts, m.lookup, m.tenants)
		m.form = newForm(
			formField{label: "Company name"},
			formField{label: "VAT number"},
			formField{label: "Street"},
			formField{label: "Postal code"},
			formField{label: "City"},
			formField{label: "Country"},
		)
		return listeners(screen, m.wizardC.Store)

	case ScreenReview:
		m.reviewC = review.NewContainer(m.billing)
		m.noteInput = textinput.New()
		m.noteInput.Placeholder = "reason for rejection"
		cmds := []tea.Cmd{listeners(screen, m.reviewC.Store)}
		if cmd := m.openStream(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)

	case ScreenProfile:
		m.profileC = profile.NewContainer(m.accounts)
		m.passwordC = profile.NewPasswordContainer(m.accounts)
		m.form = newForm(
			formField{label: "Display name", value: m.user.DisplayName},
			formField{label: "Language", placeholder: "en"},
			formField{label: "Current password", secret: true},
			formField{label: "New password", secret: true},
			formField{label: "Confirm password", secret: true},
		)
		return tea.Batch(
			listeners(screen, m.profileC.Store),
			listeners(screenProfilePassword, m.passwordC.Store),
		)

	case ScreenSessions:
		m.sessionsC = sessions.NewContainer(m.accounts)
		return listeners(screen, m.sessionsC.Store)
	}
	return nil
}

// leave closes the containers belonging to one screen.
func (m *Model) leave(screen Screen) {
	switch screen {
	case ScreenServerConn:
		if m.serverConn != nil {
			m.serverConn.Close()
			m.serverConn = nil
		}
	case ScreenLogin:
		if m.loginC != nil {
			m.loginC.Close()
			m.loginC = nil
		}
	case ScreenRegister:
		if m.registerC != nil {
			m.registerC.Close()
			m.registerC = nil
		}
	case ScreenForgotPassword:
		if m.forgotC != nil {
			m.forgotC.Close()
			m.forgotC = nil
		}
	case ScreenResetPassword:
		if m.resetC != nil {
			m.resetC.Close()
			m.resetC = nil
		}
	case ScreenWorkspaceSelect:
		if m.wsSelect != nil {
			m.wsSelect.Close()
			m.wsSelect = nil
		}
	case ScreenWorkspaceWizard:
		if m.wizardC != nil {
			m.wizardC.Close()
			m.wizardC = nil
		}
	case ScreenReview:
		if m.reviewC != nil {
			m.reviewC.Close()
			m.reviewC = nil
		}
	case ScreenProfile:
		if m.profileC != nil {
			m.profileC.Close()
			m.profileC = nil
		}
		if m.passwordC != nil {
			m.passwordC.Close()
			m.passwordC = nil
		}
	case ScreenSessions:
		if m.sessionsC != nil {
			m.sessionsC.Close()
			m.sessionsC = nil
		}
	}
}

func (m *Model) leaveAll() {
	for s := ScreenServerConn; s <= ScreenSessions; s++ {
		m.leave(s)
	}
}

// navigate switches screens: the old screen's containers are closed so
// late use-case completions cannot mutate a disposed screen.
func (m *Model) navigate(to Screen) tea.Cmd {
	m.leave(m.screen)
	return m.enter(to)
}

// openStream subscribes to server push events once a workspace is active.
func (m *Model) openStream() tea.Cmd {
	if m.stream != nil {
		return nil
	}
	stream, err := m.client.Subscribe(context.Background())
	if err != nil {
		logger.Warn("app: event stream unavailable: %v", err)
		return nil
	}
	m.stream = stream
	return listenForEvent(stream.Events())
}

// changeListener re-arms the state listener for a screen after a change
// message was consumed.
func (m *Model) changeListener(screen Screen) tea.Cmd {
	switch screen {
	case ScreenServerConn:
		if m.serverConn != nil {
			return listenForChange(screen, m.serverConn.Changes(), m.serverConn.Done())
		}
	case ScreenLogin:
		if m.loginC != nil {
			return listenForChange(screen, m.loginC.Changes(), m.loginC.Done())
		}
	case ScreenRegister:
		if m.registerC != nil {
			return listenForChange(screen, m.registerC.Changes(), m.registerC.Done())
		}
	case ScreenForgotPassword:
		if m.forgotC != nil {
			return listenForChange(screen, m.forgotC.Changes(), m.forgotC.Done())
		}
	case ScreenResetPassword:
		if m.resetC != nil {
			return listenForChange(screen, m.resetC.Changes(), m.resetC.Done())
		}
	case ScreenWorkspaceSelect:
		if m.wsSelect != nil {
			return listenForChange(screen, m.wsSelect.Changes(), m.wsSelect.Done())
		}
	case ScreenWorkspaceWizard:
		if m.wizardC != nil {
			return listenForChange(screen, m.wizardC.Changes(), m.wizardC.Done())
		}
	case ScreenReview:
		if m.reviewC != nil {
			return listenForChange(screen, m.reviewC.Changes(), m.reviewC.Done())
		}
	case ScreenProfile:
		if m.profileC != nil {
			return listenForChange(screen, m.profileC.Changes(), m.profileC.Done())
		}
	case screenProfilePassword:
		if m.passwordC != nil {
			return listenForChange(screen, m.passwordC.Changes(), m.passwordC.Done())
		}
	case ScreenSessions:
		if m.sessionsC != nil {
			return listenForChange(screen, m.sessionsC.Changes(), m.sessionsC.Done())
		}
	}
	return nil
}

// actionListener re-arms the action listener for a screen after an action
// message was consumed.
func (m *Model) actionListener(screen Screen) tea.Cmd {
	switch screen {
	case ScreenServerConn:
		if m.serverConn != nil {
			return listenForAction(screen, m.serverConn.Actions(), m.serverConn.Done())
		}
	case ScreenLogin:
		if m.loginC != nil {
			return listenForAction(screen, m.loginC.Actions(), m.loginC.Done())
		}
	case ScreenRegister:
		if m.registerC != nil {
			return listenForAction(screen, m.registerC.Actions(), m.registerC.Done())
		}
	case ScreenForgotPassword:
		if m.forgotC != nil {
			return listenForAction(screen, m.forgotC.Actions(), m.forgotC.Done())
		}
	case ScreenResetPassword:
		if m.resetC != nil {
			return listenForAction(screen, m.resetC.Actions(), m.resetC.Done())
		}
	case ScreenWorkspaceSelect:
		if m.wsSelect != nil {
			return listenForAction(screen, m.wsSelect.Actions(), m.wsSelect.Done())
		}
	case ScreenWorkspaceWizard:
		if m.wizardC != nil {
			return listenForAction(screen, m.wizardC.Actions(), m.wizardC.Done())
		}
	case ScreenReview:
		if m.reviewC != nil {
			return listenForAction(screen, m.reviewC.Actions(), m.reviewC.Done())
		}
	case ScreenProfile:
		if m.profileC != nil {
			return listenForAction(screen, m.profileC.Actions(), m.profileC.Done())
		}
	case screenProfilePassword:
		if m.passwordC != nil {
			return listenForAction(screen, m.passwordC.Actions(), m.passwordC.Done())
		}
	case ScreenSessions:
		if m.sessionsC != nil {
			return listenForAction(screen, m.sessionsC.Actions(), m.sessionsC.Done())
		}
	}
	return nil
}

// hostOf extracts the display host from a base URL.
func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}

// splitHostPort pulls host and port out of a stored base URL for
// prefilling the connection form.
func splitHostPort(base string) (host, port string) {
	if base == "" {
		return "", ""
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(base, "/"), ""
	}
	return u.Hostname(), u.Port()
}
