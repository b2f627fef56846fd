package app

import (
	"encoding/json"

	tea "charm.land/bubbletea/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/clipboard"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/login"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/passwordreset"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/profile"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/register"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/review"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/serverconn"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/sessions"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/workspace"
	"github.com/ledgerdesk/ledgerdesk/internal/keys"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
	"github.com/ledgerdesk/ledgerdesk/internal/notification"
	"github.com/ledgerdesk/ledgerdesk/internal/ui"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.footer.SetWidth(msg.Width)
		return m, nil

	case ui.FlashTickMsg:
		m.footer.ClearExpiredFlash()
		if m.footer.HasFlash() {
			return m, ui.FlashTick()
		}
		return m, nil

	case StateChangedMsg:
		// The view re-reads container state on render; just re-arm.
		return m, m.changeListener(msg.Screen)

	case ActionMsg:
		cmd := m.handleAction(msg)
		return m, tea.Batch(cmd, m.actionListener(msg.Screen))

	case ServerEventMsg:
		cmd := m.handleEvent(msg.Event)
		var next tea.Cmd
		if m.stream != nil {
			next = listenForEvent(m.stream.Events())
		}
		return m, tea.Batch(cmd, next)

	case streamClosedMsg:
		logger.Warn("app: event stream closed")
		m.stream = nil
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keys.CtrlC {
		m.Close()
		return m, tea.Quit
	}

	if m.settings != nil {
		return m.keySettings(msg)
	}

	switch m.screen {
	case ScreenServerConn:
		return m.keyServerConn(msg)
	case ScreenLogin:
		return m.keyLogin(msg)
	case ScreenRegister:
		return m.keyRegister(msg)
	case ScreenForgotPassword:
		return m.keyForgotPassword(msg)
	case ScreenResetPassword:
		return m.keyResetPassword(msg)
	case ScreenWorkspaceSelect:
		return m.keyWorkspaceSelect(msg)
	case ScreenWorkspaceWizard:
		return m.keyWorkspaceWizard(msg)
	case ScreenReview:
		return m.keyReview(msg)
	case ScreenProfile:
		return m.keyProfile(msg)
	case ScreenSessions:
		return m.keySessions(msg)
	}
	return m, nil
}

// =============================================================================
// Per-screen key handling
// =============================================================================

func (m *Model) keyServerConn(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.serverConn
	switch msg.String() {
	case keys.Enter:
		switch c.State().(type) {
		case serverconn.Input:
			c.Dispatch(serverconn.Validate{})
		case serverconn.Confirm:
			c.Dispatch(serverconn.Accept{})
		case serverconn.Errored:
			c.Dispatch(serverconn.Retry{})
		}
		return m, nil
	case keys.Escape:
		c.Dispatch(serverconn.Back{})
		return m, nil
	case keys.Tab, keys.Down:
		m.form.Next()
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.Prev()
		return m, nil
	case keys.CtrlL:
		c.Dispatch(serverconn.UseCloud{})
		return m, nil
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 0:
		c.Dispatch(serverconn.UpdateHost{Value: value})
	case 1:
		c.Dispatch(serverconn.UpdatePort{Value: value})
	}
	return m, cmd
}

func (m *Model) keyLogin(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.loginC
	switch msg.String() {
	case keys.Enter:
		if _, ok := c.State().(login.Errored); ok {
			c.Dispatch(login.Retry{})
		} else {
			c.Dispatch(login.Submit{})
		}
		return m, nil
	case keys.Tab, keys.Down:
		m.form.Next()
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.Prev()
		return m, nil
	case keys.CtrlN:
		return m, m.navigate(ScreenRegister)
	case keys.CtrlP:
		return m, m.navigate(ScreenForgotPassword)
	case keys.Escape:
		return m, m.navigate(ScreenServerConn)
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 0:
		c.Dispatch(login.UpdateEmail{Value: value})
	case 1:
		c.Dispatch(login.UpdatePassword{Value: value})
	}
	return m, cmd
}

func (m *Model) keyRegister(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.registerC
	switch msg.String() {
	case keys.Enter:
		if _, ok := c.State().(register.Errored); ok {
			c.Dispatch(register.Retry{})
		} else {
			c.Dispatch(register.Submit{})
		}
		return m, nil
	case keys.Tab, keys.Down:
		m.form.Next()
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.Prev()
		return m, nil
	case keys.Escape:
		return m, m.navigate(ScreenLogin)
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 0:
		c.Dispatch(register.UpdateName{Value: value})
	case 1:
		c.Dispatch(register.UpdateEmail{Value: value})
	case 2:
		c.Dispatch(register.UpdatePassword{Value: value})
	case 3:
		c.Dispatch(register.UpdateConfirmation{Value: value})
	}
	return m, cmd
}

func (m *Model) keyForgotPassword(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.forgotC
	switch msg.String() {
	case keys.Enter:
		if _, ok := c.State().(passwordreset.ForgotErrored); ok {
			c.Dispatch(passwordreset.RetryForgot{})
		} else {
			c.Dispatch(passwordreset.SubmitForgot{})
		}
		return m, nil
	case keys.Escape:
		return m, m.navigate(ScreenLogin)
	}
	value, cmd := m.form.Update(msg)
	c.Dispatch(passwordreset.UpdateForgotEmail{Value: value})
	return m, cmd
}

func (m *Model) keyResetPassword(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.resetC
	switch msg.String() {
	case keys.Enter:
		if _, ok := c.State().(passwordreset.ResetErrored); ok {
			c.Dispatch(passwordreset.RetryReset{})
		} else {
			c.Dispatch(passwordreset.SubmitReset{})
		}
		return m, nil
	case keys.Tab, keys.Down:
		m.form.Next()
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.Prev()
		return m, nil
	case keys.Escape:
		return m, m.navigate(ScreenLogin)
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 0:
		c.Dispatch(passwordreset.UpdateCode{Value: value})
	case 1:
		c.Dispatch(passwordreset.UpdateNewPassword{Value: value})
	case 2:
		c.Dispatch(passwordreset.UpdateConfirmation{Value: value})
	}
	return m, cmd
}

func (m *Model) keyWorkspaceSelect(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.wsSelect
	ready, _ := c.State().(workspace.SelectReady)
	switch msg.String() {
	case keys.Up:
		m.cursor = clamp(m.cursor-1, len(ready.Tenants))
	case keys.Down:
		m.cursor = clamp(m.cursor+1, len(ready.Tenants))
	case keys.Enter:
		if _, ok := c.State().(workspace.SelectErrored); ok {
			c.Dispatch(workspace.RetrySelect{})
			return m, nil
		}
		if m.cursor < len(ready.Tenants) {
			c.Dispatch(workspace.Choose{Tenant: ready.Tenants[m.cursor]})
		}
	case keys.CtrlR:
		c.Dispatch(workspace.Refresh{})
	case "n":
		return m, m.navigate(ScreenWorkspaceWizard)
	}
	return m, nil
}

func (m *Model) keyWorkspaceWizard(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.wizardC
	switch s := c.State().(type) {
	case workspace.Errored:
		switch msg.String() {
		case keys.Enter:
			c.Dispatch(workspace.Retry{})
		case keys.Escape:
			c.Dispatch(workspace.Restore{})
		}
		return m, nil

	case workspace.Wizard:
		if s.Confirmation != nil {
			return m.keyWizardConfirmation(msg, s)
		}
		switch s.Step {
		case workspace.StepTypeSelection:
			return m.keyWizardTypeSelection(msg)
		case workspace.StepCompanyName:
			return m.keyWizardNamed(msg, 0, func(v string) { c.Dispatch(workspace.UpdateCompanyName{Value: v}) })
		case workspace.StepVatAndAddress:
			return m.keyWizardAddress(msg)
		}
	}
	return m, nil
}

func (m *Model) keyWizardTypeSelection(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	entityTypes := []string{api.EntityFreelancer, api.EntityCompany}
	switch msg.String() {
	case keys.Up, keys.Left:
		m.cursor = clamp(m.cursor-1, len(entityTypes))
	case keys.Down, keys.Right:
		m.cursor = clamp(m.cursor+1, len(entityTypes))
	case keys.Enter:
		m.wizardC.Dispatch(workspace.SelectType{EntityType: entityTypes[m.cursor]})
		m.wizardC.Dispatch(workspace.Next{})
	case keys.Escape:
		return m, m.navigate(ScreenWorkspaceSelect)
	}
	return m, nil
}

func (m *Model) keyWizardNamed(msg tea.KeyPressMsg, field int, update func(string)) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Enter:
		m.wizardC.Dispatch(workspace.Next{})
		return m, nil
	case keys.Escape:
		m.wizardC.Dispatch(workspace.BackStep{})
		return m, nil
	}
	m.form.setFocus(field)
	value, cmd := m.form.Update(msg)
	update(value)
	return m, cmd
}

func (m *Model) keyWizardConfirmation(msg tea.KeyPressMsg, s workspace.Wizard) (tea.Model, tea.Cmd) {
	matches := s.Confirmation.Matches
	switch msg.String() {
	case keys.Up:
		m.cursor = clamp(m.cursor-1, len(matches))
	case keys.Down:
		m.cursor = clamp(m.cursor+1, len(matches))
	case keys.Enter:
		if m.cursor < len(matches) {
			m.wizardC.Dispatch(workspace.SelectEntity{Match: matches[m.cursor]})
		}
	case "m":
		m.wizardC.Dispatch(workspace.EnterManually{})
	case keys.Escape:
		m.wizardC.Dispatch(workspace.DismissConfirmation{})
	}
	return m, nil
}

// wizardAddressFields maps form indexes on the VAT/address step to their
// update intents. Index 0 is the company name on the previous step.
func (m *Model) keyWizardAddress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.wizardC
	switch msg.String() {
	case keys.Enter:
		c.Dispatch(workspace.Next{})
		return m, nil
	case keys.Escape:
		c.Dispatch(workspace.BackStep{})
		return m, nil
	case keys.Tab, keys.Down:
		m.form.setFocus(wrapRange(m.form.Focused()+1, 1, 5))
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.setFocus(wrapRange(m.form.Focused()-1, 1, 5))
		return m, nil
	}
	if m.form.Focused() == 0 {
		m.form.setFocus(1)
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 1:
		c.Dispatch(workspace.UpdateVatNumber{Value: value})
	case 2:
		c.Dispatch(workspace.UpdateStreet{Value: value})
	case 3:
		c.Dispatch(workspace.UpdatePostalCode{Value: value})
	case 4:
		c.Dispatch(workspace.UpdateCity{Value: value})
	case 5:
		c.Dispatch(workspace.UpdateCountry{Value: value})
	}
	return m, cmd
}

func (m *Model) keyReview(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.reviewC

	if m.rejectMode {
		switch msg.String() {
		case keys.Enter:
			if doc, ok := m.selectedDocument(); ok {
				c.Dispatch(review.Reject{DocumentID: doc.ID, Note: m.noteInput.Value()})
			}
			m.rejectMode = false
			m.noteInput.SetValue("")
			return m, nil
		case keys.Escape:
			m.rejectMode = false
			m.noteInput.SetValue("")
			return m, nil
		}
		var cmd tea.Cmd
		m.noteInput, cmd = m.noteInput.Update(msg)
		return m, cmd
	}

	ready, _ := c.State().(review.Ready)
	switch msg.String() {
	case keys.Up:
		m.cursor = clamp(m.cursor-1, len(ready.Documents))
	case keys.Down:
		m.cursor = clamp(m.cursor+1, len(ready.Documents))
	case "a":
		if doc, ok := m.selectedDocument(); ok {
			c.Dispatch(review.Approve{DocumentID: doc.ID})
		}
	case "r":
		if _, ok := m.selectedDocument(); ok {
			m.rejectMode = true
			m.noteInput.SetValue("")
			m.noteInput.Focus()
		}
	case keys.Enter:
		if _, ok := c.State().(review.Errored); ok {
			c.Dispatch(review.Retry{})
		}
	case keys.CtrlR:
		c.Dispatch(review.Refresh{})
	case keys.CtrlY:
		if doc, ok := m.selectedDocument(); ok && len(doc.Raw) > 0 {
			if err := clipboard.WriteText(string(doc.Raw)); err != nil {
				return m, m.showFlashError("Clipboard unavailable")
			}
			return m, m.showFlash("Copied document JSON")
		}
	case keys.CtrlT:
		m.settings = newSettings(string(currentThemeName()), m.cfg.GetNotificationsEnabled())
	case "p":
		return m, m.navigate(ScreenProfile)
	case "s":
		return m, m.navigate(ScreenSessions)
	case "w":
		return m, m.navigate(ScreenWorkspaceSelect)
	}
	return m, nil
}

func (m *Model) keyProfile(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Enter:
		if m.form.Focused() <= 1 {
			if _, ok := m.profileC.State().(profile.Errored); ok {
				m.profileC.Dispatch(profile.Retry{})
			} else {
				m.profileC.Dispatch(profile.Save{})
			}
		} else {
			if _, ok := m.passwordC.State().(profile.PasswordErrored); ok {
				m.passwordC.Dispatch(profile.RetryPassword{})
			} else {
				m.passwordC.Dispatch(profile.SubmitPassword{})
			}
		}
		return m, nil
	case keys.Tab, keys.Down:
		m.form.Next()
		return m, nil
	case keys.ShiftTab, keys.Up:
		m.form.Prev()
		return m, nil
	case keys.CtrlV:
		m.profileC.Dispatch(profile.SendVerification{})
		return m, nil
	case keys.Escape:
		return m, m.navigate(ScreenReview)
	}
	value, cmd := m.form.Update(msg)
	switch m.form.Focused() {
	case 0:
		m.profileC.Dispatch(profile.UpdateDisplayName{Value: value})
	case 1:
		m.profileC.Dispatch(profile.UpdateLanguage{Value: value})
	case 2:
		m.passwordC.Dispatch(profile.UpdateCurrentPassword{Value: value})
	case 3:
		m.passwordC.Dispatch(profile.UpdateNewPassword{Value: value})
	case 4:
		m.passwordC.Dispatch(profile.UpdatePasswordConfirmation{Value: value})
	}
	return m, cmd
}

func (m *Model) keySessions(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	c := m.sessionsC
	ready, _ := c.State().(sessions.Ready)
	switch msg.String() {
	case keys.Up:
		m.cursor = clamp(m.cursor-1, len(ready.Sessions))
	case keys.Down:
		m.cursor = clamp(m.cursor+1, len(ready.Sessions))
	case keys.Enter, "x":
		if _, ok := c.State().(sessions.Errored); ok {
			c.Dispatch(sessions.Retry{})
			return m, nil
		}
		if m.cursor < len(ready.Sessions) {
			c.Dispatch(sessions.Revoke{ID: ready.Sessions[m.cursor].ID})
		}
	case "o":
		c.Dispatch(sessions.RevokeOthers{})
	case keys.CtrlR:
		c.Dispatch(sessions.Refresh{})
	case keys.Escape:
		return m, m.navigate(ScreenReview)
	}
	return m, nil
}

// =============================================================================
// Action routing
// =============================================================================

func (m *Model) handleAction(msg ActionMsg) tea.Cmd {
	from := msg.Screen
	if from == screenProfilePassword {
		from = ScreenProfile
	}
	if from != m.screen {
		// A late completion from a screen the user already left. The
		// container is closed on navigation, so this is rare; drop it.
		logger.Debug("app: dropping stale action from %s", msg.Screen)
		return nil
	}

	switch a := msg.Action.(type) {
	case serverconn.Connected:
		m.cfg.SetServerURL(a.BaseURL)
		if err := m.cfg.Save(); err != nil {
			logger.Error("app: saving server url: %v", err)
		}
		m.client.SetBaseURL(a.BaseURL)
		m.header.SetServer(hostOf(a.BaseURL))
		return m.navigate(ScreenLogin)

	case login.LoggedIn:
		m.user = a.User
		return m.navigate(ScreenWorkspaceSelect)

	case register.Registered:
		m.user = a.User
		return m.navigate(ScreenWorkspaceSelect)

	case passwordreset.CodeSent:
		m.resetEmail = a.Email
		cmd := m.navigate(ScreenResetPassword)
		return tea.Batch(cmd, m.showFlash("Reset code sent to "+a.Email))

	case passwordreset.PasswordChanged:
		cmd := m.navigate(ScreenLogin)
		return tea.Batch(cmd, m.showFlashSuccess("Password updated, sign in again"))

	case workspace.Activated:
		m.activeWorkspace = a.Tenant.Name
		m.header.SetWorkspace(a.Tenant.Name)
		return m.navigate(ScreenReview)

	case workspace.NoneAvailable:
		return m.navigate(ScreenWorkspaceWizard)

	case workspace.Created:
		m.tenants.Activate(a.Tenant)
		m.activeWorkspace = a.Tenant.Name
		m.header.SetWorkspace(a.Tenant.Name)
		if m.cfg.GetNotificationsEnabled() {
			notification.Send("Workspace created", a.Tenant.Name)
		}
		cmd := m.navigate(ScreenReview)
		return tea.Batch(cmd, m.showFlashSuccess("Workspace "+a.Tenant.Name+" created"))

	case profile.Saved:
		m.user = a.User
		return m.showFlashSuccess("Profile saved")

	case profile.EmailVerified:
		m.user.EmailVerified = true
		return m.showFlashSuccess("Email verified")

	case profile.PasswordUpdated:
		return m.showFlashSuccess("Password updated")

	case sessions.Revoked:
		if a.Current {
			m.signOut()
			cmd := m.navigate(ScreenLogin)
			return tea.Batch(cmd, m.showFlash("Signed out: this session was revoked"))
		}
		m.cursor = 0
		return m.showFlash("Session revoked")

	case review.Decided:
		m.cursor = 0
		if a.Verdict == api.VerdictReject {
			return m.showFlash("Document rejected")
		}
		return m.showFlashSuccess("Document approved")
	}
	return nil
}

// =============================================================================
// Server push events
// =============================================================================

func (m *Model) handleEvent(ev api.Event) tea.Cmd {
	switch ev.Type {
	case api.EventDocumentQueued:
		var doc api.Document
		if err := json.Unmarshal(ev.Payload, &doc); err != nil {
			logger.Warn("app: bad document.queued payload: %v", err)
			return nil
		}
		if m.reviewC != nil {
			m.reviewC.Dispatch(review.Queued{Document: doc})
		}
		if m.cfg.GetNotificationsEnabled() {
			notification.DocumentQueued(doc.Counterparty)
		}

	case api.EventDocumentDecided:
		var p struct {
			DocumentID string `json:"document_id"`
		}
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			logger.Warn("app: bad document.decided payload: %v", err)
			return nil
		}
		if m.reviewC != nil {
			m.reviewC.Dispatch(review.DecidedElsewhere{DocumentID: p.DocumentID})
		}

	case api.EventSessionRevoked:
		var p struct {
			SessionID string `json:"session_id"`
			Current   bool   `json:"current"`
		}
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			logger.Warn("app: bad session.revoked payload: %v", err)
			return nil
		}
		if p.Current {
			if m.cfg.GetNotificationsEnabled() {
				notification.SessionRevoked()
			}
			m.signOut()
			return m.navigate(ScreenLogin)
		}
		if m.sessionsC != nil {
			m.sessionsC.Dispatch(sessions.Refresh{})
		}

	case api.EventProfileUpdated:
		var user api.User
		if err := json.Unmarshal(ev.Payload, &user); err != nil {
			logger.Warn("app: bad profile.updated payload: %v", err)
			return nil
		}
		m.user = user
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// signOut clears credentials and tears down the event stream.
func (m *Model) signOut() {
	m.accounts.SignOut()
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.activeWorkspace = ""
	m.header.SetWorkspace("")
	m.user = api.User{}
}

// keySettings routes keys while the settings overlay is open.
func (m *Model) keySettings(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Enter:
		ui.SetTheme(ui.ThemeName(m.settings.selectedTheme))
		m.cfg.SetTheme(m.settings.selectedTheme)
		m.cfg.SetNotificationsEnabled(m.settings.notificationsEnabled())
		if err := m.cfg.Save(); err != nil {
			logger.Error("app: saving settings: %v", err)
		}
		m.settings = nil
		return m, m.showFlashSuccess("Settings saved")
	case keys.Escape:
		m.settings = nil
		return m, nil
	}
	return m, m.settings.Update(msg)
}

// currentThemeName maps the active theme back to its config key.
func currentThemeName() ui.ThemeName {
	current := ui.CurrentTheme().Name
	for _, n := range ui.ThemeNames() {
		if ui.BuiltinThemes[n].Name == current {
			return n
		}
	}
	return ui.DefaultTheme
}

func (m *Model) selectedDocument() (api.Document, bool) {
	ready, ok := m.reviewC.State().(review.Ready)
	if !ok || m.cursor >= len(ready.Documents) {
		return api.Document{}, false
	}
	return ready.Documents[m.cursor], true
}

// clamp keeps a cursor inside [0, n).
func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// wrapRange wraps i into the inclusive range [lo, hi].
func wrapRange(i, lo, hi int) int {
	n := hi - lo + 1
	return lo + ((i-lo)%n+n)%n
}
