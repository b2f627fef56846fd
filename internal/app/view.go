package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/login"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/passwordreset"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/profile"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/register"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/review"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/serverconn"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/sessions"
	"github.com/ledgerdesk/ledgerdesk/internal/feature/workspace"
	"github.com/ledgerdesk/ledgerdesk/internal/ui"
)

func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	m.footer.SetBindings(m.bindings())

	var body string
	switch m.screen {
	case ScreenServerConn:
		body = m.viewServerConn()
	case ScreenLogin:
		body = m.viewLogin()
	case ScreenRegister:
		body = m.viewRegister()
	case ScreenForgotPassword:
		body = m.viewForgotPassword()
	case ScreenResetPassword:
		body = m.viewResetPassword()
	case ScreenWorkspaceSelect:
		body = m.viewWorkspaceSelect()
	case ScreenWorkspaceWizard:
		body = m.viewWorkspaceWizard()
	case ScreenReview:
		body = m.viewReview()
	case ScreenProfile:
		body = m.viewProfile()
	case ScreenSessions:
		body = m.viewSessions()
	}

	if m.settings != nil {
		v.SetContent(lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			ui.PanelFocusedStyle.Render(m.settings.View())))
		return v
	}

	v.SetContent(lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		ui.PanelStyle.Width(max(m.width-2, 20)).Render(body),
		m.footer.View(),
	))
	return v
}

// =============================================================================
// Screens
// =============================================================================

func (m *Model) viewServerConn() string {
	title := ui.PanelTitleStyle.Render("Connect to server")

	switch s := m.serverConn.State().(type) {
	case serverconn.Input:
		var b strings.Builder
		b.WriteString(title + "\n\n")
		b.WriteString(m.renderFormField(0))
		if s.HostError != "" {
			b.WriteString(ui.FormErrorStyle.Render("  "+s.HostError) + "\n")
		}
		b.WriteString(m.renderFormField(1))
		if s.PortError != "" {
			b.WriteString(ui.FormErrorStyle.Render("  "+s.PortError) + "\n")
		}
		b.WriteString("\n" + ui.FormHintStyle.Render("ctrl+l uses the hosted cloud endpoint"))
		return b.String()

	case serverconn.Validating:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Contacting "+s.BaseURL+"...")

	case serverconn.Confirm:
		var b strings.Builder
		b.WriteString(title + "\n\n")
		b.WriteString(ui.FormLabelStyle.Render("Server   ") + ui.FormValueStyle.Render(s.Info.Name) + "\n")
		b.WriteString(ui.FormLabelStyle.Render("Version  ") + ui.FormValueStyle.Render(s.Info.Version) + "\n")
		b.WriteString(ui.FormLabelStyle.Render("Edition  ") + ui.FormValueStyle.Render(s.Info.Edition) + "\n")
		b.WriteString("\n" + ui.StatusSuccessStyle.Render("Server verified, press enter to connect"))
		return b.String()

	case serverconn.Errored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewLogin() string {
	title := ui.PanelTitleStyle.Render("Sign in")

	switch s := m.loginC.State().(type) {
	case login.Idle:
		return title + "\n\n" + m.renderForm(s.FieldError)
	case login.Authenticating:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Signing in...")
	case login.Errored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewRegister() string {
	title := ui.PanelTitleStyle.Render("Create account")

	switch s := m.registerC.State().(type) {
	case register.Idle:
		return title + "\n\n" + m.renderForm(s.FieldError)
	case register.Submitting:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Creating account...")
	case register.Errored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewForgotPassword() string {
	title := ui.PanelTitleStyle.Render("Forgot password")

	switch s := m.forgotC.State().(type) {
	case passwordreset.ForgotIdle:
		return title + "\n\n" + m.renderForm(s.FieldError)
	case passwordreset.ForgotSending:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Requesting reset code...")
	case passwordreset.ForgotErrored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewResetPassword() string {
	title := ui.PanelTitleStyle.Render("Choose a new password")

	switch s := m.resetC.State().(type) {
	case passwordreset.ResetIdle:
		hint := ui.FormHintStyle.Render("Code was mailed to " + m.resetEmail)
		return title + "\n" + hint + "\n\n" + m.renderForm(s.FieldError)
	case passwordreset.ResetSubmitting:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Updating password...")
	case passwordreset.ResetErrored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewWorkspaceSelect() string {
	title := ui.PanelTitleStyle.Render("Choose a workspace")

	switch s := m.wsSelect.State().(type) {
	case workspace.SelectLoading:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Loading workspaces...")

	case workspace.SelectReady:
		if len(s.Tenants) == 0 {
			return title + "\n\n" + ui.FormHintStyle.Render("No workspaces yet, press n to create one")
		}
		var b strings.Builder
		b.WriteString(title + "\n\n")
		for i, t := range s.Tenants {
			line := t.Name + "  " + ui.ListMetaStyle.Render(t.Type)
			if t.Role != "" {
				line += ui.ListMetaStyle.Render(" · " + t.Role)
			}
			if i == m.cursor {
				b.WriteString(ui.ListSelectedStyle.Render(line) + "\n")
			} else {
				b.WriteString(ui.ListItemStyle.Render(line) + "\n")
			}
		}
		return b.String()

	case workspace.SelectErrored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) viewWorkspaceWizard() string {
	title := ui.PanelTitleStyle.Render("New workspace")

	switch s := m.wizardC.State().(type) {
	case workspace.Loading:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Loading account...")

	case workspace.Wizard:
		if s.Confirmation != nil {
			return title + "\n\n" + m.viewWizardConfirmation(s)
		}
		switch s.Step {
		case workspace.StepTypeSelection:
			return title + "\n\n" + m.viewWizardTypeSelection()
		case workspace.StepCompanyName:
			var b strings.Builder
			b.WriteString(title + "\n\n")
			b.WriteString(m.renderFormField(0))
			if _, running := s.Lookup.(workspace.LookupRunning); running {
				b.WriteString("\n" + ui.StatusLoadingStyle.Render("Searching the company registry..."))
			}
			if lf, ok := s.Lookup.(workspace.LookupFailed); ok {
				b.WriteString("\n" + ui.FormErrorStyle.Render(errors.UserMessage(lf.Cause)))
			}
			if s.StepError != "" {
				b.WriteString("\n" + ui.FormErrorStyle.Render(s.StepError))
			}
			return b.String()
		case workspace.StepVatAndAddress:
			var b strings.Builder
			b.WriteString(title + "\n\n")
			for i := 1; i <= 5; i++ {
				b.WriteString(m.renderFormField(i))
			}
			if s.StepError != "" {
				b.WriteString("\n" + ui.FormErrorStyle.Render(s.StepError))
			}
			return b.String()
		}
		return title

	case workspace.Creating:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Creating workspace "+s.Request.Name+"...")

	case workspace.Errored:
		body := m.renderError(s.Cause)
		if s.Previous != nil {
			body += "\n" + ui.FormHintStyle.Render("esc returns to the form")
		}
		return title + "\n\n" + body
	}
	return title
}

func (m *Model) viewWizardTypeSelection() string {
	var b strings.Builder
	b.WriteString(ui.FormLabelStyle.Render("What kind of workspace is this?") + "\n\n")
	for i, label := range []string{"Freelancer", "Company"} {
		if i == m.cursor {
			b.WriteString(ui.ListSelectedStyle.Render(label) + "\n")
		} else {
			b.WriteString(ui.ListItemStyle.Render(label) + "\n")
		}
	}
	return b.String()
}

func (m *Model) viewWizardConfirmation(s workspace.Wizard) string {
	var b strings.Builder
	b.WriteString(ui.FormLabelStyle.Render("Registry matches for ") +
		ui.FormValueStyle.Render(s.CompanyName.Raw) + "\n\n")
	for i, match := range s.Confirmation.Matches {
		line := match.Name + "  " + ui.ListMetaStyle.Render(match.VatNumber)
		if match.Address.City != "" {
			line += ui.ListMetaStyle.Render(" · " + match.Address.City)
		}
		if i == m.cursor {
			b.WriteString(ui.ListSelectedStyle.Render(line) + "\n")
		} else {
			b.WriteString(ui.ListItemStyle.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + ui.FormHintStyle.Render("m enters details manually"))
	return b.String()
}

func (m *Model) viewReview() string {
	title := ui.PanelTitleStyle.Render("Review queue")

	switch s := m.reviewC.State().(type) {
	case review.Loading:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Loading documents...")

	case review.Ready:
		if len(s.Documents) == 0 {
			return title + "\n\n" + ui.FormHintStyle.Render("Nothing to review")
		}
		var b strings.Builder
		b.WriteString(title + "\n\n")
		for i, doc := range s.Documents {
			line := ui.TruncateStyled(m.renderDocumentLine(doc, doc.ID == s.Deciding), max(m.width-6, 20))
			if i == m.cursor {
				b.WriteString(ui.ListSelectedStyle.Render(line) + "\n")
			} else {
				b.WriteString(ui.ListItemStyle.Render(line) + "\n")
			}
		}
		if s.FieldError != "" {
			b.WriteString("\n" + ui.FormErrorStyle.Render(s.FieldError))
		}
		if m.rejectMode {
			b.WriteString("\n" + ui.FormLabelStyle.Render("Rejection note ") + m.noteInput.View())
		} else if doc, ok := m.selectedDocument(); ok && len(doc.Raw) > 0 {
			b.WriteString("\n" + ui.RenderJSON(doc.Raw))
		}
		return b.String()

	case review.Errored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

func (m *Model) renderDocumentLine(doc api.Document, deciding bool) string {
	amount := formatAmount(doc.AmountCents, doc.Currency)
	if doc.Kind == "receipt" {
		amount = ui.AmountCreditStyle.Render(amount)
	} else {
		amount = ui.AmountDebitStyle.Render(amount)
	}
	line := fmt.Sprintf("%-12s %-24s %s  %s",
		doc.Number, ui.Truncate(doc.Counterparty, 24), amount,
		ui.ListMetaStyle.Render(doc.IssuedAt.Format("2006-01-02")))
	if deciding {
		line += "  " + ui.StatusLoadingStyle.Render("deciding...")
	}
	return line
}

func (m *Model) viewProfile() string {
	title := ui.PanelTitleStyle.Render("Profile")

	var b strings.Builder
	b.WriteString(title + "\n\n")

	switch s := m.profileC.State().(type) {
	case profile.Loading:
		b.WriteString(ui.StatusLoadingStyle.Render("Loading account...") + "\n")
	case profile.Ready:
		b.WriteString(ui.FormLabelStyle.Render("Email  ") + ui.FormValueStyle.Render(s.User.Email))
		if s.User.EmailVerified {
			b.WriteString("  " + ui.StatusSuccessStyle.Render("verified"))
		} else {
			b.WriteString("  " + ui.FormHintStyle.Render("unverified, ctrl+v re-sends the mail"))
		}
		b.WriteString("\n\n")
		b.WriteString(m.renderFormField(0))
		b.WriteString(m.renderFormField(1))
		if s.FieldError != "" {
			b.WriteString(ui.FormErrorStyle.Render(s.FieldError) + "\n")
		}
		if s.Notice != "" {
			b.WriteString(ui.FormNoticeStyle.Render(s.Notice) + "\n")
		}
	case profile.Saving:
		b.WriteString(ui.StatusLoadingStyle.Render("Saving profile...") + "\n")
	case profile.Errored:
		b.WriteString(m.renderError(s.Cause) + "\n")
	}

	b.WriteString("\n" + ui.PanelTitleStyle.Render("Change password") + "\n\n")
	switch s := m.passwordC.State().(type) {
	case profile.PasswordIdle:
		b.WriteString(m.renderFormField(2))
		b.WriteString(m.renderFormField(3))
		b.WriteString(m.renderFormField(4))
		if s.FieldError != "" {
			b.WriteString(ui.FormErrorStyle.Render(s.FieldError) + "\n")
		}
	case profile.PasswordSubmitting:
		b.WriteString(ui.StatusLoadingStyle.Render("Updating password...") + "\n")
	case profile.PasswordErrored:
		b.WriteString(m.renderError(s.Cause) + "\n")
	}
	return b.String()
}

func (m *Model) viewSessions() string {
	title := ui.PanelTitleStyle.Render("Active sessions")

	switch s := m.sessionsC.State().(type) {
	case sessions.Loading:
		return title + "\n\n" + ui.StatusLoadingStyle.Render("Loading sessions...")

	case sessions.Ready:
		var b strings.Builder
		b.WriteString(title + "\n\n")
		for i, sess := range s.Sessions {
			line := fmt.Sprintf("%-28s %s", ui.Truncate(sess.Device, 28),
				ui.ListMetaStyle.Render(sess.LastActive.Format("2006-01-02 15:04")))
			if sess.Current {
				line += "  " + ui.StatusSuccessStyle.Render("this device")
			}
			if sess.ID == s.Revoking {
				line += "  " + ui.StatusLoadingStyle.Render("revoking...")
			}
			line = ui.TruncateStyled(line, max(m.width-6, 20))
			if i == m.cursor {
				b.WriteString(ui.ListSelectedStyle.Render(line) + "\n")
			} else {
				b.WriteString(ui.ListItemStyle.Render(line) + "\n")
			}
		}
		return b.String()

	case sessions.Errored:
		return title + "\n\n" + m.renderError(s.Cause)
	}
	return title
}

// =============================================================================
// Shared rendering
// =============================================================================

// renderForm renders every form field with a trailing error line.
func (m *Model) renderForm(fieldError string) string {
	var b strings.Builder
	for i := range m.form.inputs {
		b.WriteString(m.renderFormField(i))
	}
	if fieldError != "" {
		b.WriteString(ui.FormErrorStyle.Render(fieldError) + "\n")
	}
	return b.String()
}

func (m *Model) renderFormField(i int) string {
	label := ui.PadRight(m.form.labels[i], 18)
	if i == m.form.Focused() {
		label = ui.FormValueStyle.Bold(true).Render(label)
	} else {
		label = ui.FormLabelStyle.Render(label)
	}
	return label + m.form.inputs[i].View() + "\n"
}

func (m *Model) renderError(cause error) string {
	return ui.StatusErrorStyle.Render(errors.UserMessage(cause)) + "\n" +
		ui.FormHintStyle.Render("enter retries")
}

// bindings returns the footer keybindings for the active screen.
func (m *Model) bindings() []ui.KeyBinding {
	switch m.screen {
	case ScreenServerConn:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "connect"},
			{Key: "ctrl+l", Desc: "use cloud"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case ScreenLogin:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "sign in"},
			{Key: "ctrl+n", Desc: "create account"},
			{Key: "ctrl+p", Desc: "forgot password"},
			{Key: "esc", Desc: "server"},
		}
	case ScreenRegister, ScreenForgotPassword, ScreenResetPassword:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "submit"},
			{Key: "esc", Desc: "back"},
		}
	case ScreenWorkspaceSelect:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "open"},
			{Key: "n", Desc: "new workspace"},
			{Key: "ctrl+r", Desc: "refresh"},
		}
	case ScreenWorkspaceWizard:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "next"},
			{Key: "esc", Desc: "back"},
		}
	case ScreenReview:
		if m.rejectMode {
			return []ui.KeyBinding{
				{Key: "enter", Desc: "reject"},
				{Key: "esc", Desc: "cancel"},
			}
		}
		return []ui.KeyBinding{
			{Key: "a", Desc: "approve"},
			{Key: "r", Desc: "reject"},
			{Key: "ctrl+y", Desc: "copy json"},
			{Key: "ctrl+t", Desc: "settings"},
			{Key: "p", Desc: "profile"},
			{Key: "s", Desc: "sessions"},
			{Key: "w", Desc: "workspaces"},
		}
	case ScreenProfile:
		return []ui.KeyBinding{
			{Key: "enter", Desc: "save"},
			{Key: "ctrl+v", Desc: "verify email"},
			{Key: "esc", Desc: "back"},
		}
	case ScreenSessions:
		return []ui.KeyBinding{
			{Key: "x", Desc: "revoke"},
			{Key: "o", Desc: "revoke others"},
			{Key: "esc", Desc: "back"},
		}
	}
	return nil
}

// formatAmount renders cents as a decimal amount with its currency code.
func formatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}
