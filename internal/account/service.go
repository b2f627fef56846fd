// Package account wraps the account-related server operations and keeps
// the locally persisted credentials in sync with them.
package account

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Service orchestrates authentication and account management.
type Service struct {
	client *api.Client
	cfg    *config.Config
}

// NewService creates an account service bound to the given client and
// local config.
func NewService(client *api.Client, cfg *config.Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// Login authenticates and persists the resulting credentials.
func (s *Service) Login(ctx context.Context, email, password string) (api.User, error) {
	sess, err := s.client.Login(ctx, email, password)
	if err != nil {
		return api.User{}, err
	}
	s.adopt(sess)
	logger.Component("account").Info("signed in", "email", sess.User.Email)
	return sess.User, nil
}

// Register creates an account and persists the resulting credentials.
func (s *Service) Register(ctx context.Context, name, email, password string) (api.User, error) {
	sess, err := s.client.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return api.User{}, err
	}
	s.adopt(sess)
	logger.Component("account").Info("account created", "email", sess.User.Email)
	return sess.User, nil
}

func (s *Service) adopt(sess api.AuthSession) {
	s.client.SetToken(sess.Token)
	s.cfg.SetCredentials(sess.Token, sess.User.Email)
	if err := s.cfg.Save(); err != nil {
		logger.Warn("account: could not persist credentials: %v", err)
	}
}

// SignOut clears the locally persisted credentials.
func (s *Service) SignOut() {
	s.client.SetToken("")
	s.cfg.Clear()
	if err := s.cfg.Save(); err != nil {
		logger.Warn("account: could not persist sign-out: %v", err)
	}
}

// RequestPasswordReset asks the server to mail a reset code.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.client.RequestPasswordReset(ctx, email)
}

// ResetPassword sets a new password using a mailed reset code.
func (s *Service) ResetPassword(ctx context.Context, code, password string) error {
	return s.client.ResetPassword(ctx, code, password)
}

// ChangePassword changes the signed-in user's password.
func (s *Service) ChangePassword(ctx context.Context, current, updated string) error {
	return s.client.ChangePassword(ctx, current, updated)
}

// SendVerificationEmail re-sends the verification mail.
func (s *Service) SendVerificationEmail(ctx context.Context) error {
	return s.client.SendVerificationEmail(ctx)
}

// VerifyEmail confirms the account email with a mailed code.
func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	return s.client.VerifyEmail(ctx, code)
}

// CurrentUser fetches the signed-in account.
func (s *Service) CurrentUser(ctx context.Context) (api.User, error) {
	return s.client.CurrentUser(ctx)
}

// UpdateProfile updates mutable account fields.
func (s *Service) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error) {
	return s.client.UpdateProfile(ctx, update)
}

// Sessions lists the device sessions holding valid tokens.
func (s *Service) Sessions(ctx context.Context) ([]api.Session, error) {
	return s.client.Sessions(ctx)
}

// RevokeSession invalidates one device session.
func (s *Service) RevokeSession(ctx context.Context, id string) error {
	return s.client.RevokeSession(ctx, id)
}

// RevokeOtherSessions invalidates every session except the current one.
func (s *Service) RevokeOtherSessions(ctx context.Context) error {
	return s.client.RevokeOtherSessions(ctx)
}
