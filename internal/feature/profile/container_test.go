package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeAccounts struct {
	mu          sync.Mutex
	user        api.User
	userErr     error
	updateCalls []api.ProfileUpdate
	updateErr   error
	sendCalls   int
	verifyCalls []string
	verifyErr   error
	changeCalls [][2]string
	changeErr   error
}

func (f *fakeAccounts) CurrentUser(ctx context.Context) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.userErr
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, update)
	if f.updateErr != nil {
		return api.User{}, f.updateErr
	}
	u := f.user
	u.DisplayName = update.DisplayName
	u.Language = update.Language
	return u, nil
}

func (f *fakeAccounts) SendVerificationEmail(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	return nil
}

func (f *fakeAccounts) VerifyEmail(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls = append(f.verifyCalls, code)
	return f.verifyErr
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, current, updated string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeCalls = append(f.changeCalls, [2]string{current, updated})
	return f.changeErr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newReady(t *testing.T, f *fakeAccounts) *Container {
	t.Helper()
	c := NewContainer(f)
	t.Cleanup(c.Close)
	waitFor(t, func() bool {
		_, ok := c.State().(Ready)
		return ok
	})
	return c
}

func TestSaveUpdatesProfileAndEmits(t *testing.T) {
	f := &fakeAccounts{user: api.User{ID: "u1", DisplayName: "Jo", Language: "en"}}
	c := newReady(t, f)

	c.Dispatch(UpdateDisplayName{Value: "Joanna"})
	c.Dispatch(UpdateLanguage{Value: "nl"})
	c.Dispatch(Save{})

	select {
	case a := <-c.Actions():
		saved, ok := a.(Saved)
		if !ok || saved.User.DisplayName != "Joanna" {
			t.Fatalf("expected Saved with new name, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updateCalls) != 1 || f.updateCalls[0].Language != "nl" {
		t.Errorf("unexpected update calls: %+v", f.updateCalls)
	}
}

func TestBlankNameStaysLocal(t *testing.T) {
	f := &fakeAccounts{user: api.User{DisplayName: "Jo"}}
	c := newReady(t, f)

	c.Dispatch(UpdateDisplayName{Value: "  "})
	c.Dispatch(Save{})

	waitFor(t, func() bool {
		r, ok := c.State().(Ready)
		return ok && r.FieldError != ""
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updateCalls) != 0 {
		t.Error("invalid name must not reach the server")
	}
}

func TestSaveFailureRetriesSameUpdate(t *testing.T) {
	f := &fakeAccounts{
		user:      api.User{DisplayName: "Jo"},
		updateErr: errors.E(errors.Op("api.UpdateProfile"), errors.KindNetwork, context.DeadlineExceeded),
	}
	c := newReady(t, f)

	c.Dispatch(UpdateDisplayName{Value: "Joanna"})
	c.Dispatch(Save{})
	waitFor(t, func() bool {
		_, ok := c.State().(Errored)
		return ok
	})

	f.mu.Lock()
	f.updateErr = nil
	f.mu.Unlock()

	c.Dispatch(Retry{})
	waitFor(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.updateCalls) == 2
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateCalls[0] != f.updateCalls[1] {
		t.Errorf("retry did not replay the captured update: %+v", f.updateCalls)
	}
}

func TestSendVerificationSetsNotice(t *testing.T) {
	f := &fakeAccounts{user: api.User{DisplayName: "Jo"}}
	c := newReady(t, f)

	c.Dispatch(SendVerification{})
	waitFor(t, func() bool {
		r, ok := c.State().(Ready)
		return ok && r.Notice == "Verification email sent."
	})
}

func TestVerifyCodeEmitsEmailVerified(t *testing.T) {
	f := &fakeAccounts{user: api.User{DisplayName: "Jo"}}
	c := newReady(t, f)

	c.Dispatch(SubmitVerificationCode{Code: "424242"})
	select {
	case a := <-c.Actions():
		if _, ok := a.(EmailVerified); !ok {
			t.Fatalf("expected EmailVerified, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}
}

func TestChangePasswordMismatchIsDistinct(t *testing.T) {
	f := &fakeAccounts{}
	c := NewPasswordContainer(f)
	defer c.Close()

	c.Dispatch(UpdateCurrentPassword{Value: "OldSecret1"})
	c.Dispatch(UpdateNewPassword{Value: "NewSecret1"})
	c.Dispatch(UpdatePasswordConfirmation{Value: "NewSecret2"})
	c.Dispatch(SubmitPassword{})

	waitFor(t, func() bool {
		idle, ok := c.State().(PasswordIdle)
		return ok && idle.FieldError == "Passwords do not match."
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.changeCalls) != 0 {
		t.Error("mismatch must not reach the server")
	}
}

func TestChangePasswordSuccessResetsForm(t *testing.T) {
	f := &fakeAccounts{}
	c := NewPasswordContainer(f)
	defer c.Close()

	c.Dispatch(UpdateCurrentPassword{Value: "OldSecret1"})
	c.Dispatch(UpdateNewPassword{Value: "NewSecret1"})
	c.Dispatch(UpdatePasswordConfirmation{Value: "NewSecret1"})
	c.Dispatch(SubmitPassword{})

	select {
	case a := <-c.Actions():
		if _, ok := a.(PasswordUpdated); !ok {
			t.Fatalf("expected PasswordUpdated, got %#v", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no action emitted")
	}

	waitFor(t, func() bool {
		idle, ok := c.State().(PasswordIdle)
		return ok && idle.Current == "" && idle.New.Raw == ""
	})
}

func TestChangePasswordWrongCurrentBecomesErrored(t *testing.T) {
	f := &fakeAccounts{changeErr: errors.E(errors.Op("api.ChangePassword"), errors.KindAuth, "Current password is incorrect.")}
	c := NewPasswordContainer(f)
	defer c.Close()

	c.Dispatch(UpdateCurrentPassword{Value: "Wrong1234"})
	c.Dispatch(UpdateNewPassword{Value: "NewSecret1"})
	c.Dispatch(UpdatePasswordConfirmation{Value: "NewSecret1"})
	c.Dispatch(SubmitPassword{})

	waitFor(t, func() bool {
		_, ok := c.State().(PasswordErrored)
		return ok
	})

	f.mu.Lock()
	f.changeErr = nil
	f.mu.Unlock()

	c.Dispatch(RetryPassword{})
	waitFor(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.changeCalls) == 2
	})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changeCalls[0] != f.changeCalls[1] {
		t.Error("retry did not replay the captured change request")
	}
}
