package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
)

// MinPasswordLength is the shortest password accepted by ChangePassword.
const MinPasswordLength = 4

// Initialize restores a stored session and loads startup collections.
// Popular anime are always loaded.
func (r *Reconciler) Initialize(ctx context.Context) {
	r.Restore(ctx)
	r.LoadPopular(ctx)
}

// Restore marks the session active when a token is stored, then loads identity
// and dependent collections. It reports whether a session is active afterwards.
func (r *Reconciler) Restore(ctx context.Context) bool {
	token, err := r.tokens.Token()
	if err != nil {
		r.logger.Warn("failed to read stored credential", "error", err)
	}
	if token == "" {
		return false
	}

	r.update(func(s *State) { s.LoggedIn = true })
	if !r.loadUser(ctx) {
		return false
	}
	r.Refresh(ctx)
	return r.loggedIn()
}

// Login exchanges credentials for a session. Any failure yields [shared.ErrLoginFailed].
func (r *Reconciler) Login(ctx context.Context, email, password string) error {
	token, err := r.backend.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		r.logger.Error("login failed", "email", email, "error", err)
		return shared.ErrLoginFailed
	}

	if err := r.tokens.SaveToken(token); err != nil {
		r.logger.Error("failed to persist credential", "error", err)
		return shared.ErrLoginFailed
	}

	r.update(func(s *State) {
		s.LoggedIn = true
		s.LoginPrompt = false
	})
	r.logger.Info("logged in", "email", email)

	if r.loadUser(ctx) {
		r.Refresh(ctx)
	}
	return nil
}

// Register creates an account. Any failure yields [shared.ErrRegisterFailed].
func (r *Reconciler) Register(ctx context.Context, email, password string) error {
	if _, err := r.backend.Register(ctx, strings.TrimSpace(email), password); err != nil {
		r.logger.Error("registration failed", "email", email, "error", err)
		return shared.ErrRegisterFailed
	}

	r.logger.Info("registered", "email", email)
	return nil
}

// Logout ends the session locally. It makes no network call.
func (r *Reconciler) Logout() {
	r.endSession(false)
	r.logger.Info("logged out")
}

// ChangePassword updates the signed-in user's password.
func (r *Reconciler) ChangePassword(ctx context.Context, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		msg := fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
		r.setNotice(msg)
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, msg)
	}
	if !r.requireSession() {
		return shared.ErrNotAuthenticated
	}

	if _, err := r.backend.UpdatePassword(ctx, newPassword); err != nil {
		return r.mutationFailed("change password", err, shared.ErrAccountFailed, "Failed to change password.")
	}

	r.logger.Info("password changed")
	return nil
}

// DeleteAccount deletes the signed-in account and then logs out.
func (r *Reconciler) DeleteAccount(ctx context.Context) error {
	if !r.requireSession() {
		return shared.ErrNotAuthenticated
	}

	if err := r.backend.DeleteAccount(ctx); err != nil {
		return r.mutationFailed("delete account", err, shared.ErrAccountFailed, "Failed to delete account.")
	}

	r.logger.Info("account deleted")
	r.Logout()
	return nil
}

// loadUser fetches the identity. It returns false when a 401 ended the session.
func (r *Reconciler) loadUser(ctx context.Context) bool {
	user, err := r.backend.Me(ctx)
	if err != nil {
		if services.IsUnauthorized(err) {
			r.logger.Warn("stored session rejected", "error", err)
			r.endSession(false)
			return false
		}
		r.logger.Error("failed to load user", "error", err)
		return true
	}

	r.update(func(s *State) { s.User = user })
	return true
}

// requireSession raises the login prompt when signed out.
func (r *Reconciler) requireSession() bool {
	if r.loggedIn() {
		return true
	}
	r.RequestLoginPrompt()
	return false
}

// endSession clears the credential and every session-scoped collection.
func (r *Reconciler) endSession(prompt bool) {
	if err := r.tokens.ClearToken(); err != nil {
		r.logger.Error("failed to clear stored credential", "error", err)
	}

	r.update(func(s *State) {
		s.LoggedIn = false
		s.User = nil
		s.Favorites = []models.Favorite{}
		s.Recommendations = []models.Anime{}
		s.View = ViewHome
		if prompt {
			s.LoginPrompt = true
		}
	})
	r.emit(Event{Kind: EventSessionEnded})
	if prompt {
		r.emit(Event{Kind: EventLoginPrompt})
	}
}

// mutationFailed applies the failure policy for user-initiated writes.
//
// A 401 ends the session and raises the login prompt. Anything else becomes a
// visible notice carrying the backend's detail, or fallback when there is none.
func (r *Reconciler) mutationFailed(op string, err error, sentinel error, fallback string) error {
	r.logger.Error(op+" failed", "error", err)

	if services.IsUnauthorized(err) {
		r.endSession(true)
		return fmt.Errorf("%s: %w", op, shared.ErrUnauthorized)
	}

	msg := services.Detail(err)
	if msg == "" {
		msg = fallback
	}
	r.setNotice(msg)
	return fmt.Errorf("%w: %s", sentinel, msg)
}
