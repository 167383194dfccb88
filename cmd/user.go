package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/anirec/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserRegister creates an account. It does not sign in.
func (r *Runner) UserRegister(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentialsFrom(cmd)
	if err != nil {
		return err
	}

	if err := r.rec.Register(ctx, email, password); err != nil {
		return err
	}

	r.writePlain("✓ Registered %s\n", email)
	r.writePlain("Run 'anirec user login --email %s' to sign in.\n", email)
	return nil
}

// UserLogin signs in and stores the session token.
func (r *Runner) UserLogin(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentialsFrom(cmd)
	if err != nil {
		return err
	}

	if err := r.rec.Login(ctx, email, password); err != nil {
		return err
	}

	state := r.rec.Snapshot()
	if state.User != nil {
		email = state.User.Email
	}
	r.writePlain("✓ Logged in as %s\n", email)
	r.writePlain("Favorites: %d, personal recommendations: %d\n", len(state.Favorites), len(state.Recommendations))
	return nil
}

// UserLogout clears the stored token.
func (r *Runner) UserLogout(ctx context.Context, cmd *cli.Command) error {
	r.rec.Logout()
	return r.writePlain("✓ Logged out\n")
}

// UserMe prints the signed-in account.
func (r *Runner) UserMe(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	state := r.rec.Snapshot()
	if state.User == nil {
		return fmt.Errorf("%w: account details unavailable", shared.ErrAPIRequest)
	}

	if cmd.Bool("json") {
		return r.writeJSON(state.User, true)
	}

	r.writePlainHeader("Account")
	r.writePlain("ID:        %d\n", state.User.ID)
	r.writePlain("Email:     %s\n", state.User.Email)
	r.writePlain("Active:    %t\n", state.User.IsActive)
	r.writePlain("Favorites: %d\n", len(state.Favorites))
	return nil
}

// UserStatus reports the stored token's claims. The backend is not contacted.
func (r *Runner) UserStatus(ctx context.Context, cmd *cli.Command) error {
	token, err := r.storedToken()
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if token == "" {
		return r.writePlain("Not logged in.\n")
	}

	claims, err := shared.ParseTokenClaims(token)
	if err != nil {
		r.logger.Warn("stored token is not a readable JWT", "error", err)
		return r.writePlain("Logged in (token claims unreadable).\n")
	}

	r.writePlain("Logged in")
	if claims.Subject != "" {
		r.writePlain(" as %s", claims.Subject)
	}
	r.writePlain("\n")

	switch {
	case claims.ExpiresAt.IsZero():
		r.writePlain("Token has no expiry.\n")
	case claims.Expired(time.Now()):
		r.writePlain("Token expired %s; sign in again.\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	default:
		r.writePlain("Token expires %s.\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// UserPassword changes the account password.
func (r *Runner) UserPassword(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("new")
	if password == "" {
		var err error
		if password, err = r.prompt("New password"); err != nil {
			return err
		}
	}

	if err := r.requireSession(ctx); err != nil {
		return err
	}
	if err := r.rec.ChangePassword(ctx, password); err != nil {
		return err
	}
	return r.writePlain("✓ Password changed\n")
}

// UserDelete deletes the account and ends the session.
func (r *Runner) UserDelete(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete the account", shared.ErrMissingArgument)
	}

	if err := r.requireSession(ctx); err != nil {
		return err
	}
	if err := r.rec.DeleteAccount(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Account deleted\n")
}

// UserFeedback rates personal or similar recommendations.
func (r *Runner) UserFeedback(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	kind := cmd.String("type")
	if err := r.rec.SubmitFeedback(ctx, kind, cmd.Bool("satisfied"), cmd.String("text")); err != nil {
		return err
	}
	return r.writePlain("✓ Feedback sent\n")
}

func (r *Runner) credentialsFrom(cmd *cli.Command) (email, password string, err error) {
	email = strings.TrimSpace(cmd.String("email"))
	if email == "" {
		return "", "", fmt.Errorf("%w: --email", shared.ErrMissingArgument)
	}

	password = cmd.String("password")
	if password == "" {
		if password, err = r.prompt("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}
