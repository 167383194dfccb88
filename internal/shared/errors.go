package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors.
	//
	// Login and registration failures are uniform: the backend's reason is logged, never relayed.
	ErrLoginFailed      = fmt.Errorf("login failed")
	ErrRegisterFailed   = fmt.Errorf("registration failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrUnauthorized     = fmt.Errorf("session expired or unauthorized")
	ErrInvalidToken     = fmt.Errorf("invalid token")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAnimeNotFound      = fmt.Errorf("anime not found")
	ErrFavoriteFailed     = fmt.Errorf("favorite update failed")
	ErrAccountFailed      = fmt.Errorf("account update failed")
	ErrFeedbackFailed     = fmt.Errorf("feedback submission failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
