package errors

import (
	"errors"
	"fmt"
)

// Common error types for the summarizer portal
var (
	// Input errors
	ErrEmptyInput = errors.New("input text is required")

	// Authorization flow errors
	ErrStateMismatch      = errors.New("state parameter mismatch")
	ErrMissingCallbackArg = errors.New("missing code or state parameter")
	ErrNoAuthRequest      = errors.New("no authorization request in flight")

	// Session errors
	ErrNotAuthenticated = errors.New("session is not authenticated")
	ErrSessionNotFound  = errors.New("session not found")
)

// ProviderError is returned when the identity provider redirects back with an
// error code instead of an authorization code.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("provider returned error %q", e.Code)
	}
	return fmt.Sprintf("provider returned error %q: %s", e.Code, e.Description)
}

// TokenExchangeError is returned when the token endpoint rejects the
// authorization code or cannot be reached. The provider's error description is
// carried along when the provider supplied one.
type TokenExchangeError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *TokenExchangeError) Error() string {
	switch {
	case e.Description != "":
		return fmt.Sprintf("token exchange failed: %s", e.Description)
	case e.Code != "":
		return fmt.Sprintf("token exchange failed: %s", e.Code)
	case e.Err != nil:
		return fmt.Sprintf("token exchange failed: %s", e.Err)
	default:
		return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
	}
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// IdentityDecodeError is returned by a verifying identity extractor when the
// identity token fails verification. The unverified extractor never returns
// it; it degrades to a placeholder identity instead.
type IdentityDecodeError struct {
	Err error
}

func (e *IdentityDecodeError) Error() string {
	return fmt.Sprintf("identity token rejected: %s", e.Err)
}

func (e *IdentityDecodeError) Unwrap() error { return e.Err }

// InvocationError is returned when the model-serving invocation fails or
// times out. The pending action has already been discarded by the time the
// caller sees this error; the user must resubmit.
type InvocationError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *InvocationError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("invocation failed: %s", e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("invocation failed: %s", e.Err)
	default:
		return fmt.Sprintf("invocation failed with status %d", e.StatusCode)
	}
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
