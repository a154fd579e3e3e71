// Package session establishes an authenticated browsing context from a
// persisted credential set.
package session

import "fmt"

// CredentialLoadError represents a missing, unreadable or malformed credential file
type CredentialLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CredentialLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("credential load error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("credential load error (%s): %s", e.Path, e.Message)
}

func (e *CredentialLoadError) Unwrap() error {
	return e.Cause
}

// AuthVerificationError means the injected credentials did not produce a
// logged-in session. Credentials must be refreshed by hand.
type AuthVerificationError struct {
	URL     string
	Message string
	Cause   error
}

func (e *AuthVerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth verification failed at %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("auth verification failed at %s: %s", e.URL, e.Message)
}

func (e *AuthVerificationError) Unwrap() error {
	return e.Cause
}
