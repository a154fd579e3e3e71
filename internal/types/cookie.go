// Package types provides type definitions for structured data used throughout the note-harvester system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Cookie is one record of a persisted credential set, in the shape exported
// by browser cookie-editor extensions. Only Name, Value and Domain are required.
type Cookie struct {
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Domain         string   `json:"domain"`
	Path           string   `json:"path,omitempty"`
	Secure         bool     `json:"secure,omitempty"`
	HTTPOnly       bool     `json:"httpOnly,omitempty"`
	ExpirationDate *float64 `json:"expirationDate,omitempty"` // Unix seconds

	// Fields below are carried by exports but cannot be injected into a
	// browsing context; sanitization clears them.
	SameSite string `json:"sameSite,omitempty"`
	StoreID  string `json:"storeId,omitempty"`
	HostOnly *bool  `json:"hostOnly,omitempty"`
	Session  *bool  `json:"session,omitempty"`
	ID       *int   `json:"id,omitempty"`
}

// CredentialSet is the ordered collection of cookies loaded for a run.
type CredentialSet []Cookie
