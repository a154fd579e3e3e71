package session

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/jonathan/note-harvester/internal/schemas"
	"github.com/jonathan/note-harvester/internal/types"
)

// LoadCredentials reads and validates a credential file.
func LoadCredentials(path string) (types.CredentialSet, error) {
	if path == "" {
		return nil, &CredentialLoadError{Path: path, Message: "credential path is empty"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		msg := "failed to read credential file"
		if errors.Is(err, os.ErrNotExist) {
			msg = "credential file not found"
		}
		return nil, &CredentialLoadError{Path: path, Message: msg, Cause: err}
	}

	if err := schemas.Validate(schemas.Credentials, data); err != nil {
		return nil, &CredentialLoadError{Path: path, Message: "credential file is not a valid cookie list", Cause: err}
	}

	var creds types.CredentialSet
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &CredentialLoadError{Path: path, Message: "failed to parse credential JSON", Cause: err}
	}
	return creds, nil
}

// Sanitize returns an injectable copy of c: the leading-dot wildcard marker
// is stripped from the domain and fields a browsing context refuses are cleared. c is not modified.
func Sanitize(c types.Cookie) types.Cookie {
	out := c
	out.Domain = strings.TrimLeft(c.Domain, ".")
	out.SameSite = ""
	out.StoreID = ""
	out.HostOnly = nil
	out.Session = nil
	out.ID = nil
	return out
}

// SanitizeAll applies Sanitize to every cookie and returns a new set.
func SanitizeAll(creds types.CredentialSet) types.CredentialSet {
	out := make(types.CredentialSet, len(creds))
	for i, c := range creds {
		out[i] = Sanitize(c)
	}
	return out
}
