package models

import (
	"errors"
	"strings"
)

// ErrMissingTenant is returned when a tenant is built from an empty center id.
var ErrMissingTenant = errors.New("center id is required")

// Tenant scopes every query to a single center. The zero value is invalid;
// build one with NewTenant.
type Tenant struct {
	centerID string
}

// NewTenant validates the center id and returns its scope.
func NewTenant(centerID string) (Tenant, error) {
	centerID = strings.TrimSpace(centerID)
	if centerID == "" {
		return Tenant{}, ErrMissingTenant
	}
	return Tenant{centerID: centerID}, nil
}

// CenterID returns the scoped center identifier.
func (t Tenant) CenterID() string {
	return t.centerID
}

// Valid reports whether the tenant was built through NewTenant.
func (t Tenant) Valid() bool {
	return t.centerID != ""
}
