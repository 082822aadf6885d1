// Package permissions holds the route table consulted by the auth and RBAC
// middleware. Routes are keyed by method and chi route pattern.
package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

type Endpoint struct {
	Method string   `json:"method"`
	Path   string   `json:"path"`
	Public bool     `json:"public"`
	Roles  []string `json:"roles"`
}

// Allows reports whether role may call the endpoint. An endpoint without roles
// is open to every authenticated caller.
func (e Endpoint) Allows(role string) bool {
	return len(e.Roles) == 0 || slices.Contains(e.Roles, role)
}

type PermissionData struct {
	Skip      bool       `json:"skip"`
	Endpoints []Endpoint `json:"endpoints"`

	index map[string]Endpoint
}

// Find returns the endpoint registered for the route pattern. Unknown routes
// yield a zero Endpoint: not public, no role restriction.
func (p *PermissionData) Find(pattern, method string) Endpoint {
	return p.index[method+" "+pattern]
}

func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData
	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	permissions.index = make(map[string]Endpoint, len(permissions.Endpoints))

	for _, endpoint := range permissions.Endpoints {
		key := endpoint.Method + " " + endpoint.Path
		if _, ok := permissions.index[key]; ok {
			return nil, fmt.Errorf("duplicate permission entry %s", key)
		}

		permissions.index[key] = endpoint
	}

	return &permissions, nil
}

// Get loads the embedded route table. A broken table is a build defect, so it is fatal.
func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return permissions
}
