package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. An empty role list means any
// authenticated caller may use the route.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Open reports whether the route needs no role check.
func (p Permission) Open() bool {
	return p.Skip || len(p.Permissions) == 0
}

// Allows reports whether role may use the route.
func (p Permission) Allows(role string) bool {
	return p.Open() || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	byRoute map[string]Permission
}

func routeKey(path, method string) string {
	return strings.ToUpper(method) + " " + path
}

func (r *PermissionData) index() {
	r.byRoute = make(map[string]Permission, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		key := routeKey(endpoint.Path, endpoint.Method)
		if _, ok := r.byRoute[key]; ok {
			log.Warn().Str("route", key).Msg("Duplicate permission entry, keeping the first")

			continue
		}

		r.byRoute[key] = endpoint
	}
}

// FindPermissions returns the entry for a chi route pattern, or the zero Permission.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	if r.byRoute != nil {
		return r.byRoute[routeKey(path, method)]
	}

	// tables built by hand skip Get and are never indexed
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && strings.EqualFold(rp.Method, method)
	})
	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

// Get decodes the embedded table. It returns nil when the table is malformed, which makes
// RBAC deny every guarded route.
func Get() *PermissionData {
	var permissions PermissionData

	if err := json.Unmarshal(permissionsData, &permissions); err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	permissions.index()

	log.Info().Int("endpoints", len(permissions.byRoute)).Msg("Loaded embedded permissions")

	return &permissions
}
