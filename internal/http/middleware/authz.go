package middleware

import (
	"fmt"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// Route groups. Fine-grained role rules (which status a role may pick, who may
// assign) stay in the services; this table only fences whole route families.
const (
	groupViewer   = "viewer"
	groupOperator = "operator"
)

var rbacPolicies = [][]string{
	{groupViewer, "/shipments/*", "^GET$"},
	{groupViewer, "/notifications", "^(GET|DELETE)$"},
	{groupViewer, "/notifications/*", "^POST$"},
	{groupOperator, "/shipments/*", "^POST$"},
	{string(domain.RoleAdmin), "/deactivations/*", "^(GET|PUT|DELETE)$"},
	{string(domain.RoleAdmin), "/events", "^POST$"},
	{string(domain.RoleSeller), "/events", "^POST$"},
}

var rbacGroups = [][]string{
	{string(domain.RoleSeller), groupViewer},
	{string(domain.RoleAgent), groupViewer},
	{string(domain.RoleAgent), groupOperator},
	{string(domain.RoleAdmin), groupViewer},
	{string(domain.RoleAdmin), groupOperator},
	{string(domain.RoleSuperAdmin), string(domain.RoleAdmin)},
}

// Authorizer enforces the route RBAC table by the viewer's role.
type Authorizer struct {
	enf    *casbin.Enforcer
	logger logx.Logger
}

// NewAuthorizer builds the enforcer from the in-code model and policies.
func NewAuthorizer(logger logx.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = logx.Nop()
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	if _, err := enf.AddGroupingPolicies(rbacGroups); err != nil {
		return nil, fmt.Errorf("rbac groups: %w", err)
	}
	if _, err := enf.AddPolicies(rbacPolicies); err != nil {
		return nil, fmt.Errorf("rbac policies: %w", err)
	}
	return &Authorizer{enf: enf, logger: logger}, nil
}

// Allowed reports whether role may call method on path.
func (a *Authorizer) Allowed(role domain.Role, path, method string) (bool, error) {
	return a.enf.Enforce(string(role), path, method)
}

// Handler returns chi-style middleware; it must run after Authenticator.
func (a *Authorizer) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, ok := ViewerFrom(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			allowed, err := a.Allowed(viewer.Role, r.URL.Path, r.Method)
			if err != nil {
				a.logger.Error("rbac enforce failed", logx.Err(err))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !allowed {
				a.logger.Warn("rbac denied",
					logx.String("viewer", viewer.Key()),
					logx.String("method", r.Method),
					logx.String("path", r.URL.Path),
				)
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
