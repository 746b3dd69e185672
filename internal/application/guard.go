package application

import (
	"errors"
	"path"
	"strings"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// LoginPath is where anonymous users are sent when they target a protected route.
const LoginPath = "/login"

// maxRedirects bounds redirect chains in a route table.
const maxRedirects = 8

// ErrLoginRequired is returned by Guard.Require for protected routes while
// the session is anonymous.
var ErrLoginRequired = errors.New("login required")

// AuthState reports whether the session is authenticated.
type AuthState interface {
	IsAuthenticated() bool
}

// ResolvedRoute is a route table entry with its absolute path and the
// authentication requirement inherited from its ancestors.
type ResolvedRoute struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []model.Route {
	return []model.Route{
		{Path: "/", Name: "Towers"},
		{Path: "/providers", Name: "Providers"},
		{Path: LoginPath, Name: "Login"},
		{
			Path:         "/admin",
			Name:         "Admin",
			RequiresAuth: true,
			Children: []model.Route{
				{Path: "", Redirect: "/admin/towers"},
				{Path: "towers", Name: "AdminTowers"},
				{Path: "providers", Name: "AdminProviders"},
				{Path: "blankspots", Name: "AdminBlankspots"},
				{Path: "settings", Name: "AdminSettings"},
				{Path: "timeline", Name: "AdminTimeline"},
			},
		},
	}
}

// Guard decides whether a navigation target is admitted for the current
// session. It holds no state besides the flattened route table.
type Guard struct {
	routes  map[string]ResolvedRoute
	session AuthState
}

// NewGuard flattens routes and binds them to session.
func NewGuard(routes []model.Route, session AuthState) *Guard {
	g := &Guard{routes: make(map[string]ResolvedRoute), session: session}
	g.flatten("", false, routes)
	return g
}

func (g *Guard) flatten(parent string, inherited bool, routes []model.Route) {
	for _, r := range routes {
		full := r.Path
		if !strings.HasPrefix(full, "/") {
			full = path.Join("/", parent, r.Path)
		}
		full = normalizePath(full)
		requires := inherited || r.RequiresAuth

		// A child with an empty path shares its parent's path; the first
		// registration of a path keeps its name, a later one may add a redirect.
		entry, exists := g.routes[full]
		if !exists {
			entry = ResolvedRoute{Path: full, Name: r.Name}
		}
		entry.RequiresAuth = entry.RequiresAuth || requires
		if r.Redirect != "" {
			entry.Redirect = normalizePath(r.Redirect)
		}
		g.routes[full] = entry

		g.flatten(full, requires, r.Children)
	}
}

// Lookup returns the route registered for p.
func (g *Guard) Lookup(p string) (ResolvedRoute, bool) {
	r, ok := g.routes[normalizePath(p)]
	return r, ok
}

// Resolve returns the path navigation to p ends at: p itself, the target of
// its redirect, or LoginPath when the destination requires authentication
// and the session is anonymous. Unknown paths are returned unchanged.
func (g *Guard) Resolve(p string) string {
	target := normalizePath(p)

	r, ok := g.routes[target]
	for i := 0; ok && r.Redirect != "" && i < maxRedirects; i++ {
		target = r.Redirect
		r, ok = g.routes[target]
	}
	if !ok {
		return target
	}

	if r.RequiresAuth && (g.session == nil || !g.session.IsAuthenticated()) {
		return LoginPath
	}
	return target
}

// Require returns ErrLoginRequired if navigating to p would be redirected to
// the login route.
func (g *Guard) Require(p string) error {
	if normalizePath(p) != LoginPath && g.Resolve(p) == LoginPath {
		return ErrLoginRequired
	}
	return nil
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
