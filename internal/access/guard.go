// Package access decides whether a session may open a view.
package access

import (
	"strings"

	"github.com/kirinyoku/eventease/internal/domain"
)

const (
	PathLogin = "/login"
	PathHome  = "/"
)

// Decision is the outcome of evaluating one navigation.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision               { return Decision{Allow: true} }
func redirect(path string) Decision { return Decision{RedirectTo: path} }

// Evaluate is a pure function of the requested path, the level it
// requires and the current session (nil when signed out).
//
// A signed-out visitor is sent to the login view from any guarded path.
// A signed-in non-admin asking for an admin view is sent home. An access
// level Evaluate does not know is treated like a denied admin view.
func Evaluate(requestedPath string, required domain.Access, sess *domain.Session) Decision {
	switch required {
	case domain.AccessPublic:
		return allow()
	case domain.AccessAnyAuthenticated:
		if sess == nil {
			return redirect(PathLogin)
		}
		return allow()
	case domain.AccessAdminOnly:
		if sess == nil {
			return redirect(PathLogin)
		}
		if sess.IsAdmin() {
			return allow()
		}
		return redirect(PathHome)
	default:
		return redirect(PathHome)
	}
}

type route struct {
	segments []string
	prefix   bool
	access   domain.Access
}

// Table maps route patterns to the access level they require.
//
// Patterns are slash separated; a segment starting with ':' matches any
// single segment and a trailing "/*" matches the prefix itself and
// anything below it.
type Table struct {
	routes []route
}

func NewTable() *Table {
	return &Table{}
}

// Add registers pattern. The first matching pattern wins on Lookup.
func (t *Table) Add(pattern string, level domain.Access) *Table {
	r := route{access: level}

	if rest, ok := strings.CutSuffix(pattern, "/*"); ok {
		r.prefix = true
		pattern = rest
	}

	r.segments = split(pattern)
	t.routes = append(t.routes, r)

	return t
}

// Lookup returns the level required by path, or false when no pattern
// matches.
func (t *Table) Lookup(path string) (domain.Access, bool) {
	segs := split(path)

	for _, r := range t.routes {
		if r.match(segs) {
			return r.access, true
		}
	}

	return 0, false
}

// Check looks path up and evaluates it. Unknown paths redirect home.
func (t *Table) Check(path string, sess *domain.Session) Decision {
	level, ok := t.Lookup(path)
	if !ok {
		return redirect(PathHome)
	}

	return Evaluate(path, level, sess)
}

func (r route) match(segs []string) bool {
	if r.prefix {
		if len(segs) < len(r.segments) {
			return false
		}
	} else if len(segs) != len(r.segments) {
		return false
	}

	for i, want := range r.segments {
		if strings.HasPrefix(want, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if segs[i] != want {
			return false
		}
	}

	return true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

// DefaultTable is the route table of the web application.
func DefaultTable() *Table {
	return NewTable().
		Add("/login", domain.AccessPublic).
		Add("/register", domain.AccessPublic).
		Add("/about", domain.AccessPublic).
		Add("/healthz", domain.AccessPublic).
		Add("/swagger/*", domain.AccessPublic).
		Add("/", domain.AccessAnyAuthenticated).
		Add("/events", domain.AccessAnyAuthenticated).
		Add("/events/:id", domain.AccessAnyAuthenticated).
		Add("/dashboard", domain.AccessAnyAuthenticated).
		Add("/profile", domain.AccessAnyAuthenticated).
		Add("/profile/logout", domain.AccessAnyAuthenticated).
		Add("/payment/:id", domain.AccessAnyAuthenticated).
		Add("/admin/*", domain.AccessAdminOnly)
}
