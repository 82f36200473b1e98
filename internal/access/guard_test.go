package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/stretchr/testify/require"
)

func sessionWith(role domain.Role) *domain.Session {
	return &domain.Session{UserID: uuid.New(), Role: role, DisplayName: "x"}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	user := sessionWith(domain.RoleUser)
	admin := sessionWith(domain.RoleAdmin)

	tests := []struct {
		name     string
		path     string
		required domain.Access
		sess     *domain.Session
		want     Decision
	}{
		{"public signed out", "/login", domain.AccessPublic, nil, Decision{Allow: true}},
		{"public signed in", "/about", domain.AccessPublic, user, Decision{Allow: true}},
		{"authenticated signed out", "/dashboard", domain.AccessAnyAuthenticated, nil, Decision{RedirectTo: "/login"}},
		{"authenticated as user", "/dashboard", domain.AccessAnyAuthenticated, user, Decision{Allow: true}},
		{"authenticated as admin", "/events", domain.AccessAnyAuthenticated, admin, Decision{Allow: true}},
		{"admin signed out", "/admin", domain.AccessAdminOnly, nil, Decision{RedirectTo: "/login"}},
		{"admin as user", "/admin", domain.AccessAdminOnly, user, Decision{RedirectTo: "/"}},
		{"admin as admin", "/admin", domain.AccessAdminOnly, admin, Decision{Allow: true}},
		{"admin with unknown role", "/admin", domain.AccessAdminOnly, sessionWith("owner"), Decision{RedirectTo: "/"}},
		{"unknown level", "/x", domain.Access(42), admin, Decision{RedirectTo: "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Evaluate(tt.path, tt.required, tt.sess))
		})
	}
}

func TestEvaluate_IsPure(t *testing.T) {
	t.Parallel()

	user := sessionWith(domain.RoleUser)
	first := Evaluate("/admin/events/1", domain.AccessAdminOnly, user)

	for i := 0; i < 10; i++ {
		require.Equal(t, first, Evaluate("/admin/events/1", domain.AccessAdminOnly, user))
	}
	require.Equal(t, domain.RoleUser, user.Role)
}

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	tbl := DefaultTable()

	tests := []struct {
		path string
		want domain.Access
		ok   bool
	}{
		{"/", domain.AccessAnyAuthenticated, true},
		{"/login", domain.AccessPublic, true},
		{"/register/", domain.AccessPublic, true},
		{"/events", domain.AccessAnyAuthenticated, true},
		{"/events/abc", domain.AccessAnyAuthenticated, true},
		{"/events/abc/extra", 0, false},
		{"/payment/123", domain.AccessAnyAuthenticated, true},
		{"/payment", 0, false},
		{"/admin", domain.AccessAdminOnly, true},
		{"/admin/events/1/registrations", domain.AccessAdminOnly, true},
		{"/swagger/index.html", domain.AccessPublic, true},
		{"/nowhere", 0, false},
	}

	for _, tt := range tests {
		got, ok := tbl.Lookup(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		if tt.ok {
			require.Equal(t, tt.want, got, tt.path)
		}
	}
}

func TestTable_Check(t *testing.T) {
	t.Parallel()

	tbl := DefaultTable()
	user := sessionWith(domain.RoleUser)

	require.Equal(t, Decision{RedirectTo: "/"}, tbl.Check("/nowhere", user))
	require.Equal(t, Decision{RedirectTo: "/"}, tbl.Check("/nowhere", nil))
	require.Equal(t, Decision{RedirectTo: "/login"}, tbl.Check("/events/1", nil))
	require.Equal(t, Decision{RedirectTo: "/"}, tbl.Check("/admin/registrations", user))
	require.Equal(t, Decision{Allow: true}, tbl.Check("/events/1", user))
}

func TestTable_FirstMatchWins(t *testing.T) {
	t.Parallel()

	tbl := NewTable().
		Add("/events/new", domain.AccessAdminOnly).
		Add("/events/:id", domain.AccessAnyAuthenticated)

	got, ok := tbl.Lookup("/events/new")
	require.True(t, ok)
	require.Equal(t, domain.AccessAdminOnly, got)
}
