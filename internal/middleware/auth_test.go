package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmeshcher/shop-pos/internal/model"
)

func authCookie(t *testing.T, m *AuthMiddleware, userID string, role model.Role) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	m.SetAuthCookie(w, userID, role)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookies set by SetAuthCookie")
	}
	return cookies[0]
}

func TestAuthMiddleware_WithValidCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetUserIDFromContext(r.Context())
		if !ok {
			t.Fatalf("user id not in context")
		}
		if id != "0190a6d2-user" {
			t.Fatalf("user id from context = %q, want 0190a6d2-user", id)
		}
		role, ok := GetRoleFromContext(r.Context())
		if !ok || role != model.RoleStaff {
			t.Fatalf("role from context = %q, want staff", role)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(authCookie(t, m, "0190a6d2-user", model.RoleStaff))

	handler := m.Middleware(next)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_WithoutCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)

	handler := m.Middleware(next)
	handler.ServeHTTP(w, r)

	res := w.Result()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_RejectsTamperedCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	valid := authCookie(t, m, "u1", model.RoleStaff)
	_, sig, _ := strings.Cut(valid.Value, ".")

	tests := []struct {
		name  string
		value string
	}{
		{name: "role escalated", value: "u1:admin." + sig},
		{name: "no signature", value: "u1:staff"},
		{name: "other secret", value: authCookie(t, NewAuthMiddleware("other"), "u1", model.RoleAdmin).Value},
		{name: "garbage", value: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			r.AddCookie(&http.Cookie{Name: authCookieName, Value: tt.value})
			w := httptest.NewRecorder()

			m.Middleware(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		role   model.Role
		allow  []model.Role
		status int
	}{
		{name: "admin on admin route", role: model.RoleAdmin, allow: []model.Role{model.RoleAdmin}, status: http.StatusNoContent},
		{name: "staff on admin route", role: model.RoleStaff, allow: []model.Role{model.RoleAdmin}, status: http.StatusForbidden},
		{name: "admin on shared route", role: model.RoleAdmin, allow: []model.Role{model.RoleStaff, model.RoleAdmin}, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			r.AddCookie(authCookie(t, m, "u1", tt.role))
			w := httptest.NewRecorder()

			m.Middleware(RequireRole(tt.allow...)(ok)).ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	w := httptest.NewRecorder()
	RequireRole(model.RoleAdmin)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestClearAuthCookie(t *testing.T) {
	m := NewAuthMiddleware("")
	w := httptest.NewRecorder()
	m.ClearAuthCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}

func TestResolve(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	users := map[string]model.CurrentUser{
		"u1": {ID: "u1", Name: "Ama", Username: "ama", Role: model.RoleStaff},
	}
	lookup := func(id string) (model.CurrentUser, bool) {
		u, ok := users[id]
		return u, ok
	}

	tests := []struct {
		name        string
		userID      string
		cookieRole  model.Role
		allow       model.Role
		status      int
		clearCookie bool
	}{
		{name: "live role replaces cookie role", userID: "u1", cookieRole: model.RoleAdmin, allow: model.RoleAdmin, status: http.StatusForbidden},
		{name: "live role allowed", userID: "u1", cookieRole: model.RoleAdmin, allow: model.RoleStaff, status: http.StatusNoContent},
		{name: "deleted user", userID: "gone", cookieRole: model.RoleAdmin, allow: model.RoleAdmin, status: http.StatusUnauthorized, clearCookie: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				u, ok := GetUserFromContext(r.Context())
				if !ok || u.ID != tt.userID {
					t.Fatalf("user from context = %+v, want id %q", u, tt.userID)
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			r.AddCookie(authCookie(t, m, tt.userID, tt.cookieRole))
			w := httptest.NewRecorder()

			m.Middleware(m.Resolve(lookup)(RequireRole(tt.allow)(next))).ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			cleared := len(w.Result().Cookies()) == 1 && w.Result().Cookies()[0].MaxAge < 0
			if cleared != tt.clearCookie {
				t.Fatalf("cookie cleared = %v, want %v", cleared, tt.clearCookie)
			}
		})
	}
}

func TestResolve_WithoutAuth(t *testing.T) {
	m := NewAuthMiddleware("test-secret")
	w := httptest.NewRecorder()
	lookup := func(string) (model.CurrentUser, bool) {
		t.Fatalf("lookup should not be called")
		return model.CurrentUser{}, false
	}

	m.Resolve(lookup)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserIDFromRequest(t *testing.T) {
	m := NewAuthMiddleware("test-secret")

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	if _, ok := m.UserIDFromRequest(r); ok {
		t.Fatalf("expected no user without cookie")
	}

	r.AddCookie(authCookie(t, m, "u1", model.RoleStaff))
	id, ok := m.UserIDFromRequest(r)
	if !ok || id != "u1" {
		t.Fatalf("UserIDFromRequest = %q, %v; want u1, true", id, ok)
	}

	forged := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	forged.AddCookie(&http.Cookie{Name: authCookieName, Value: "u1:staff.deadbeef"})
	if _, ok := m.UserIDFromRequest(forged); ok {
		t.Fatalf("expected forged cookie to be rejected")
	}
}
