package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the signed-in user a test request carries.
type TestUser = auth.SessionUser

func testUser(email, role, status, congregation string) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		Email:        email,
		Role:         role,
		Status:       status,
		Congregation: congregation,
	}
}

// AdminUser is an approved admin with no congregation.
func AdminUser() TestUser {
	return testUser("admin@test.com", models.RoleAdmin, models.StatusApproved, "")
}

// MemberUser is an approved user of congregation ("" for none).
func MemberUser(congregation string) TestUser {
	return testUser("member@test.com", models.RoleUser, models.StatusApproved, congregation)
}

// PendingUser is a registered user still awaiting approval.
func PendingUser(congregation string) TestUser {
	return testUser("pending@test.com", models.RoleUser, models.StatusPending, congregation)
}

// FromProfile signs requests in as a stored profile.
func FromProfile(p models.Profile) TestUser {
	return TestUser{ID: p.ID.Hex(), Email: p.Email, Role: p.Role, Status: p.Status, Congregation: p.Congregation}
}

// WithUser puts user into the request context the way LoadSessionUser does,
// without a session cookie.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &user)
}

// NewRequest is an anonymous request with no body.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
func NewJSONRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest is NewRequest signed in as user.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewAuthenticatedJSONRequest is NewJSONRequest signed in as user.
func NewAuthenticatedJSONRequest(method, target string, body any, user TestUser) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), user)
}

// ResponseRecorder adds assertions to httptest.ResponseRecorder.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q (body: %s)", expected, r.Body.String())
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface{ Fatalf(string, ...any) }, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
