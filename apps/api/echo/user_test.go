package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/user"
	testutil "github.com/trezcool/gradebook/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Bob", "bob", "bob@example.com", validPassword, user.RoleStudent, true)
	testutil.CreateUser(t, app.usrRepo, "Gone", "gone", "", validPassword, user.RoleStudent, false)

	badCreds := marchallObj(t, httpErr{Error: "authentication failed"})
	tests := []httpTest{
		{
			name: "Missing fields", method: http.MethodPost, path: "/api/users/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "Unknown user", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: validPassword}),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{
			name: "Wrong password", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, LoginRequest{Username: "bob", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{
			name: "Deactivated", method: http.MethodPost, path: "/api/users/login",
			body:     marchallObj(t, LoginRequest{Username: "gone", Password: validPassword}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	app.run(t, tests)

	t.Run("Success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/users/login", marchallObj(t, LoginRequest{Username: " BOB ", Password: validPassword}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		decode(t, rec, &resp)
		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return app.auth.jwtConfig.SigningKey, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", claims.Subject)
		assert.True(t, claims.IsStudent)
		assert.False(t, claims.IsTeacher)

		usr, err := app.usrRepo.GetUser(context.Background(), "bob")
		require.NoError(t, err)
		assert.False(t, usr.LastLogin.IsZero())
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	bob := testutil.CreateStudent(t, app.usrRepo, "bob", "Bob")

	tests := []httpTest{
		{name: "Auth required", path: "/api/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Student", path: "/api/users/me", token: app.getToken(t, bob), wantData: marchallObj(t, bob)},
		{name: "Teacher", path: "/api/users/me", token: app.getToken(t, app.teacher), wantData: marchallObj(t, app.teacher)},
		{
			name: "Roles (teacher only)", path: "/api/users/roles", token: app.getToken(t, bob),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Roles", path: "/api/users/roles", token: app.getToken(t, app.teacher), wantData: marchallObj(t, user.Roles)},
	}
	app.run(t, tests)
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	bob := testutil.CreateStudent(t, app.usrRepo, "bob", "Bob")
	gone := testutil.CreateUser(t, app.usrRepo, "Gone", "gone", "", validPassword, user.RoleStudent, false)

	expiredRefresh := app.auth.userClaims(bob, time.Now().Add(-5*time.Hour).Unix())
	expiredToken, err := app.auth.generateToken(expiredRefresh)
	require.NoError(t, err)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/api/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Deactivated", method: http.MethodPost, path: "/api/users/token-refresh", token: app.getToken(t, gone),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh expired", method: http.MethodPost, path: "/api/users/token-refresh", token: expiredToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Success", method: http.MethodPost, path: "/api/users/token-refresh", token: app.getToken(t, bob)},
	}
	app.run(t, tests)
}
