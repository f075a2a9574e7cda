package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	return app
}

func TestSignupAndLogin(t *testing.T) {
	s := setupTestServer(t)
	app := authApp(s)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"email":    "ada@example.com",
		"password": "correct horse",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var signupBody struct {
		Token   string `json:"token"`
		Account struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"account"`
	}
	decodeBody(t, resp, &signupBody)
	assert.NotEmpty(t, signupBody.Token)
	assert.NotEmpty(t, signupBody.Account.ID)
	assert.Equal(t, "ada@example.com", signupBody.Account.Email)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "correct horse",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginBody struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &loginBody)
	assert.NotEmpty(t, loginBody.Token)
}

func TestSignupValidation(t *testing.T) {
	s := setupTestServer(t)
	app := authApp(s)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing email", fiber.Map{"password": "correct horse"}},
		{"missing password", fiber.Map{"email": "ada@example.com"}},
		{"malformed email", fiber.Map{"email": "not-an-email", "password": "correct horse"}},
		{"short password", fiber.Map{"email": "ada@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	s := setupTestServer(t)
	app := authApp(s)

	body := fiber.Map{"email": "dup@example.com", "password": "correct horse"}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	s := setupTestServer(t)
	app := authApp(s)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"email":    "ada@example.com",
		"password": "correct horse",
	}))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "wrong horse",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ghost@example.com",
		"password": "whatever1",
	}))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
