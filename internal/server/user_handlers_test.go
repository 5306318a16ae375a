package server

import (
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/register", RegisterRequest{Username: "ada", Email: "Ada@Example.com "})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user models.User
	decode(t, resp, &user)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	login := env.doJSON(t, http.MethodPost, "/api/login", LoginRequest{Email: "ADA@example.com"})
	require.Equal(t, fiber.StatusOK, login.StatusCode)
	var loggedIn models.User
	decode(t, login, &loggedIn)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)

	first := env.doJSON(t, http.MethodPost, "/api/register", RegisterRequest{Username: "ada", Email: "ada@example.com"})
	require.Equal(t, fiber.StatusCreated, first.StatusCode)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"duplicate email", RegisterRequest{Username: "other", Email: "ADA@example.com"}, fiber.StatusConflict, models.CodeConflict},
		{"missing username", RegisterRequest{Email: "b@example.com"}, fiber.StatusBadRequest, models.CodeValidation},
		{"missing email", RegisterRequest{Username: "bob"}, fiber.StatusBadRequest, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.doJSON(t, http.MethodPost, "/api/register", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body models.ErrorResponse
			decode(t, resp, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/login", LoginRequest{Email: "nobody@example.com"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, models.CodeUnauthorized, body.Code)
}

func TestLogin_MissingEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/login", LoginRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
