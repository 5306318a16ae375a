package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/media"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", models.NewValidationError("bad"), fiber.StatusBadRequest},
		{"not found", models.NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"conflict", models.NewConflictError("dup", nil), fiber.StatusConflict},
		{"unauthorized", models.NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"internal", models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapServiceError(tt.err))
		})
	}
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("pq: password authentication failed"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, models.CodeInternal, body.Code)
}

func TestParseOptionalID(t *testing.T) {
	id, err := parseOptionalID(" 12 ", "user_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint(12), *id)

	for _, blank := range []string{"", "null"} {
		id, err := parseOptionalID(blank, "user_id")
		assert.NoError(t, err)
		assert.Nil(t, id)
	}

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err := parseOptionalID(bad, "user_id")
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err), bad)
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	ok, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/7", nil))
	require.NoError(t, err)
	defer func() { _ = ok.Body.Close() }()
	assert.Equal(t, fiber.StatusOK, ok.StatusCode)

	for _, bad := range []string{"0", "-1", "x"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+bad, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, bad)
		_ = resp.Body.Close()
	}
}

func TestServeUpload(t *testing.T) {
	env := newTestEnv(t)
	url, err := env.store.Save(context.Background(), media.Upload{Filename: "note.txt", Data: []byte("hello")})
	require.NoError(t, err)

	resp := env.doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	for _, path := range []string{"/uploads/123-deadbeef.png", "/uploads/..%2Fsecret", "/uploads/evil.sh"} {
		resp := env.doJSON(t, http.MethodGet, path, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
	}
}
