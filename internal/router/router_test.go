package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/socialgood/internal/entitystore"
	"github.com/patric-chuzhbe/socialgood/internal/ipchecker"
	"github.com/patric-chuzhbe/socialgood/internal/logger"
	"github.com/patric-chuzhbe/socialgood/internal/mockstore"
	"github.com/patric-chuzhbe/socialgood/internal/models"
	"github.com/patric-chuzhbe/socialgood/internal/user"
)

const aliceJSON = `{
	"name": "Alice",
	"id": "alice",
	"password": "secret",
	"emailAddress": "alice@example.com",
	"homeAddress": "1 Main St",
	"title": "Ms"
}`

func setupTestServer(t *testing.T, db store, trustedSubnet string) *httptest.Server {
	t.Helper()

	require.NoError(t, logger.Init("debug"))

	checker, err := ipchecker.New(trustedSubnet)
	require.NoError(t, err)

	srv := httptest.NewServer(New(db, checker))
	t.Cleanup(srv.Close)

	return srv
}

func seededStore(t *testing.T) *entitystore.Store {
	t.Helper()

	u := user.New("Alice", "alice", "secret", user.RoleUser)
	u.SetEmailAddress("alice@example.com")
	u.SetHomeAddress("1 Main St")

	return entitystore.New(entitystore.WithUsers(*u))
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()

	var errorResponse models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errorResponse))

	return errorResponse.Error
}

func TestGetPing(t *testing.T) {
	srv := setupTestServer(t, entitystore.New(), "")

	resp, err := resty.New().R().Get(srv.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.NotEmpty(t, resp.Header().Get(logger.RequestIDHeader))
}

func TestPostApivalidateField(t *testing.T) {
	srv := setupTestServer(t, entitystore.New(), "")

	type tExpectedResponse struct {
		code  int
		valid bool
		error string
	}
	testCases := []struct {
		name     string
		field    string
		body     string
		expected tExpectedResponse
	}{
		{
			name:     "valid_email",
			field:    "emailAddress",
			body:     `{"value": "a@b.com"}`,
			expected: tExpectedResponse{code: http.StatusOK, valid: true},
		},
		{
			name:     "invalid_email",
			field:    "emailAddress",
			body:     `{"value": "not-an-email"}`,
			expected: tExpectedResponse{code: http.StatusUnprocessableEntity, error: "Invalid email address. Email must be of form example@domain.com"},
		},
		{
			name:     "empty_name",
			field:    "name",
			body:     `{"value": ""}`,
			expected: tExpectedResponse{code: http.StatusUnprocessableEntity, error: "Name cannot be empty."},
		},
		{
			name:     "missing_value_is_empty",
			field:    "homeAddress",
			body:     `{}`,
			expected: tExpectedResponse{code: http.StatusUnprocessableEntity, error: "Home Address cannot be empty."},
		},
		{
			name:     "bad_id",
			field:    "id",
			body:     `{"value": "a b"}`,
			expected: tExpectedResponse{code: http.StatusUnprocessableEntity, error: "ID must consist of alphanumeric characters, -, _, and . only."},
		},
		{
			name:     "unknown_field",
			field:    "title",
			body:     `{"value": "Mr"}`,
			expected: tExpectedResponse{code: http.StatusNotFound},
		},
		{
			name:     "bad_json",
			field:    "name",
			body:     `{`,
			expected: tExpectedResponse{code: http.StatusBadRequest},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetHeader("Content-Type", "application/json").
				SetBody(testCase.body).
				Post(fmt.Sprintf("%s/api/validate/%s", srv.URL, testCase.field))
			require.NoError(t, err)

			assert.Equal(t, testCase.expected.code, resp.StatusCode())
			if testCase.expected.code != http.StatusOK && testCase.expected.code != http.StatusUnprocessableEntity {
				return
			}

			var fieldResponse models.FieldValidationResponse
			require.NoError(t, json.Unmarshal(resp.Body(), &fieldResponse))
			assert.Equal(t, testCase.expected.valid, fieldResponse.Valid)
			assert.Equal(t, testCase.expected.error, fieldResponse.Error)
		})
	}
}

func TestPostApivalidate(t *testing.T) {
	srv := setupTestServer(t, entitystore.New(), "")

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(aliceJSON).
		Post(srv.URL + "/api/validate")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var formResponse models.FormValidationResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &formResponse))
	assert.True(t, formResponse.Valid)
	assert.Empty(t, formResponse.Errors)

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"id": "bad id", "emailAddress": "x", "password": "p"}`).
		Post(srv.URL + "/api/validate")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	formResponse = models.FormValidationResponse{}
	require.NoError(t, json.Unmarshal(resp.Body(), &formResponse))
	assert.False(t, formResponse.Valid)
	assert.Equal(t, map[string]string{
		"name":         "Name cannot be empty.",
		"id":           "ID must consist of alphanumeric characters, -, _, and . only.",
		"emailAddress": "Invalid email address. Email must be of form example@domain.com",
		"homeAddress":  "Home Address cannot be empty.",
	}, formResponse.Errors)

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"userRole": "root"}`).
		Post(srv.URL + "/api/validate")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}

func TestPostApiusers(t *testing.T) {
	db := entitystore.New()
	srv := setupTestServer(t, db, "")

	testCases := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{name: "created", body: aliceJSON, wantCode: http.StatusCreated},
		{name: "duplicate", body: aliceJSON, wantCode: http.StatusConflict, wantError: "User ID is already taken."},
		{
			name:      "invalid_email",
			body:      `{"name": "Bob", "id": "bob", "password": "p", "emailAddress": "bob", "homeAddress": "x"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Invalid email address. Email must be of form example@domain.com",
		},
		{
			name:     "unknown_role",
			body:     `{"name": "Bob", "id": "bob", "password": "p", "emailAddress": "bob@b.com", "homeAddress": "x", "userRole": "root"}`,
			wantCode: http.StatusBadRequest,
		},
		{name: "empty_body", body: ``, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := resty.New().R().SetHeader("Content-Type", "application/json")
			if testCase.body != "" {
				req.SetBody(testCase.body)
			}
			resp, err := req.Post(srv.URL + "/api/users")
			require.NoError(t, err)

			assert.Equal(t, testCase.wantCode, resp.StatusCode())
			if testCase.wantError != "" {
				assert.Equal(t, testCase.wantError, decodeError(t, resp.Body()))
			}
		})
	}

	stored, err := db.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, stored.GetUserRole(), "empty role defaults to user")
	assert.Equal(t, "secret", stored.GetPassword())
	assert.Equal(t, 1, db.Count(context.Background()))
}

func TestGetApiusersIDHidesPassword(t *testing.T) {
	srv := setupTestServer(t, seededStore(t), "")

	resp, err := resty.New().R().Get(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &raw))
	assert.Equal(t, "alice", raw["id"])
	assert.Equal(t, "alice@example.com", raw["emailAddress"])
	assert.NotContains(t, raw, "password")

	resp, err = resty.New().R().Get(srv.URL + "/api/users/nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestPutAndDeleteApiusersID(t *testing.T) {
	db := seededStore(t)
	srv := setupTestServer(t, db, "")

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name": "Alice A.", "id": "ignored", "password": "secret2", "emailAddress": "alice@example.org", "homeAddress": "2 Main St", "userRole": "admin"}`).
		Put(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	stored, err := db.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", stored.GetName())
	assert.Equal(t, user.RoleAdmin, stored.GetUserRole())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name": "", "password": "x", "emailAddress": "a@b.com", "homeAddress": "h"}`).
		Put(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode())
	assert.Equal(t, "Name cannot be empty.", decodeError(t, resp.Body()))

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(aliceJSON).
		Put(srv.URL + "/api/users/nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = resty.New().R().Delete(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = resty.New().R().Delete(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestPostApilogin(t *testing.T) {
	srv := setupTestServer(t, seededStore(t), "")

	testCases := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{name: "correct", body: `{"id": "alice", "password": "secret"}`, wantCode: http.StatusOK},
		{name: "wrong", body: `{"id": "alice", "password": "wrong"}`, wantCode: http.StatusUnauthorized, wantError: "Incorrect password."},
		{name: "empty", body: `{"id": "alice", "password": ""}`, wantCode: http.StatusUnprocessableEntity, wantError: "Password cannot be empty."},
		{name: "unknown", body: `{"id": "bob", "password": "secret"}`, wantCode: http.StatusNotFound, wantError: "User not found."},
		{name: "bad_json", body: `[]`, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetHeader("Content-Type", "application/json").
				SetBody(testCase.body).
				Post(srv.URL + "/api/login")
			require.NoError(t, err)

			assert.Equal(t, testCase.wantCode, resp.StatusCode())
			if testCase.wantError != "" {
				assert.Equal(t, testCase.wantError, decodeError(t, resp.Body()))
			}
		})
	}
}

func TestGetApiinternalstats(t *testing.T) {
	t.Run("trusted", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t), "127.0.0.0/8")

		resp, err := resty.New().R().
			SetHeader("X-Real-IP", "127.0.0.1").
			Get(srv.URL + "/api/internal/stats")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		var stats models.InternalStatsResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &stats))
		assert.Equal(t, 1, stats.Users)
	})

	t.Run("untrusted", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t), "10.0.0.0/8")

		resp, err := resty.New().R().
			SetHeader("X-Real-IP", "192.168.0.10").
			Get(srv.URL + "/api/internal/stats")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	})

	t.Run("no_subnet", func(t *testing.T) {
		srv := setupTestServer(t, seededStore(t), "")

		resp, err := resty.New().R().Get(srv.URL + "/api/internal/stats")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	})
}

func TestStoreFailures(t *testing.T) {
	db := &mockstore.StoreMock{
		OnCount: func(ctx context.Context) int { return 42 },
	}
	db.On("Register", mock.Anything, mock.Anything).Return(errors.New("backend is down"))
	db.On("Get", mock.Anything, "alice").Return(user.User{}, fmt.Errorf("wrapped: %w", entitystore.ErrUserNotFound))
	db.On("Login", mock.Anything, "alice", "secret").Return(user.User{}, fmt.Errorf("wrapped: %w", user.ErrIncorrectPassword))

	srv := setupTestServer(t, db, "127.0.0.0/8")

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(aliceJSON).
		Post(srv.URL + "/api/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())

	resp, err = resty.New().R().Get(srv.URL + "/api/users/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"id": "alice", "password": "secret"}`).
		Post(srv.URL + "/api/login")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("X-Real-IP", "127.0.0.1").
		Get(srv.URL + "/api/internal/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	var stats models.InternalStatsResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &stats))
	assert.Equal(t, 42, stats.Users)

	db.AssertExpectations(t)
}
