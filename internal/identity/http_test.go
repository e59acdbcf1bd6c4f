// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/identity"
)

func newTestHandler() (http.Handler, *fakeUserRepository, *fakeTokenRepository) {
	service, users, tokens := newTestService()
	return identity.NewHandler(service).Routes(), users, tokens
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Register_Validation verifies malformed enrollment input is
rejected before any storage write happens.
*/
func TestHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"username_too_short", `{"username":"ab","email":"a@example.com","password":"strong-password"}`},
		{"bad_email", `{"username":"sajag","email":"not-an-email","password":"strong-password"}`},
		{"password_too_short", `{"username":"sajag","email":"a@example.com","password":"short"}`},
		{"not_json", `this is not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, users, _ := newTestHandler()

			recorder := postJSON(t, handler, "/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, 0, users.createCalls)
		})
	}
}

/*
TestHandler_Register_Success verifies the happy path returns 201 with the
standard envelope and a credential pair.
*/
func TestHandler_Register_Success(t *testing.T) {
	handler, users, _ := newTestHandler()

	recorder := postJSON(t, handler, "/register",
		`{"username":"sajag","email":"sajag@example.com","password":"strong-password"}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, 1, users.createCalls)

	var envelope struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data["accessToken"])
	assert.NotEmpty(t, envelope.Data["refreshToken"])
	assert.NotEmpty(t, envelope.Data["userId"])
}

/*
TestHandler_Login_StatusCodes verifies the distinct failure statuses: 404 for
an unknown account, 401 for a wrong password.
*/
func TestHandler_Login_StatusCodes(t *testing.T) {
	service, users, _ := newTestService()
	handler := identity.NewHandler(service).Routes()
	user := registeredUser(t, users)

	t.Run("unknown_account", func(t *testing.T) {
		recorder := postJSON(t, handler, "/login", `{"email":"nobody@example.com","password":"whatever-pass"}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("wrong_password", func(t *testing.T) {
		recorder := postJSON(t, handler, "/login", `{"email":"`+user.Email+`","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("success", func(t *testing.T) {
		recorder := postJSON(t, handler, "/login", `{"email":"`+user.Email+`","password":"strong-password"}`)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestHandler_RefreshToken verifies the exchange endpoint statuses.
*/
func TestHandler_RefreshToken(t *testing.T) {
	service, users, _ := newTestService()
	handler := identity.NewHandler(service).Routes()
	user := registeredUser(t, users)

	session, err := service.Login(context.Background(), identity.LoginInput{
		Email:    user.Email,
		Password: "strong-password",
	})
	require.NoError(t, err)

	t.Run("missing_token", func(t *testing.T) {
		recorder := postJSON(t, handler, "/refresh-token", `{}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown_token", func(t *testing.T) {
		recorder := postJSON(t, handler, "/refresh-token", `{"refreshToken":"bogus"}`)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("valid_token", func(t *testing.T) {
		recorder := postJSON(t, handler, "/refresh-token", `{"refreshToken":"`+session.RefreshToken+`"}`)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestHandler_Logout verifies logout deletes the credential and reports an
already-missing one as unauthorized.
*/
func TestHandler_Logout(t *testing.T) {
	service, users, tokens := newTestService()
	handler := identity.NewHandler(service).Routes()
	user := registeredUser(t, users)

	session, err := service.Login(context.Background(), identity.LoginInput{
		Email:    user.Email,
		Password: "strong-password",
	})
	require.NoError(t, err)

	recorder := postJSON(t, handler, "/logout", `{"refreshToken":"`+session.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, tokens.tokens)

	recorder = postJSON(t, handler, "/logout", `{"refreshToken":"`+session.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
