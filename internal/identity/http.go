// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package identity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/request"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the session authority's HTTP endpoints.
//
// # Scope
//
// This handler manages the account lifecycle entry points (Registration,
// Login, Refresh, Logout). All endpoints are public: the refresh and logout
// operations authenticate with the opaque credential itself, not a JWT.
type Handler struct {
	identityService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{identityService: service}
}

// Routes returns a [chi.Router] configured with session authority routes.
//
// # Endpoints
//   - POST /register      : Creates a new account and signs it in.
//   - POST /login         : Authenticates and returns a credential pair.
//   - POST /refresh-token : Exchanges a refresh token for a new access token.
//   - POST /logout        : Deletes the presented refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Description: Validates input, checks for identity conflicts, persists a new
user profile, and returns the initial credential pair.

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: Session: Access and refresh tokens with the created user
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.identityService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User registered successfully", sessionPayload(session))
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Description: Verifies credentials and issues a fresh access/refresh pair.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Credential pair and the user's ID
  - 401: ErrUnauthorized: Wrong password
  - 404: ErrNotFound: No account with this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.identityService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Login successful", sessionPayload(session))
}

/*
RefreshToken issues a new access token using a valid refresh token.

POST /api/auth/refresh-token

Description: Validates the opaque credential against storage and its
absolute deadline, then returns a fresh access token. The refresh credential
is returned unchanged.

Request:
  - Body: refreshTokenRequest (RefreshToken)

Response:
  - 200: Session: New access token credentials
  - 401: ErrUnauthorized: Missing, unknown, or expired refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var input refreshTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "is required"))
		return
	}

	session, err := handler.identityService.RefreshSession(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Token refreshed successfully", map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		"expiresIn":       int64(AccessTokenTTL / time.Second),
	})
}

/*
Logout deletes the presented refresh token.

POST /api/auth/logout

Description: Permanently removes the tracked credential so it can never be
exchanged again. Access tokens already issued stay valid until expiry.

Request:
  - Body: refreshTokenRequest (RefreshToken)

Response:
  - 200: Success: Session terminated
  - 401: ErrUnauthorized: Unknown refresh token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "is required"))
		return
	}

	if err := handler.identityService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Logged out successfully", nil)
}

// sessionPayload shapes a [Session] for transport.
func sessionPayload(session *Session) map[string]any {
	return map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldUserID:       session.User.ID,
	}
}
