// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/sec"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
}

// Service implements the session authority use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository  UserRepository
	tokenRepository RefreshTokenRepository
	tokenProvider   TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenRepo RefreshTokenRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository:  userRepo,
		tokenRepository: tokenRepo,
		tokenProvider:   tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Session represents a freshly issued credential pair.
type Session struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Register validates, hashes, and persists a brand new user account, then
issues the initial credential pair.

Description: Enrollment of a new member, handling password hashing and first
session issuance in one step so the client is signed in immediately.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: Initial credentials with the created user
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("identity_service_register_failed: %w", err)
	}

	// Sign the client in right away
	return service.issueSession(context, user)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues a credential pair.

Description: Resolves the account by email, performs constant-time password
comparison, and issues a fresh access/refresh pair.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session identifiers
  - err: NotFound, Unauthorized, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {

	// Unknown account and wrong password are reported distinctly.
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid password")
	}

	return service.issueSession(context, user)
}

/*
Logout permanently deletes the presented refresh token.

Description: Ensures that a tracked refresh token can never be used again.
An unknown token is reported as Unauthorized so clients learn the session
was already gone.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Unauthorized or revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Delete the credential outright; a miss means there was no session.
	if err := service.tokenRepository.Delete(context, refreshToken); err != nil {
		if apperr.IsAppError(err) {
			return apperr.Unauthorized("Invalid refresh token")
		}
		return fmt.Errorf("identity_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession exchanges a valid refresh token for a new access token.

Description: Verifies the opaque credential against storage and its absolute
deadline, then signs a fresh access token. The refresh token itself is NOT
rotated: its deadline was fixed at issuance and the same credential stays
valid until then.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: Fresh access token alongside the unchanged refresh credential
  - err: Unauthorized (bad credential), NotFound (deleted subject), or
    storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*Session, error) {

	// Look the opaque credential up by its exact string
	credential, err := service.tokenRepository.FindByToken(context, refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Enforce the absolute deadline even if the purge job has not run yet
	if credential.Expired(time.Now()) {
		_ = service.tokenRepository.Delete(context, refreshToken)
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Fetch the user associated with this credential. A deleted account is
	// reported as NotFound, the same way login reports an unknown identity.
	user, err := service.userRepository.FindByID(context, credential.UserID)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// Sign a fresh short-lived access token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("identity_service_refresh_access_token_failed: %w", err)
	}

	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          credential.Token,
		RefreshTokenExpiresAt: credential.ExpiresAt,
		User:                  user,
	}, nil
}

/*
PurgeExpiredTokens removes refresh credentials past their deadline.

Description: Substitute for a storage-native TTL index. Invoked periodically
by the service runtime.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of purged credentials
  - err: Deletion failures
*/
func (service *Service) PurgeExpiredTokens(context context.Context) (int64, error) {
	return service.tokenRepository.DeleteExpired(context, time.Now())
}

// RunTokenPurge loops [PurgeExpiredTokens] on the given interval until the
// context is canceled. Intended to run in its own goroutine.
func (service *Service) RunTokenPurge(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := service.PurgeExpiredTokens(ctx)
			if err != nil {
				logger.Error("token_purge_failed", slog.Any("error", err))
				continue
			}
			if purged > 0 {
				logger.Info("token_purge_completed", slog.Int64("purged", purged))
			}
		}
	}
}

// issueSession signs an access token and persists a new refresh credential
// with an absolute deadline.
func (service *Service) issueSession(context context.Context, user *User) (*Session, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("identity_service_token_generation_failed: %w", err)
	}

	// Generate long-lived opaque Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("identity_service_refresh_token_failed: %w", err)
	}

	// Persist the tracked credential
	expiresAt := time.Now().Add(RefreshTokenTTL)
	credential := &RefreshToken{
		ID:        uuid.New(),
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}

	if err := service.tokenRepository.Create(context, credential); err != nil {
		return nil, fmt.Errorf("identity_service_session_creation_failed: %w", err)
	}

	return &Session{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
