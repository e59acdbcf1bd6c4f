// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package identity implements the session authority for the platform.

It owns user accounts and both credential types: short-lived, self-contained
JWT access tokens and long-lived opaque refresh tokens tracked server-side.

# Architecture

This layer is the "Truth" for who a caller is. Entities defined here have no
external dependencies and encapsulate all business rules related to accounts
and sessions.
*/
package identity

import "time"

// # Domain Entities

// User represents a registered member of the platform.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is a server-tracked opaque credential. Unlike the access token
// it carries no claims: possession of the exact string is the proof.
type RefreshToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"` // Omitted for security.
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the credential's absolute lifetime has lapsed.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// # Field Identifiers

// Global field names for validation and identity mapping in the identity domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
	FieldUserID       = "userId"
	FieldMessage      = "message"
)

// # Credential Policy

const (
	// AccessTokenTTL is the lifetime of a signed JWT access token.
	AccessTokenTTL = 60 * time.Minute

	// RefreshTokenTTL is the absolute lifetime of an opaque refresh token.
	// The deadline is fixed at issuance and never extended.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenLength is the entropy of a refresh token in raw bytes.
	// The stored and transported form is hex, twice this length.
	RefreshTokenLength = 40
)

// # Input Policy

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 8
	PasswordMaxLength = 50
)
