// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package identity

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error
}

// # Refresh Token Data Access

// RefreshTokenRepository defines the data access contract for opaque refresh
// credentials.
type RefreshTokenRepository interface {

	/*
		Create persists a freshly issued refresh token.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *RefreshToken) error

	/*
		FindByToken returns the credential matching the exact opaque string.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *RefreshToken: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByToken(context context.Context, token string) (*RefreshToken, error)

	/*
		Delete removes a single credential by its opaque string.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: apperr.NotFound or deletion failures
	*/
	Delete(context context.Context, token string) error

	/*
		DeleteExpired removes every credential whose deadline precedes now.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of purged credentials
		  - error: Deletion failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}
