package services

import "errors"

// Sentinel errors for every failure the auth and task services can hand back
// to a handler. Handlers branch with errors.Is and map each one to a stable
// HTTP status; anything not in this list is an internal fault and becomes an
// opaque 500.
var (
	// ErrUsernameTaken and ErrEmailTaken report registration collisions.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, deliberately indistinguishable to avoid username enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken and ErrExpiredToken classify bearer-token failures.
	// External callers see a single uniform 401 for both.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// ErrUserNotFound reports a profile lookup for an id with no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingOwner reports a task operation invoked without an
	// authenticated owner identity.
	ErrMissingOwner = errors.New("user ID is required")

	// ErrInvalidInput reports an empty or malformed required task field.
	ErrInvalidInput = errors.New("invalid task input")

	// ErrTaskNotFound covers both a task that does not exist and a task
	// owned by someone else, deliberately indistinguishable so responses
	// never leak the existence of another user's tasks.
	ErrTaskNotFound = errors.New("task not found")
)
