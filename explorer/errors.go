package explorer

import "errors"

var (
	ErrUserExists         = errors.New("username exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCredentials   = errors.New("enter username and password")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrEmptyQuery         = errors.New("search query cannot be empty")

	// ErrCatalogUnavailable covers transport failures, timeouts and non-200 replies.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrMalformedResponse means the catalog answered 200 with a body that is not JSON.
	ErrMalformedResponse = errors.New("malformed catalog response")
)
