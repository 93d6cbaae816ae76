package anvil

import (
	"errors"
	"fmt"
	"net/url"
)

// Sentinel errors returned by client construction.
var (
	// ErrMissingDatabaseURL is returned when neither a database URL nor an
	// open connection was configured.
	ErrMissingDatabaseURL = errors.New("anvil: database URL is required")

	// ErrMissingDialect is returned when WithDB is used without WithDialect.
	ErrMissingDialect = errors.New("anvil: dialect is required when using an existing connection")

	// ErrUnsupportedDialect is returned for dialects outside the supported set.
	ErrUnsupportedDialect = errors.New("anvil: unsupported dialect")

	// ErrNoModel is returned when a generation operation runs without any
	// entity model configured.
	ErrNoModel = errors.New("anvil: no entity model configured")
)

// ConnectionError wraps a failure to open or verify a database connection.
type ConnectionError struct {
	URL     string // redacted
	Dialect string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("anvil: cannot connect to %s database at %s: %v", e.Dialect, e.URL, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// redactURL strips credentials from a connection URL for error messages.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
