//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoListenAddress indicates missing listen configuration.
var ErrNoListenAddress = errors.New("no listen address configured")

// ResolveListenAddress picks the override when set, otherwise the configured
// address, and checks it has a host:port form (e.g. ":8080").
func ResolveListenAddress(configured, override string) (string, error) {
	address := configured
	if override != "" {
		address = override
	}

	if address == "" {
		return "", ErrNoListenAddress
	}

	if _, _, err := net.SplitHostPort(address); err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", address, err)
	}

	return address, nil
}
