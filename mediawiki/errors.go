package mediawiki

import (
	"errors"
	"fmt"
)

var (
	ErrUnreachable = errors.New("remote unreachable")
	ErrAPI         = errors.New("api error")
	ErrMalformed   = errors.New("malformed response")
	ErrNotFound    = errors.New("not found")
	ErrUnknownSite = errors.New("unknown site")
)

// wrap tags err with marker so callers can classify it with errors.Is
func wrap(marker error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", marker, op)
	}
	return fmt.Errorf("%w: %s: %w", marker, op, err)
}
