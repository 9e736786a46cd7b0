package cache

import "errors"

var (
	// ErrInvalidCapacity indicates a non-positive cache capacity.
	ErrInvalidCapacity = errors.New("cache capacity must be positive")

	// ErrInvalidTTL indicates a non-positive entry lifetime.
	ErrInvalidTTL = errors.New("cache TTL must be positive")
)
