package auth

import "context"

// Service defines the interface for authentication-related business logic.
// The catalog API has a single administrative identity used for cache and
// snapshot management.
type Service interface {
	Login(ctx context.Context, password string) (string, error)
	Verify(token string) error
}
