package models

import (
	"time"

	"github.com/google/uuid"
)

type APIKeyRole string

const (
	APIKeyRoleAdmin    APIKeyRole = "admin"
	APIKeyRoleRunner   APIKeyRole = "runner"
	APIKeyRoleReadonly APIKeyRole = "readonly"
)

// ValidAPIKeyRole reports whether role is part of the role catalog.
func ValidAPIKeyRole(role string) bool {
	switch APIKeyRole(role) {
	case APIKeyRoleAdmin, APIKeyRoleRunner, APIKeyRoleReadonly:
		return true
	}
	return false
}

type APIKey struct {
	ID        uuid.UUID  `db:"id"`
	Name      string     `db:"name"`
	KeyHash   string     `db:"key_hash"`
	Role      APIKeyRole `db:"role"`
	Active    bool       `db:"active"`
	CreatedAt time.Time  `db:"created_at"`
}
