package repository

import (
	"github.com/subonly/gate/internal/modules/settings/domain"
)

// Repository defines the interface for settings persistence.
// This abstraction allows easy replacement of storage implementations
// (e.g., FileStorage -> PostgreSQL -> MongoDB).
//
// Update runs fn under the store's write lock, making the whole
// read-modify-write cycle atomic: two overlapping mutations cannot lose
// an update to each other.
type Repository interface {
	Load() (*domain.Settings, error)
	Save(settings *domain.Settings) error
	Update(fn func(settings *domain.Settings) error) (*domain.Settings, error)
}
