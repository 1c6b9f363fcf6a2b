package repository

import (
	"context"

	"github.com/sangkips/receipts-api/internal/domain/entity"
)

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	// Get returns the stored row or nil when none has been saved
	Get(ctx context.Context) (*entity.Settings, error)
	// Save inserts or updates the row with id 1
	Save(ctx context.Context, settings *entity.Settings) error
}
