package repository

import (
	"context"

	"contact-keeper/internal/domain"
)

// ContactRepository exposes persistence operations for Contact records.
// Get/Update/Delete return domain.ErrNotFound when the id does not exist.
type ContactRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, contact *domain.Contact) error
	Get(ctx context.Context, id string) (*domain.Contact, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Contact, error)
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id string) error
}
