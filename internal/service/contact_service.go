package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"contact-keeper/internal/domain"
	"contact-keeper/internal/repository"
)

// ContactService coordinates contact CRUD and enforces ownership.
type ContactService interface {
	List(ctx context.Context, userID int64) ([]domain.Contact, error)
	Create(ctx context.Context, userID int64, name, email, phone, contactType string) (*domain.Contact, error)
	Update(ctx context.Context, userID int64, id string, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, userID int64, id string) (*domain.Contact, error)
}

type contactService struct {
	contacts repository.ContactRepository
}

func NewContactService(contacts repository.ContactRepository) ContactService {
	return &contactService{contacts: contacts}
}

func (s *contactService) List(ctx context.Context, userID int64) ([]domain.Contact, error) {
	return s.contacts.ListByOwner(ctx, userID)
}

func (s *contactService) Create(ctx context.Context, userID int64, name, email, phone, contactType string) (*domain.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if contactType == "" {
		contactType = domain.ContactTypePersonal
	}

	contact := &domain.Contact{
		ID:      uuid.NewString(),
		OwnerID: userID,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Type:    contactType,
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, userID int64, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	contact, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(contact)
	if strings.TrimSpace(contact.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, userID int64, id string) (*domain.Contact, error) {
	contact, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.contacts.Delete(ctx, id); err != nil {
		return nil, err
	}
	return contact, nil
}

// owned loads the contact and checks the requester owns it.
func (s *contactService) owned(ctx context.Context, userID int64, id string) (*domain.Contact, error) {
	contact, err := s.contacts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return contact, nil
}
