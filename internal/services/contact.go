package services

import (
	"context"

	"gorm.io/gorm"

	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

const msgDuplicateEmail = "Contact with this email already exists"

type ContactService struct {
	base
}

func NewContactService(db *gorm.DB, baseLog *logger.Logger) *ContactService {
	return &ContactService{base: newBase(db, baseLog, "ContactService")}
}

// FindAll lists every contact in id order.
func (s *ContactService) FindAll(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, s.fail("find contacts", err)
	}
	return contacts, nil
}

// FindByID returns nil when no contact has the id.
func (s *ContactService) FindByID(ctx context.Context, id models.ID) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.WithContext(ctx).Take(&contact, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("find contact", err)
	}
	return &contact, nil
}

func (s *ContactService) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, s.conflict("create contact", err, msgDuplicateEmail)
	}
	return contact, nil
}

// Update applies patch and returns the stored contact, or nil when the
// contact does not exist.
func (s *ContactService) Update(ctx context.Context, id models.ID, patch models.ContactPatch) (*models.Contact, error) {
	res := s.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Updates(patch.Changes())
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, s.conflict("update contact", err, msgDuplicateEmail)
	}
	return s.FindByID(ctx, id)
}

// Delete removes the contact and returns it as it was, or nil when absent.
// Memberships go with it and assigned tasks become unassigned.
func (s *ContactService) Delete(ctx context.Context, id models.ID) (*models.Contact, error) {
	contact, err := s.FindByID(ctx, id)
	if err != nil || contact == nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Contact{})
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, s.fail("delete contact", err)
	}
	return contact, nil
}
