// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the SQL implementation of ContactStore.
//
// The repository follows the "thin repository" approach: no business logic,
// only required-field checks at the store boundary, CRUD persistence and
// query composition.
//
// Usage:
//
//	contacts := repo.NewGormContacts(db)
//	c, err := contacts.Insert(ctx, &domain.Contact{Name: "Ann", Email: "a@b.com", Phone: "1234567890"})
//	var verr *domain.ValidationError
//	if errors.As(err, &verr) {
//	    // missing name/email/phone
//	}
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

// GormContacts stores contacts in a SQL table through GORM.
// It is safe for concurrent use.
type GormContacts struct {
	db *gorm.DB
}

// NewGormContacts returns a ContactStore backed by db.
func NewGormContacts(db *gorm.DB) *GormContacts {
	return &GormContacts{db: db}
}

// Insert validates the required fields, assigns a UUID and UTC timestamps,
// and inserts the row. The caller's value is not modified.
func (r *GormContacts) Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	if err := c.Fields().CheckRequired(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	row := &domain.Contact{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	row.Apply(c.Fields())
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListAll returns every contact ordered by creation time descending (ties by
// id descending). It returns an empty, non-nil slice when there are none.
func (r *GormContacts) ListAll(ctx context.Context) ([]domain.Contact, error) {
	out := make([]domain.Contact, 0)
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// FindByID fetches a single contact, or ErrNotFound.
func (r *GormContacts) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	var c domain.Contact
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateByID replaces name, email, phone and message of the contact with the
// given id and refreshes UpdatedAt. If no row matches, it returns ErrNotFound.
// Concurrent updates apply last-write-wins.
func (r *GormContacts) UpdateByID(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error) {
	if err := f.CheckRequired(); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       f.Name,
			"email":      f.Email,
			"phone":      f.Phone,
			"message":    f.Message,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteByID hard-deletes the contact. Deleting a missing id succeeds.
func (r *GormContacts) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contact{}).Error
}

// Stats proxies ContactsStats.
func (r *GormContacts) Stats(ctx context.Context) (int64, *time.Time, error) {
	return ContactsStats(ctx, r.db)
}

// Ping checks the underlying connection pool.
func (r *GormContacts) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
