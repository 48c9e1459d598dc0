// Package domain defines the persistence models for contacts and the
// idempotency ledger. The types are mapped with GORM for the SQL backends and
// with BSON tags for the document backend, and form the core data layer of
// the contacts application.
package domain

import (
	"sort"
	"strings"
	"time"
)

// Contact is a single person's contact details as stored by the service.
//
// Fields:
//   - ID: UUID primary key (char(36)) assigned by the store on insert.
//   - Name / Email / Phone: required at the store boundary.
//   - Message: optional free text.
//   - CreatedAt / UpdatedAt: timestamps maintained by the store (UTC).
//
// There is no soft delete: removing a contact removes the row/document.
type Contact struct {
	ID        string    `json:"id"                bson:"_id"               gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"              bson:"name"              gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"             bson:"email"             gorm:"type:varchar(255);not null"`
	Phone     string    `json:"phone"             bson:"phone"             gorm:"type:varchar(32);not null"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"         bson:"createdAt"         gorm:"index:idx_contacts_created"`
	UpdatedAt time.Time `json:"updatedAt"         bson:"updatedAt"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// ContactFields is the mutable part of a Contact. Create and update requests
// carry a full set of fields; updates replace every field (no patching).
type ContactFields struct {
	Name    string `json:"name"    example:"Ann"`
	Email   string `json:"email"   example:"a@b.com"`
	Phone   string `json:"phone"   example:"1234567890"`
	Message string `json:"message" example:"hello"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f ContactFields) Trimmed() ContactFields {
	return ContactFields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Message: strings.TrimSpace(f.Message),
	}
}

// CheckRequired reports the store-level required-field violations as a
// *ValidationError, or nil when name, email and phone are all present.
func (f ContactFields) CheckRequired() error {
	verr := &ValidationError{}
	if strings.TrimSpace(f.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(f.Email) == "" {
		verr.Add("email", "email is required")
	}
	if strings.TrimSpace(f.Phone) == "" {
		verr.Add("phone", "phone is required")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// Fields returns the mutable fields of c.
func (c Contact) Fields() ContactFields {
	return ContactFields{Name: c.Name, Email: c.Email, Phone: c.Phone, Message: c.Message}
}

// Apply overwrites the mutable fields of c with f.
func (c *Contact) Apply(f ContactFields) {
	c.Name = f.Name
	c.Email = f.Email
	c.Phone = f.Phone
	c.Message = f.Message
}

// ValidationError collects per-field failures. Keys are JSON field names.
type ValidationError struct {
	Fields map[string]string
}

// Add records msg for field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
