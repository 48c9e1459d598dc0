// Contact HTTP handlers.
//
// This file exposes REST endpoints for contact resources:
//   - POST   /contacts        (create, Idempotency-Key aware)
//   - GET    /contacts        (list newest first, ETag support)
//   - PUT    /contacts/{id}   (full-field replace)
//   - DELETE /contacts/{id}   (idempotent delete)
//
// Handlers are transport-thin: they validate input, call the contact service,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-contacts-backend/internal/domain"
	"github.com/tbourn/go-contacts-backend/internal/http/middleware"
	"github.com/tbourn/go-contacts-backend/internal/services"
)

// ContactService defines the contact operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ContactService interface {
	// Create stores a new contact; replayed is true for an idempotent retry.
	Create(ctx context.Context, f domain.ContactFields, idemKey string) (c *domain.Contact, replayed bool, err error)
	// List returns every contact, newest first.
	List(ctx context.Context) ([]domain.Contact, error)
	// Stats returns the contact count and newest UpdatedAt for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
	// Update replaces the mutable fields of a contact.
	Update(ctx context.Context, id string, f domain.ContactFields) (*domain.Contact, error)
	// Delete removes a contact; missing ids succeed.
	Delete(ctx context.Context, id string) error
}

// Handlers groups the contact HTTP endpoints.
type Handlers struct {
	svc ContactService
}

// New constructs and returns a Handlers instance bound to svc.
func New(svc ContactService) *Handlers {
	return &Handlers{svc: svc}
}

// HeaderReplayed marks a create response served from an idempotency record.
const HeaderReplayed = "Idempotent-Replayed"

// deletedMessage is the confirmation returned by DELETE.
const deletedMessage = "Contact deleted successfully"

//
// DTOs
//

// ContactRequest is the JSON payload for creating or replacing a contact.
type ContactRequest struct {
	Name    string `json:"name"    example:"Ann"`
	Email   string `json:"email"   example:"a@b.com"`
	Phone   string `json:"phone"   example:"1234567890"`
	Message string `json:"message" example:"hello"`
}

func (r ContactRequest) fields() domain.ContactFields {
	return domain.ContactFields{Name: r.Name, Email: r.Email, Phone: r.Phone, Message: r.Message}
}

// DeleteResponse confirms a delete.
type DeleteResponse struct {
	Message string `json:"message" example:"Contact deleted successfully"`
}

//
// Helpers
//

// contactID reads and validates the :id path parameter.
func contactID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contact id must be a UUID")
		return "", false
	}
	return id, true
}

// failValidation writes a 400 with per-field details when err is a
// validation error and reports whether it did.
func failValidation(c *gin.Context, err error) bool {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	failFields(c, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Fields)
	return true
}

//
// Handlers
//

// CreateContact godoc
// @ID          createContact
// @Summary     Create a contact
// @Description Stores a new contact and returns it with its generated id and timestamps.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Replay-safe retry key"  example(7b3c9a1e-create)
// @Param       body             body    handlers.ContactRequest  true  "Contact fields"
//
// @Success     201  {object}  domain.Contact
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or missing required field"
// @Failure     500  {object}  handlers.ErrorResponse  "Store failure"
// @Router      /contacts [post]
func (h *Handlers) CreateContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	ct, replayed, err := h.svc.Create(c.Request.Context(), req.fields(), key)
	if err != nil {
		if failValidation(c, err) {
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	if replayed {
		c.Header(HeaderReplayed, "true")
	}
	ok(c, http.StatusCreated, ct)
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List contacts
// @Description Returns every contact, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Contacts
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"contacts:2:1700000000000000000\")
//
// @Success     200  {array}   domain.Contact
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /contacts [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"contacts:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.svc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Contact{}
	}
	ok(c, http.StatusOK, items)
}

// UpdateContact godoc
// @ID          updateContact
// @Summary     Replace a contact
// @Description Replaces name, email, phone and message of an existing contact.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Contact ID (UUID)"  format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
// @Param       body  body  handlers.ContactRequest  true  "Replacement fields"
//
// @Success     200  {object}  domain.Contact
// @Failure     400  {object}  handlers.ErrorResponse "Bad request or missing required field"
// @Failure     404  {object}  handlers.ErrorResponse "Contact not found"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /contacts/{id} [put]
func (h *Handlers) UpdateContact(c *gin.Context) {
	id, valid := contactID(c)
	if !valid {
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ct, err := h.svc.Update(c.Request.Context(), id, req.fields())
	switch {
	case err == nil:
		ok(c, http.StatusOK, ct)
	case errors.Is(err, services.ErrContactNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "contact not found")
	case failValidation(c, err):
	default:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
	}
}

// DeleteContact godoc
// @ID          deleteContact
// @Summary     Delete a contact
// @Description Removes a contact. Deleting an id that no longer exists also succeeds.
// @Tags        Contacts
// @Produce     json
//
// @Param       id  path  string  true  "Contact ID (UUID)"  format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
//
// @Success     200  {object}  handlers.DeleteResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /contacts/{id} [delete]
func (h *Handlers) DeleteContact(c *gin.Context) {
	id, valid := contactID(c)
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, DeleteResponse{Message: deletedMessage})
}
