package client

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-contacts-backend/internal/domain"
	"github.com/tbourn/go-contacts-backend/internal/validate"
)

// User-facing texts.
const (
	ConfirmDeletePrompt = "Are you sure you want to delete this contact?"
	AlertSaveFailed     = "Error saving contact"
	AlertDeleteFailed   = "Error deleting contact"
)

// ErrSubmitBlocked is returned by Submit when the submit gate is closed.
var ErrSubmitBlocked = errors.New("form is incomplete or a submission is in flight")

// API is the contacts service as seen by the App.
type API interface {
	List(ctx context.Context) ([]domain.Contact, error)
	Create(ctx context.Context, f validate.Form) (*domain.Contact, error)
	Update(ctx context.Context, id string, f validate.Form) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Alerter shows a blocking error notice.
type Alerter interface {
	Alert(msg string)
}

// App drives State through the API on behalf of a user interface. Methods
// are safe for concurrent use; each one runs its requests to completion.
type App struct {
	api     API
	confirm Confirmer
	alert   Alerter
	log     zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewApp wires an App. log may be a zero zerolog.Logger (discards output).
func NewApp(api API, confirm Confirmer, alert Alerter, log zerolog.Logger) *App {
	return &App{api: api, confirm: confirm, alert: alert, log: log}
}

// State returns a snapshot of the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Contacts = append([]domain.Contact(nil), s.Contacts...)
	return s
}

func (a *App) dispatch(act Action) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Reduce(a.state, act)
	return a.state
}

// Load replaces the list with a fresh fetch. Fetch errors are logged and
// returned; the previous list stays in place.
func (a *App) Load(ctx context.Context) error {
	items, err := a.api.List(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("list contacts failed")
		return err
	}
	a.dispatch(ListLoaded{Contacts: items})
	return nil
}

// SetField updates one form input.
func (a *App) SetField(f Field, v string) State { return a.dispatch(FieldChanged{Field: f, Value: v}) }

// StartEdit copies the contact with the given id into the form. It reports
// false when no listed contact has that id.
func (a *App) StartEdit(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.state.Contacts {
		if c.ID == id {
			a.state = Reduce(a.state, EditStarted{Contact: c})
			return true
		}
	}
	return false
}

// CancelEdit drops the edit target and clears the form. No request is made.
func (a *App) CancelEdit() State { return a.dispatch(EditCancelled{}) }

// SetSearch sets the list filter.
func (a *App) SetSearch(term string) State { return a.dispatch(SearchChanged{Term: term}) }

// ClearSearch removes the list filter.
func (a *App) ClearSearch() State { return a.dispatch(SearchCleared{}) }

// Submit creates a contact, or updates the one being edited, then re-fetches
// the list. Failures raise AlertSaveFailed and leave the form populated.
func (a *App) Submit(ctx context.Context) error {
	a.mu.Lock()
	if !CanSubmit(a.state) {
		a.mu.Unlock()
		return ErrSubmitBlocked
	}
	a.state = Reduce(a.state, SubmitStarted{})
	form, id := a.state.Form, a.state.EditingID
	a.mu.Unlock()

	var err error
	if id != "" {
		_, err = a.api.Update(ctx, id, form)
	} else {
		_, err = a.api.Create(ctx, form)
	}
	if err != nil {
		a.dispatch(SubmitFailed{})
		a.log.Error().Err(err).Bool("update", id != "").Msg("save contact failed")
		a.notify(AlertSaveFailed)
		return err
	}

	a.dispatch(SubmitSucceeded{})
	return a.Load(ctx)
}

// Delete asks for confirmation, deletes contact id and re-fetches the list.
// Declining makes no request and returns (false, nil). Deleting the contact
// being edited also cancels the edit.
func (a *App) Delete(ctx context.Context, id string) (bool, error) {
	if a.confirm != nil && !a.confirm.Confirm(ConfirmDeletePrompt) {
		return false, nil
	}
	if err := a.api.Delete(ctx, id); err != nil {
		a.log.Error().Err(err).Msg("delete contact failed")
		a.notify(AlertDeleteFailed)
		return true, err
	}
	a.mu.Lock()
	if a.state.EditingID == id {
		a.state = Reduce(a.state, EditCancelled{})
	}
	a.mu.Unlock()
	return true, a.Load(ctx)
}

func (a *App) notify(msg string) {
	if a.alert != nil {
		a.alert.Alert(msg)
	}
}
