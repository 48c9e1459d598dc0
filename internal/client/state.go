package client

import (
	"github.com/tbourn/go-contacts-backend/internal/domain"
	"github.com/tbourn/go-contacts-backend/internal/validate"
)

// Mode is the form's interaction mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditing
	ModeSubmitting
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldMessage Field = "message"
)

// State is the complete front-end state. Values are treated as immutable:
// Reduce returns a new State and never writes through the old one.
type State struct {
	Form       validate.Form
	EditingID  string // target of the pending update; "" when creating
	Search     string
	Submitting bool
	Contacts   []domain.Contact
}

// Mode derives the interaction mode. Submitting wins over editing.
func (s State) Mode() Mode {
	switch {
	case s.Submitting:
		return ModeSubmitting
	case s.EditingID != "":
		return ModeEditing
	default:
		return ModeIdle
	}
}

// Validation evaluates the form rules for the current input.
func (s State) Validation() validate.Result { return validate.Check(s.Form) }

// CanSubmit is the submit gate: every rule passes and no request is in flight.
func CanSubmit(s State) bool {
	return !s.Submitting && s.Validation().OK()
}

// Action is a state transition request handled by Reduce.
type Action interface{ isAction() }

type (
	// FieldChanged sets one form input.
	FieldChanged struct {
		Field Field
		Value string
	}
	// EditStarted loads a listed contact into the form for updating.
	EditStarted struct{ Contact domain.Contact }
	// EditCancelled drops the edit target and clears the form.
	EditCancelled struct{}
	// SubmitStarted marks a create/update request in flight.
	SubmitStarted struct{}
	// SubmitSucceeded clears the form and returns to idle.
	SubmitSucceeded struct{}
	// SubmitFailed releases the submit lock and keeps the form for resubmission.
	SubmitFailed struct{}
	// ListLoaded replaces the whole contact list.
	ListLoaded struct{ Contacts []domain.Contact }
	// SearchChanged sets the filter term.
	SearchChanged struct{ Term string }
	// SearchCleared empties the filter term.
	SearchCleared struct{}
)

func (FieldChanged) isAction()    {}
func (EditStarted) isAction()     {}
func (EditCancelled) isAction()   {}
func (SubmitStarted) isAction()   {}
func (SubmitSucceeded) isAction() {}
func (SubmitFailed) isAction()    {}
func (ListLoaded) isAction()      {}
func (SearchChanged) isAction()   {}
func (SearchCleared) isAction()   {}

// Reduce applies a to s. Form edits, edit selection and cancel are ignored
// while a submission is in flight.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FieldChanged:
		if s.Submitting {
			return s
		}
		s.Form = setField(s.Form, a.Field, a.Value)
	case EditStarted:
		if s.Submitting {
			return s
		}
		s.EditingID = a.Contact.ID
		s.Form = validate.Form{
			Name:    a.Contact.Name,
			Email:   a.Contact.Email,
			Phone:   a.Contact.Phone,
			Message: a.Contact.Message,
		}
	case EditCancelled:
		if s.Submitting {
			return s
		}
		s.EditingID = ""
		s.Form = validate.Form{}
	case SubmitStarted:
		s.Submitting = true
	case SubmitSucceeded:
		s.Submitting = false
		s.EditingID = ""
		s.Form = validate.Form{}
	case SubmitFailed:
		s.Submitting = false
	case ListLoaded:
		s.Contacts = append([]domain.Contact(nil), a.Contacts...)
	case SearchChanged:
		s.Search = a.Term
	case SearchCleared:
		s.Search = ""
	}
	return s
}

func setField(f validate.Form, field Field, v string) validate.Form {
	switch field {
	case FieldName:
		f.Name = v
	case FieldEmail:
		f.Email = v
	case FieldPhone:
		f.Phone = v
	case FieldMessage:
		f.Message = v
	}
	return f
}
