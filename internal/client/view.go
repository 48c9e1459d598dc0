package client

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// View texts.
const (
	LabelSubmit     = "Submit Contact"
	LabelUpdate     = "Update Contact"
	LabelSaving     = "Saving..."
	TextEmptyList   = "No contacts found."
	TextNoMatchHint = "Type 'clear' to show all contacts."
)

// SubmitLabel is the caption of the submit control for s.
func SubmitLabel(s State) string {
	switch s.Mode() {
	case ModeSubmitting:
		return LabelSaving
	case ModeEditing:
		return LabelUpdate
	default:
		return LabelSubmit
	}
}

// Render writes the form and the visible list. List rows are numbered from 1
// in display order; RowID maps a number back to a contact id.
func Render(w io.Writer, s State) error {
	var b strings.Builder
	renderForm(&b, s)
	b.WriteString("\n")
	renderList(&b, s)
	_, err := io.WriteString(w, b.String())
	return err
}

// RowID returns the id of the n-th (1-based) visible contact.
func RowID(s State, n int) (string, bool) {
	rows := Visible(s)
	if n < 1 || n > len(rows) {
		return "", false
	}
	return rows[n-1].ID, true
}

func renderForm(b *strings.Builder, s State) {
	if s.Mode() == ModeEditing {
		b.WriteString("== Edit contact ==  (type 'cancel' to discard)\n")
	} else {
		b.WriteString("== New contact ==\n")
	}
	res := s.Validation()
	field(b, "Name", s.Form.Name, res.NameMsg)
	field(b, "Email", s.Form.Email, res.EmailMsg)
	field(b, "Phone", s.Form.Phone, res.PhoneMsg)
	field(b, "Message", s.Form.Message, "")

	state := "disabled"
	if CanSubmit(s) {
		state = "ready"
	}
	fmt.Fprintf(b, "[ %s ] (%s)\n", SubmitLabel(s), state)
}

func field(b *strings.Builder, label, value, msg string) {
	fmt.Fprintf(b, "  %-8s %s\n", label+":", value)
	if msg != "" {
		fmt.Fprintf(b, "           ! %s\n", msg)
	}
}

func renderList(b *strings.Builder, s State) {
	term := s.Search
	if term != "" {
		fmt.Fprintf(b, "== Contacts (search: %q) ==\n", term)
	} else {
		b.WriteString("== Contacts ==\n")
	}

	rows := Visible(s)
	switch {
	case len(s.Contacts) == 0:
		b.WriteString(TextEmptyList + "\n")
		return
	case len(rows) == 0:
		fmt.Fprintf(b, "No contacts match %q.\n%s\n", term, TextNoMatchHint)
		return
	}

	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	for i, c := range rows {
		mark := ""
		if c.ID == s.EditingID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\t%s\n", i+1, mark, c.Name, c.Email, c.Phone, c.Message)
	}
	_ = tw.Flush()
}

