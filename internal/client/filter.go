package client

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

// Visible returns the contacts matching s.Search: a case-insensitive
// substring of the name or a raw substring of the phone. The term is matched
// as typed; only an empty term matches everything. The result is a new slice
// and s is not modified.
func Visible(s State) []domain.Contact {
	term := s.Search
	if term == "" {
		return append([]domain.Contact(nil), s.Contacts...)
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]domain.Contact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		if strings.Contains(fold.String(c.Name), needle) || strings.Contains(c.Phone, term) {
			out = append(out, c)
		}
	}
	return out
}
