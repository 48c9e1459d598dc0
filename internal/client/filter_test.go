package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-contacts-backend/internal/domain"
)

func sample() []domain.Contact {
	return []domain.Contact{
		{ID: "1", Name: "Ann Lee", Phone: "5550001111"},
		{ID: "2", Name: "Bob Stone", Phone: "5550002222"},
		{ID: "3", Name: "ÉMILE ZOLA", Phone: "4440003333"},
	}
}

func TestVisible_EmptyTermShowsAll(t *testing.T) {
	require.Len(t, Visible(State{Contacts: sample()}), 3)
}

func TestVisible_TermMatchedAsTyped(t *testing.T) {
	contacts := []domain.Contact{
		{ID: "1", Name: "Joanna", Phone: "5550001111"},
		{ID: "2", Name: "Ann Lee", Phone: "5550002222"},
	}
	got := Visible(State{Contacts: contacts, Search: "ann "})
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].ID)

	require.Empty(t, Visible(State{Contacts: contacts, Search: "   "}))
	require.Empty(t, Visible(State{Contacts: contacts, Search: " 555"}))
}

func TestVisible_NameCaseInsensitive(t *testing.T) {
	got := Visible(State{Contacts: sample(), Search: "ann"})
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)

	got = Visible(State{Contacts: sample(), Search: "STONE"})
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].ID)
}

func TestVisible_UnicodeFolding(t *testing.T) {
	got := Visible(State{Contacts: sample(), Search: "émile"})
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)
}

func TestVisible_PhoneSubstring(t *testing.T) {
	got := Visible(State{Contacts: sample(), Search: "555000"})
	require.Len(t, got, 2)
	require.Equal(t, []string{"1", "2"}, []string{got[0].ID, got[1].ID})
}

func TestVisible_NoMatchThenClear(t *testing.T) {
	s := State{Contacts: sample(), Search: "zzz"}
	require.Empty(t, Visible(s))

	s = Reduce(s, SearchCleared{})
	require.Len(t, Visible(s), 3)
}

func TestVisible_DoesNotModifyState(t *testing.T) {
	s := State{Contacts: sample(), Search: "bob"}
	_ = Visible(s)
	all := Visible(State{Contacts: s.Contacts})
	all[0].Name = "changed"
	require.Equal(t, "Ann Lee", s.Contacts[0].Name)
	require.Len(t, s.Contacts, 3)
}
