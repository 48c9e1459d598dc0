// Package validate holds the contact form rules shared by the submit gate and
// the inline field messages. The checks are heuristics: an email only needs
// an "@" and a "." and a phone number only needs to be digits.
//
// Phone policy: digits only, at least MinPhoneDigits digits.
package validate

import "strings"

// MinPhoneDigits is the shortest accepted phone number.
const MinPhoneDigits = 10

// Inline messages.
const (
	MsgNameRequired = "Name is required"
	MsgEmailInvalid = "Please enter a valid email address"
	MsgPhoneDigits  = "Please enter numbers only"
	MsgPhoneShort   = "Phone must be at least 10 digits"
)

// Form is the user-editable part of a contact.
type Form struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Result carries per-field validity and the inline message to display.
// A field can be invalid without a message: an empty email or phone blocks
// submission but is not flagged until the user types something.
type Result struct {
	NameOK, EmailOK, PhoneOK    bool
	NameMsg, EmailMsg, PhoneMsg string
}

// OK reports whether the form may be submitted.
func (r Result) OK() bool { return r.NameOK && r.EmailOK && r.PhoneOK }

// Fields returns the inline messages keyed by JSON field name, omitting
// fields without a message.
func (r Result) Fields() map[string]string {
	out := make(map[string]string, 3)
	if r.NameMsg != "" {
		out["name"] = r.NameMsg
	}
	if r.EmailMsg != "" {
		out["email"] = r.EmailMsg
	}
	if r.PhoneMsg != "" {
		out["phone"] = r.PhoneMsg
	}
	return out
}

// Check evaluates every rule against f.
func Check(f Form) Result {
	var r Result

	r.NameOK = f.Name != ""
	if !r.NameOK {
		r.NameMsg = MsgNameRequired
	}

	r.EmailOK = Email(f.Email)
	if f.Email != "" && !r.EmailOK {
		r.EmailMsg = MsgEmailInvalid
	}

	r.PhoneOK = Phone(f.Phone)
	if f.Phone != "" && !r.PhoneOK {
		if !Digits(f.Phone) {
			r.PhoneMsg = MsgPhoneDigits
		} else {
			r.PhoneMsg = MsgPhoneShort
		}
	}
	return r
}

// Email reports whether s contains both "@" and ".".
func Email(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}

// Phone reports whether s is all ASCII digits and at least MinPhoneDigits long.
func Phone(s string) bool {
	return len(s) >= MinPhoneDigits && Digits(s)
}

// Digits reports whether s is non-empty and made of ASCII digits only.
func Digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
