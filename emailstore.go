package emailstore

import (
	"context"
	"time"
)

// EmailState is the lifecycle state of a stored email
type EmailState string

const (
	StateDraft   EmailState = "DRAFT"
	StateSent    EmailState = "SENT"
	StateDeleted EmailState = "DELETED"
	StateSpam    EmailState = "SPAM"
)

// Valid reports whether s is one of the known states
func (s EmailState) Valid() bool {
	switch s {
	case StateDraft, StateSent, StateDeleted, StateSpam:
		return true
	}
	return false
}

func (s EmailState) String() string {
	return string(s)
}

// EmailAddress identifies a mailbox. Two addresses are the same mailbox when
// Address matches; DisplayName is cosmetic and may be empty.
type EmailAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
}

// SameAs reports whether both values name the same mailbox
func (a EmailAddress) SameAs(other EmailAddress) bool {
	return a.Address == other.Address
}

func (a EmailAddress) String() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Address
}

// Email represents a stored email
type Email struct {
	ID           uint64         `json:"id"`           // Assigned by the repository, immutable
	State        EmailState     `json:"state"`        // Current lifecycle state
	From         EmailAddress   `json:"from"`         // Sender
	To           []EmailAddress `json:"to"`           // Main receivers (may be empty)
	Cc           []EmailAddress `json:"cc"`           // Carbon copy receivers (may be empty)
	Subject      string         `json:"subject"`      // Subject (may be empty)
	Body         string         `json:"body"`         // Main content (may be empty)
	ModifiedDate time.Time      `json:"modifiedDate"` // Last content or state change
}

// Equal reports full equality including ID and State
func (e *Email) Equal(other *Email) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID && e.State == other.State && e.ContentEqual(other)
}

// ContentEqual compares the content fields only, ignoring ID and State.
// Addresses must match including their display names.
func (e *Email) ContentEqual(other *Email) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.From == other.From &&
		sameAddresses(e.To, other.To) &&
		sameAddresses(e.Cc, other.Cc) &&
		e.Subject == other.Subject &&
		e.Body == other.Body &&
		e.ModifiedDate.Equal(other.ModifiedDate)
}

// NewEmail carries the caller supplied fields of an email that has not been
// stored yet
type NewEmail struct {
	State        EmailState     `json:"state"`
	From         EmailAddress   `json:"from"`
	To           []EmailAddress `json:"to"`
	Cc           []EmailAddress `json:"cc"`
	Subject      string         `json:"subject"`
	Body         string         `json:"body"`
	ModifiedDate time.Time      `json:"modifiedDate"`
}

// NewDraftEmail builds a user-authored email in state DRAFT
func NewDraftEmail(from EmailAddress, to, cc []EmailAddress, subject, body string, modified time.Time) *NewEmail {
	return &NewEmail{
		State:        StateDraft,
		From:         from,
		To:           to,
		Cc:           cc,
		Subject:      subject,
		Body:         body,
		ModifiedDate: modified,
	}
}

// NewReceivedEmail builds a received email in state SENT
func NewReceivedEmail(from EmailAddress, to, cc []EmailAddress, subject, body string, received time.Time) *NewEmail {
	return &NewEmail{
		State:        StateSent,
		From:         from,
		To:           to,
		Cc:           cc,
		Subject:      subject,
		Body:         body,
		ModifiedDate: received,
	}
}

// Validate checks the fields every stored email must carry
func (n *NewEmail) Validate() error {
	if n == nil {
		return ErrInvalidEmail
	}
	return validateFields(n.State, n.From)
}

// ToEmail converts n into an unsaved Email
func (n *NewEmail) ToEmail() *Email {
	return &Email{
		State:        n.State,
		From:         n.From,
		To:           copyAddresses(n.To),
		Cc:           copyAddresses(n.Cc),
		Subject:      n.Subject,
		Body:         n.Body,
		ModifiedDate: n.ModifiedDate,
	}
}

// EmailStore defines the lifecycle operations on stored emails
type EmailStore interface {
	// Insert operations
	Insert(ctx context.Context, newEmail *NewEmail) (*Email, error)
	InsertMany(ctx context.Context, newEmails []*NewEmail) ([]*Email, error)

	// Query operations
	GetByID(ctx context.Context, id uint64) (*Email, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]*Email, error)

	// Update operations
	Update(ctx context.Context, id uint64, updated *Email) error

	// Delete operations (state transition to DELETED)
	Delete(ctx context.Context, id uint64) error
	DeleteMany(ctx context.Context, ids []uint64) error

	// Physical removal
	Purge(ctx context.Context, id uint64) error
	PurgeMany(ctx context.Context, ids []uint64) error
}

func validateFields(state EmailState, from EmailAddress) error {
	if !state.Valid() {
		return invalidEmail("unknown state %q", state)
	}
	if from.Address == "" {
		return invalidEmail("sender address cannot be empty")
	}
	return nil
}

func sameAddresses(a, b []EmailAddress) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func copyAddresses(addrs []EmailAddress) []EmailAddress {
	out := make([]EmailAddress, len(addrs))
	copy(out, addrs)
	return out
}

// copyEmail deep copies an email so callers never share slices with stored state
func copyEmail(email *Email) *Email {
	if email == nil {
		return nil
	}

	emailCopy := *email
	emailCopy.To = copyAddresses(email.To)
	emailCopy.Cc = copyAddresses(email.Cc)
	return &emailCopy
}
