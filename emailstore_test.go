package emailstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmailState_Valid(t *testing.T) {
	for _, s := range []EmailState{StateDraft, StateSent, StateDeleted, StateSpam} {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, EmailState("draft").Valid())
	assert.False(t, EmailState("").Valid())
}

func TestEmailAddress(t *testing.T) {
	plain := EmailAddress{Address: "peter@example.com"}
	named := EmailAddress{Address: "peter@example.com", DisplayName: "Peter Mueller"}

	assert.True(t, plain.SameAs(named))
	assert.False(t, plain.SameAs(EmailAddress{Address: "paul@example.com"}))
	assert.Equal(t, "peter@example.com", plain.String())
	assert.Equal(t, "Peter Mueller", named.String())
}

func TestEmail_Equality(t *testing.T) {
	base := createTestEmail(StateSent, "a@example.com", "Hello")
	base.ID = 1

	same := copyEmail(base)
	assert.True(t, base.Equal(same))
	assert.True(t, base.ContentEqual(same))

	// State is excluded from content equality
	same.State = StateSpam
	assert.False(t, base.Equal(same))
	assert.True(t, base.ContentEqual(same))

	// ID is excluded from content equality
	other := copyEmail(base)
	other.ID = 2
	assert.False(t, base.Equal(other))
	assert.True(t, base.ContentEqual(other))

	// Timestamps compare by instant
	other = copyEmail(base)
	other.ModifiedDate = base.ModifiedDate.In(time.FixedZone("CET", 3600))
	assert.True(t, base.ContentEqual(other))

	changes := map[string]func(e *Email){
		"from":      func(e *Email) { e.From.Address = "z@example.com" },
		"from name": func(e *Email) { e.From.DisplayName = "Someone else" },
		"to":        func(e *Email) { e.To = e.To[:1] },
		"to name":   func(e *Email) { e.To[0].DisplayName = "Forged Alice" },
		"to order":  func(e *Email) { e.To[0], e.To[1] = e.To[1], e.To[0] },
		"cc":        func(e *Email) { e.Cc = nil },
		"subject":   func(e *Email) { e.Subject = "x" },
		"body":      func(e *Email) { e.Body = "x" },
		"modified":  func(e *Email) { e.ModifiedDate = e.ModifiedDate.Add(time.Second) },
	}
	for name, change := range changes {
		changed := copyEmail(base)
		change(changed)
		assert.False(t, base.ContentEqual(changed), name)
	}

	var nilEmail *Email
	assert.True(t, nilEmail.Equal(nil))
	assert.False(t, base.Equal(nil))
}

func TestNewEmail(t *testing.T) {
	from := EmailAddress{Address: "me@example.com"}
	now := time.Now()

	draft := NewDraftEmail(from, nil, nil, "Subject", "Body", now)
	assert.Equal(t, StateDraft, draft.State)
	assert.NoError(t, draft.Validate())

	received := NewReceivedEmail(from, []EmailAddress{{Address: "you@example.com"}}, nil, "", "", now)
	assert.Equal(t, StateSent, received.State)
	assert.NoError(t, received.Validate())

	email := received.ToEmail()
	assert.Zero(t, email.ID)
	assert.Equal(t, []EmailAddress{{Address: "you@example.com"}}, email.To)
	assert.NotNil(t, email.Cc)
	assert.True(t, now.Equal(email.ModifiedDate))

	// The conversion does not share slices with the input
	received.To[0].Address = "changed@example.com"
	assert.Equal(t, "you@example.com", email.To[0].Address)

	var nilEmail *NewEmail
	assert.ErrorIs(t, nilEmail.Validate(), ErrInvalidEmail)
	assert.ErrorIs(t, (&NewEmail{State: StateSent}).Validate(), ErrInvalidEmail)
	assert.ErrorIs(t, (&NewEmail{State: "X", From: from}).Validate(), ErrInvalidEmail)
}
