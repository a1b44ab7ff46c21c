package emailstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestEmail creates an unsaved test email with the given parameters
func createTestEmail(state EmailState, from, subject string) *Email {
	return &Email{
		State: state,
		From:  EmailAddress{Address: from, DisplayName: "Sender " + from},
		To: []EmailAddress{
			{Address: "alice@example.com", DisplayName: "Alice"},
			{Address: "bob@example.com"},
		},
		Cc:           []EmailAddress{{Address: "carol@example.com"}},
		Subject:      subject,
		Body:         "Body of " + subject,
		ModifiedDate: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryEmailRepository_Save(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	// Test saving a new email assigns an ID
	email := createTestEmail(StateDraft, "me@example.com", "Draft")
	stored, err := repo.Save(ctx, email)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Zero(t, email.ID, "input must not be modified")
	assert.True(t, email.ContentEqual(stored))

	// IDs are unique
	other, err := repo.Save(ctx, createTestEmail(StateSent, "me@example.com", "Other"))
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, other.ID)

	// Saving with an ID replaces the stored version
	stored.Subject = "Changed"
	_, err = repo.Save(ctx, stored)
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", found.Subject)

	// Nil slices are normalized
	bare := &Email{State: StateSent, From: EmailAddress{Address: "x@example.com"}}
	stored, err = repo.Save(ctx, bare)
	require.NoError(t, err)
	assert.NotNil(t, stored.To)
	assert.NotNil(t, stored.Cc)

	// Test saving nil email
	_, err = repo.Save(ctx, nil)
	assert.Error(t, err)
}

func TestMemoryEmailRepository_SaveExplicitID(t *testing.T) {
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	// Store an email under an ID the generator has not handed out yet
	explicit := createTestEmail(StateSent, "me@example.com", "Explicit")
	explicit.ID = 2
	_, err := repo.Save(ctx, explicit)
	require.NoError(t, err)

	first, err := repo.Save(ctx, createTestEmail(StateDraft, "me@example.com", "First"))
	require.NoError(t, err)
	second, err := repo.Save(ctx, createTestEmail(StateDraft, "me@example.com", "Second"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(3), second.ID)

	// The explicitly stored email is left intact
	found, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Explicit", found.Subject)
}

func TestMemoryEmailRepository_SaveAll(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	emails := []*Email{
		createTestEmail(StateDraft, "a@example.com", "One"),
		nil,
		createTestEmail(StateSent, "b@example.com", "Two"),
	}

	// Nil entries are skipped
	stored, err := repo.SaveAll(ctx, emails)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "One", stored[0].Subject)
	assert.Equal(t, "Two", stored[1].Subject)
	assert.NotEqual(t, stored[0].ID, stored[1].ID)

	// Empty input
	stored, err = repo.SaveAll(ctx, []*Email{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMemoryEmailRepository_FindByID(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	stored, err := repo.Save(ctx, createTestEmail(StateSent, "a@example.com", "Hello"))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, stored.Equal(found))

	// Returned values are copies
	found.To[0].Address = "mallory@example.com"
	again, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", again.To[0].Address)

	// Test retrieving non-existent email
	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestMemoryEmailRepository_FindAllByID(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	first, err := repo.Save(ctx, createTestEmail(StateSent, "a@example.com", "First"))
	require.NoError(t, err)
	second, err := repo.Save(ctx, createTestEmail(StateSent, "a@example.com", "Second"))
	require.NoError(t, err)

	// Request order is kept, unknown and duplicate IDs are dropped
	found, err := repo.FindAllByID(ctx, []uint64{second.ID, 999, first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, second.ID, found[0].ID)
	assert.Equal(t, first.ID, found[1].ID)

	// Nothing found
	found, err = repo.FindAllByID(ctx, []uint64{998, 999})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMemoryEmailRepository_ExistsByID(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	stored, err := repo.Save(ctx, createTestEmail(StateSent, "a@example.com", "Hello"))
	require.NoError(t, err)

	exists, err := repo.ExistsByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryEmailRepository_FindAllBySenderAddress(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	_, err := repo.SaveAll(ctx, []*Email{
		createTestEmail(StateSent, "spam@example.com", "One"),
		createTestEmail(StateDraft, "friend@example.com", "Two"),
		createTestEmail(StateSpam, "spam@example.com", "Three"),
	})
	require.NoError(t, err)

	found, err := repo.FindAllBySenderAddress(ctx, "spam@example.com")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "One", found[0].Subject)
	assert.Equal(t, "Three", found[1].Subject)

	// Display name does not matter, only the address
	found, err = repo.FindAllBySenderAddress(ctx, "Sender spam@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMemoryEmailRepository_Delete(t *testing.T) {
	// Initialize repository
	repo := NewMemoryEmailRepository()
	ctx := context.Background()

	stored, err := repo.SaveAll(ctx, []*Email{
		createTestEmail(StateSent, "a@example.com", "One"),
		createTestEmail(StateSent, "a@example.com", "Two"),
		createTestEmail(StateSent, "a@example.com", "Three"),
	})
	require.NoError(t, err)

	// Delete single email
	require.NoError(t, repo.DeleteByID(ctx, stored[0].ID))
	exists, err := repo.ExistsByID(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Unknown IDs are ignored
	assert.NoError(t, repo.DeleteByID(ctx, 999))
	assert.NoError(t, repo.DeleteAllByID(ctx, []uint64{stored[1].ID, 999}))

	remaining, err := repo.FindAllByID(ctx, []uint64{stored[0].ID, stored[1].ID, stored[2].ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, stored[2].ID, remaining[0].ID)
}
