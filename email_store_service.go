package emailstore

import (
	"context"

	"go.uber.org/zap"
)

// DefaultEmailStore implements the EmailStore interface on top of an EmailRepository
type DefaultEmailStore struct {
	repo   EmailRepository // Storage backend
	logger *zap.Logger
}

// NewDefaultEmailStore creates a new email store with the provided repository
func NewDefaultEmailStore(repo EmailRepository, logger *zap.Logger) *DefaultEmailStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DefaultEmailStore{
		repo:   repo,
		logger: logger,
	}
}

// Insert stores a new email and returns the stored version
func (s *DefaultEmailStore) Insert(ctx context.Context, newEmail *NewEmail) (*Email, error) {
	if err := newEmail.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.repo.Save(ctx, newEmail.ToEmail())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Inserted email",
		zap.Uint64("id", stored.ID),
		zap.Stringer("state", stored.State))
	return stored, nil
}

// InsertMany stores all valid new emails and returns what the repository stored
func (s *DefaultEmailStore) InsertMany(ctx context.Context, newEmails []*NewEmail) ([]*Email, error) {
	if len(newEmails) == 0 {
		return []*Email{}, nil
	}

	emails := make([]*Email, 0, len(newEmails))
	for i, newEmail := range newEmails {
		if err := newEmail.Validate(); err != nil {
			s.logger.Warn("Skipping invalid email in batch insert",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		emails = append(emails, newEmail.ToEmail())
	}

	stored, err := s.repo.SaveAll(ctx, emails)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Inserted emails",
		zap.Int("requested", len(newEmails)),
		zap.Int("stored", len(stored)))
	return stored, nil
}

// GetByID gets an email by ID
func (s *DefaultEmailStore) GetByID(ctx context.Context, id uint64) (*Email, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByIDs gets every stored email among ids, unknown IDs are left out
func (s *DefaultEmailStore) GetByIDs(ctx context.Context, ids []uint64) ([]*Email, error) {
	if len(ids) == 0 {
		return []*Email{}, nil
	}

	return s.repo.FindAllByID(ctx, ids)
}

// Update replaces state and content of the stored email after checking the
// transition rules
func (s *DefaultEmailStore) Update(ctx context.Context, id uint64, updated *Email) error {
	if updated == nil {
		return invalidEmail("updated email cannot be nil")
	}

	orig, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := CheckUpdateAllowed(orig, updated); err != nil {
		s.logger.Info("Rejected email update",
			zap.Uint64("id", id),
			zap.Error(err))
		return err
	}

	orig.State = updated.State
	orig.From = updated.From
	orig.To = copyAddresses(updated.To)
	orig.Cc = copyAddresses(updated.Cc)
	orig.Subject = updated.Subject
	orig.Body = updated.Body
	orig.ModifiedDate = updated.ModifiedDate

	if _, err := s.repo.Save(ctx, orig); err != nil {
		return err
	}

	s.logger.Debug("Updated email",
		zap.Uint64("id", id),
		zap.Stringer("state", orig.State))
	return nil
}

// CheckUpdateAllowed returns an *UpdateNotAllowedError when replacing orig
// with updated breaks a transition rule:
//  1. the ID never changes
//  2. a DRAFT may stay DRAFT or become SENT
//  3. content of a DRAFT may change only while it stays DRAFT
//  4. non-DRAFT emails move freely among SENT, DELETED and SPAM, never back to DRAFT
//  5. content of non-DRAFT emails never changes
func CheckUpdateAllowed(orig, updated *Email) error {
	reject := func(reason string) error {
		return &UpdateNotAllowedError{ID: orig.ID, Reason: reason}
	}

	if updated.ID != orig.ID {
		return reject(ReasonChangedID)
	}

	if !updated.State.Valid() {
		return reject(ReasonInvalidState)
	}

	if orig.State == StateDraft {
		if updated.State != StateDraft && updated.State != StateSent {
			return reject(ReasonDraftToOther)
		}

		if updated.State != StateDraft && haveDifferentContent(orig, updated) {
			return reject(ReasonDraftToSentContent)
		}

		return nil
	}

	if updated.State == StateDraft {
		return reject(ReasonNonDraftToDraft)
	}

	if haveDifferentContent(orig, updated) {
		return reject(ReasonNonDraftContent)
	}

	return nil
}

// haveDifferentContent compares orig, with its state overridden by the
// updated state, against updated. orig itself is left untouched.
func haveDifferentContent(orig, updated *Email) bool {
	probe := *orig
	probe.State = updated.State
	return !probe.Equal(updated)
}

// Delete marks an email as DELETED
func (s *DefaultEmailStore) Delete(ctx context.Context, id uint64) error {
	email, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	email.State = StateDeleted
	if _, err := s.repo.Save(ctx, email); err != nil {
		return err
	}

	s.logger.Debug("Deleted email", zap.Uint64("id", id))
	return nil
}

// DeleteMany marks every stored email among ids as DELETED, unknown IDs are ignored
func (s *DefaultEmailStore) DeleteMany(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	emails, err := s.repo.FindAllByID(ctx, ids)
	if err != nil {
		return err
	}

	for _, email := range emails {
		email.State = StateDeleted
	}

	if _, err := s.repo.SaveAll(ctx, emails); err != nil {
		return err
	}

	s.logger.Debug("Deleted emails",
		zap.Int("requested", len(ids)),
		zap.Int("deleted", len(emails)))
	return nil
}

// Purge physically removes an email
func (s *DefaultEmailStore) Purge(ctx context.Context, id uint64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound(id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Purged email", zap.Uint64("id", id))
	return nil
}

// PurgeMany physically removes every stored email among ids, unknown IDs are ignored
func (s *DefaultEmailStore) PurgeMany(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := s.repo.DeleteAllByID(ctx, ids); err != nil {
		return err
	}

	s.logger.Info("Purged emails", zap.Int("requested", len(ids)))
	return nil
}
