package emailstore

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailNotFound is returned when no email is stored under an id
	ErrEmailNotFound = errors.New("email not found")

	// ErrUpdateNotAllowed matches every *UpdateNotAllowedError
	ErrUpdateNotAllowed = errors.New("email update not allowed")

	// ErrInvalidEmail is returned for malformed input
	ErrInvalidEmail = errors.New("invalid email")
)

// Reasons carried by UpdateNotAllowedError
const (
	ReasonInvalidState       = "invalid state"
	ReasonChangedID          = "changed id"
	ReasonDraftToOther       = "DRAFT email to other than DRAFT or SENT"
	ReasonDraftToSentContent = "no content change on DRAFT email to SENT"
	ReasonNonDraftToDraft    = "non-DRAFT email to DRAFT"
	ReasonNonDraftContent    = "non-DRAFT changed content"
)

// UpdateNotAllowedError reports which transition rule an update violated
type UpdateNotAllowedError struct {
	ID     uint64
	Reason string
}

func (e *UpdateNotAllowedError) Error() string {
	return fmt.Sprintf("update of email (id: %d) is not allowed, reason: %s", e.ID, e.Reason)
}

func (e *UpdateNotAllowedError) Is(target error) bool {
	return target == ErrUpdateNotAllowed
}

func notFound(id uint64) error {
	return fmt.Errorf("%w: no email with id %d", ErrEmailNotFound, id)
}

func invalidEmail(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEmail, fmt.Sprintf(format, args...))
}
