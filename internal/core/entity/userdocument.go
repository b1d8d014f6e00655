package entity

import "time"

// UserDocument is a user-uploaded source file, tracked through ingestion
// independently of the Document it eventually produces.
type UserDocument struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId"`
	Title        string             `json:"title"`
	Status       UserDocumentStatus `json:"status"`
	ErrorMessage *string            `json:"errorMessage,omitempty"`
	FilePath     *string            `json:"filePath,omitempty"`
	MimeType     string             `json:"mimeType"`
	DocumentSlug *string            `json:"documentSlug,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt"`

	// RequestedOwnerSlug, RequestedAccessLevel, and RequestedPasscode carry
	// the publishing configuration chosen at upload time, through to the
	// Document the ingestion pipeline creates on success.
	RequestedOwnerSlug   *string     `json:"requestedOwnerSlug,omitempty"`
	RequestedAccessLevel AccessLevel `json:"requestedAccessLevel"`
	RequestedPasscode    *string     `json:"-"`
}

// TransitionTo moves the user document to target, returning
// ErrInvalidStatusTransition if the edge is not permitted by
// UserDocumentStatus.CanTransitionTo.
func (u *UserDocument) TransitionTo(target UserDocumentStatus) error {
	if !u.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	u.Status = target
	return nil
}

// MarkError transitions the document to error, recording a human-readable
// message and clearing any derived document link.
func (u *UserDocument) MarkError(message string) error {
	if err := u.TransitionTo(UserDocumentStatusError); err != nil {
		return err
	}
	u.ErrorMessage = &message
	return nil
}

// MarkReady transitions the document to ready, clearing any prior error and
// recording the slug of the document it produced.
func (u *UserDocument) MarkReady(documentSlug string) error {
	if err := u.TransitionTo(UserDocumentStatusReady); err != nil {
		return err
	}
	u.ErrorMessage = nil
	u.DocumentSlug = &documentSlug
	return nil
}

// IsStuck reports whether a processing document has gone stale past
// threshold, per Stuck-Job Recovery (C10).
func (u *UserDocument) IsStuck(now time.Time, threshold time.Duration) bool {
	return u.Status == UserDocumentStatusProcessing && now.Sub(u.UpdatedAt) > threshold
}

// OrphanedBlob reports whether the user document has a blob eligible for
// garbage collection: it failed, still references a file, and has sat past
// grace without being retried.
func (u *UserDocument) OrphanedBlob(now time.Time, grace time.Duration) bool {
	return u.Status == UserDocumentStatusError && u.FilePath != nil && now.Sub(u.UpdatedAt) > grace
}
