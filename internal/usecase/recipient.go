package usecase

import (
	"context"
	"errors"

	"correspondence-archive/internal/domain"
	"correspondence-archive/internal/repository"
)

// RecipientStore defines the store operations consumed by the recipient
// service. *repository.Client satisfies this interface.
type RecipientStore interface {
	GetRecipient(ctx context.Context, recipientID string) (domain.Recipient, error)
	PutRecipient(ctx context.Context, rec domain.Recipient) error
	UpdateRecipient(ctx context.Context, rec domain.Recipient) error
	DeleteRecipient(ctx context.Context, recipientID string) error
	QueryCorrespondencesByRecipient(ctx context.Context, recipientID string) ([]domain.Correspondence, error)
}

// RecipientService handles standalone recipient CRUD. Deletion is blocked
// while any correspondence still references the recipient.
type RecipientService struct {
	store RecipientStore
}

func NewRecipientService(store RecipientStore) (*RecipientService, error) {
	if store == nil {
		return nil, errors.New("usecase: store must not be nil")
	}
	return &RecipientService{store: store}, nil
}

// Create persists a new recipient under a freshly generated id.
func (s *RecipientService) Create(ctx context.Context, in *RecipientInput) (string, error) {
	if in == nil {
		return "", newError(ErrorValidation, "missing_recipient", nil)
	}
	recipientID := newUUID()
	if err := s.store.PutRecipient(ctx, in.toDomain(recipientID)); err != nil {
		return "", newError(ErrorStorage, "recipient_put_error", err)
	}
	return recipientID, nil
}

// Get returns a single recipient by id.
func (s *RecipientService) Get(ctx context.Context, recipientID string) (domain.Recipient, error) {
	if recipientID == "" {
		return domain.Recipient{}, newError(ErrorValidation, "missing_recipient_id", nil)
	}
	rec, err := s.store.GetRecipient(ctx, recipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Recipient{}, newError(ErrorNotFound, "recipient_not_found", err)
		}
		return domain.Recipient{}, newError(ErrorStorage, "recipient_get_error", err)
	}
	return rec, nil
}

// Update replaces the stored recipient attributes. Optional fields present in
// the input are set; optional fields absent from the input are removed from
// the stored record, never left as-is.
func (s *RecipientService) Update(ctx context.Context, recipientID string, in *RecipientInput) error {
	if recipientID == "" {
		return newError(ErrorValidation, "missing_recipient_id", nil)
	}
	if in == nil {
		return newError(ErrorValidation, "missing_recipient", nil)
	}
	if err := s.store.UpdateRecipient(ctx, in.toDomain(recipientID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrorNotFound, "recipient_not_found", err)
		}
		return newError(ErrorStorage, "recipient_update_error", err)
	}
	return nil
}

// Delete removes a recipient, refusing while any correspondence references
// it. The reference check is a query against the recipient index; when it
// finds any match no delete operation is issued.
func (s *RecipientService) Delete(ctx context.Context, recipientID string) error {
	if recipientID == "" {
		return newError(ErrorValidation, "missing_recipient_id", nil)
	}
	refs, err := s.store.QueryCorrespondencesByRecipient(ctx, recipientID)
	if err != nil {
		return newError(ErrorStorage, "correspondence_query_error", err)
	}
	if len(refs) > 0 {
		return newError(ErrorConflict, "recipient_in_use", nil)
	}
	if err := s.store.DeleteRecipient(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrorNotFound, "recipient_not_found", err)
		}
		return newError(ErrorStorage, "recipient_delete_error", err)
	}
	return nil
}

// Correspondences lists every correspondence referencing a recipient.
func (s *RecipientService) Correspondences(ctx context.Context, recipientID string) ([]domain.Correspondence, error) {
	if recipientID == "" {
		return nil, newError(ErrorValidation, "missing_recipient_id", nil)
	}
	corrs, err := s.store.QueryCorrespondencesByRecipient(ctx, recipientID)
	if err != nil {
		return nil, newError(ErrorStorage, "correspondence_query_error", err)
	}
	return corrs, nil
}
