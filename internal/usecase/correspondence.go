package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"correspondence-archive/internal/domain"
	"correspondence-archive/internal/repository"
)

// CorrespondenceStore defines the store operations consumed by the
// correspondence service. *repository.Client satisfies this interface.
type CorrespondenceStore interface {
	GetCorrespondence(ctx context.Context, correspondenceID string) (domain.Correspondence, error)
	QueryLetters(ctx context.Context, correspondenceID string) ([]domain.Letter, error)
	CreateCorrespondence(ctx context.Context, rec domain.Recipient, corr domain.Correspondence, letters []domain.Letter) error
	UpdateCorrespondence(ctx context.Context, rec domain.Recipient, corr domain.Correspondence, updates, inserts []domain.Letter, removeIDs []string) error
	DeleteCorrespondence(ctx context.Context, correspondenceID string, letterIDs []string) error
}

// CorrespondenceService coordinates the multi-item writes that keep a
// correspondence, its recipient and its letters consistent. Every mutation
// goes to the store as one atomic transaction; the store is the only
// synchronization point between concurrent invocations.
type CorrespondenceService struct {
	store CorrespondenceStore
}

type CreateCorrespondenceInput struct {
	Recipient      *RecipientInput
	Correspondence *CorrespondenceInput
	Letters        []LetterInput
}

type CreateCorrespondenceOutput struct {
	CorrespondenceID string
	RecipientID      string
	LetterIDs        []string
}

type UpdateCorrespondenceInput struct {
	CorrespondenceID string
	Recipient        *RecipientInput
	Correspondence   *CorrespondenceInput
	Letters          []LetterInput
}

func NewCorrespondenceService(store CorrespondenceStore) (*CorrespondenceService, error) {
	if store == nil {
		return nil, errors.New("usecase: store must not be nil")
	}
	return &CorrespondenceService{store: store}, nil
}

// Create persists a new recipient, correspondence and letter set in one
// transaction. Fresh ids are generated for the recipient and correspondence;
// each letter keeps a supplied letterId and is assigned one otherwise.
func (s *CorrespondenceService) Create(ctx context.Context, in CreateCorrespondenceInput) (CreateCorrespondenceOutput, error) {
	if in.Recipient == nil {
		return CreateCorrespondenceOutput{}, newError(ErrorValidation, "missing_recipient", nil)
	}
	if in.Correspondence == nil {
		return CreateCorrespondenceOutput{}, newError(ErrorValidation, "missing_correspondence", nil)
	}
	// An empty letters list is valid; only a missing or null key is not.
	if in.Letters == nil {
		return CreateCorrespondenceOutput{}, newError(ErrorValidation, "missing_letters", nil)
	}

	recipientID := newUUID()
	correspondenceID := newUUID()
	now := nowRFC3339()

	rec := in.Recipient.toDomain(recipientID)
	corr := domain.Correspondence{
		CorrespondenceID: correspondenceID,
		RecipientID:      recipientID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.Correspondence.Reason != nil {
		corr.Reason = in.Correspondence.Reason.toDomain()
	}
	letters := assignLetterIDs(correspondenceID, in.Letters)

	if err := s.store.CreateCorrespondence(ctx, rec, corr, letters); err != nil {
		return CreateCorrespondenceOutput{}, newError(ErrorStorage, "create_transaction_error", err)
	}

	letterIDs := make([]string, len(letters))
	for i, l := range letters {
		letterIDs[i] = l.LetterID
	}
	return CreateCorrespondenceOutput{
		CorrespondenceID: correspondenceID,
		RecipientID:      recipientID,
		LetterIDs:        letterIDs,
	}, nil
}

// Update reconciles the persisted letter set with the request's letter set
// and applies the result together with the recipient and correspondence
// updates in one transaction. Letters present in both sets become updates,
// letters only in the request become inserts, and persisted letters absent
// from the request are deleted.
//
// The read of the existing letter ids and the transactional write are two
// separate store calls; a concurrent mutation of the same correspondence
// between them can make the computed diff stale. No version precondition
// guards against this.
func (s *CorrespondenceService) Update(ctx context.Context, in UpdateCorrespondenceInput) error {
	if err := validateUpdateInput(in); err != nil {
		return err
	}

	existing, err := s.store.QueryLetters(ctx, in.CorrespondenceID)
	if err != nil {
		return newError(ErrorStorage, "letter_query_error", err)
	}
	existingIDs := make([]string, len(existing))
	for i, l := range existing {
		existingIDs[i] = l.LetterID
	}

	incoming := assignLetterIDs(in.CorrespondenceID, in.Letters)
	incomingIDs := make([]string, len(incoming))
	byID := make(map[string]domain.Letter, len(incoming))
	for i, l := range incoming {
		incomingIDs[i] = l.LetterID
		byID[l.LetterID] = l
	}

	d := diffLetterIDs(existingIDs, incomingIDs)
	updates := make([]domain.Letter, 0, len(d.updated))
	for _, id := range d.updated {
		updates = append(updates, byID[id])
	}
	inserts := make([]domain.Letter, 0, len(d.added))
	for _, id := range d.added {
		inserts = append(inserts, byID[id])
	}

	rec := in.Recipient.toDomain(in.Recipient.RecipientID)
	corr := domain.Correspondence{
		CorrespondenceID: in.CorrespondenceID,
		Reason:           in.Correspondence.Reason.toDomain(),
		UpdatedAt:        nowRFC3339(),
	}

	if err := s.store.UpdateCorrespondence(ctx, rec, corr, updates, inserts, d.removed); err != nil {
		return newError(ErrorStorage, "update_transaction_error", err)
	}
	return nil
}

// Delete removes a correspondence and every letter stored under it in one
// transaction. The letter set is discovered by query immediately before the
// transaction is built.
func (s *CorrespondenceService) Delete(ctx context.Context, correspondenceID string) error {
	if correspondenceID == "" {
		return newError(ErrorValidation, "missing_correspondence_id", nil)
	}

	if _, err := s.store.GetCorrespondence(ctx, correspondenceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrorNotFound, "correspondence_not_found", err)
		}
		return newError(ErrorStorage, "correspondence_get_error", err)
	}

	letters, err := s.store.QueryLetters(ctx, correspondenceID)
	if err != nil {
		return newError(ErrorStorage, "letter_query_error", err)
	}
	letterIDs := make([]string, len(letters))
	for i, l := range letters {
		letterIDs[i] = l.LetterID
	}

	if err := s.store.DeleteCorrespondence(ctx, correspondenceID, letterIDs); err != nil {
		return newError(ErrorStorage, "delete_transaction_error", err)
	}
	return nil
}

// Get returns a single correspondence by id.
func (s *CorrespondenceService) Get(ctx context.Context, correspondenceID string) (domain.Correspondence, error) {
	if correspondenceID == "" {
		return domain.Correspondence{}, newError(ErrorValidation, "missing_correspondence_id", nil)
	}
	corr, err := s.store.GetCorrespondence(ctx, correspondenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Correspondence{}, newError(ErrorNotFound, "correspondence_not_found", err)
		}
		return domain.Correspondence{}, newError(ErrorStorage, "correspondence_get_error", err)
	}
	return corr, nil
}

// Letters returns every letter stored under a correspondence.
func (s *CorrespondenceService) Letters(ctx context.Context, correspondenceID string) ([]domain.Letter, error) {
	if correspondenceID == "" {
		return nil, newError(ErrorValidation, "missing_correspondence_id", nil)
	}
	letters, err := s.store.QueryLetters(ctx, correspondenceID)
	if err != nil {
		return nil, newError(ErrorStorage, "letter_query_error", err)
	}
	return letters, nil
}

var recognizedImpacts = map[string]struct{}{
	"low":    {},
	"medium": {},
	"high":   {},
}

func validateUpdateInput(in UpdateCorrespondenceInput) error {
	if in.CorrespondenceID == "" {
		return newError(ErrorValidation, "missing_correspondence_id", nil)
	}
	if in.Recipient == nil {
		return newError(ErrorValidation, "missing_recipient", nil)
	}
	if in.Recipient.RecipientID == "" {
		return newError(ErrorValidation, "missing_recipient_id", nil)
	}
	if in.Correspondence == nil {
		return newError(ErrorValidation, "missing_correspondence", nil)
	}
	if in.Letters == nil {
		return newError(ErrorValidation, "missing_letters", nil)
	}
	reason := in.Correspondence.Reason
	if reason == nil {
		return newError(ErrorValidation, "missing_reason", nil)
	}
	if reason.Description == "" || reason.Domain == "" {
		return newError(ErrorValidation, "incomplete_reason", nil)
	}
	if _, ok := recognizedImpacts[reason.Impact]; !ok {
		return newError(ErrorValidation, "unrecognized_impact", nil)
	}
	return nil
}

// assignLetterIDs keys each letter to the enclosing correspondence, keeping a
// supplied letterId and generating a fresh one when absent. Duplicate ids
// within one request collapse to a single letter; the later occurrence wins.
func assignLetterIDs(correspondenceID string, in []LetterInput) []domain.Letter {
	letters := make([]domain.Letter, 0, len(in))
	index := make(map[string]int, len(in))
	for _, li := range in {
		id := li.LetterID
		if id == "" {
			id = newUUID()
		}
		l := li.toDomain(correspondenceID, id)
		if i, ok := index[id]; ok {
			letters[i] = l
			continue
		}
		index[id] = len(letters)
		letters = append(letters, l)
	}
	return letters
}

var newUUID = func() string {
	return uuid.NewString()
}

var nowRFC3339 = func() string {
	return time.Now().UTC().Format(time.RFC3339)
}
