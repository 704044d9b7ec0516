package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"correspondence-archive/internal/domain"
	"correspondence-archive/internal/repository"
)

type fakeRecipientStore struct {
	getRec    domain.Recipient
	getErr    error
	putErr    error
	updateErr error
	deleteErr error
	refs      []domain.Correspondence
	refsErr   error

	putRec      domain.Recipient
	updatedRec  domain.Recipient
	deleteCalls int
	deletedID   string
}

func (f *fakeRecipientStore) GetRecipient(_ context.Context, _ string) (domain.Recipient, error) {
	return f.getRec, f.getErr
}

func (f *fakeRecipientStore) PutRecipient(_ context.Context, rec domain.Recipient) error {
	f.putRec = rec
	return f.putErr
}

func (f *fakeRecipientStore) UpdateRecipient(_ context.Context, rec domain.Recipient) error {
	f.updatedRec = rec
	return f.updateErr
}

func (f *fakeRecipientStore) DeleteRecipient(_ context.Context, recipientID string) error {
	f.deleteCalls++
	f.deletedID = recipientID
	return f.deleteErr
}

func (f *fakeRecipientStore) QueryCorrespondencesByRecipient(_ context.Context, _ string) ([]domain.Correspondence, error) {
	return f.refs, f.refsErr
}

func mustRecipientService(t *testing.T, store *fakeRecipientStore) *RecipientService {
	t.Helper()
	s, err := NewRecipientService(store)
	require.NoError(t, err)
	return s
}

func TestRecipientCreate_GeneratesID(t *testing.T) {
	stubUUID(t, "rec-xyz")
	store := &fakeRecipientStore{}
	s := mustRecipientService(t, store)

	id, err := s.Create(context.Background(), &RecipientInput{FirstName: "John", LastName: "Dee", Address: "Mortlake"})
	require.NoError(t, err)
	require.Equal(t, "rec-xyz", id)
	require.Equal(t, "rec-xyz", store.putRec.RecipientID)
	require.Equal(t, "John", store.putRec.FirstName)
}

func TestRecipientCreate_MissingSection(t *testing.T) {
	s := mustRecipientService(t, &fakeRecipientStore{})
	_, err := s.Create(context.Background(), nil)
	requireUsecaseError(t, err, ErrorValidation, "missing_recipient")
}

func TestRecipientCreate_StoreError(t *testing.T) {
	store := &fakeRecipientStore{putErr: errors.New("throttled")}
	s := mustRecipientService(t, store)
	_, err := s.Create(context.Background(), &RecipientInput{})
	requireUsecaseError(t, err, ErrorStorage, "recipient_put_error")
}

func TestRecipientGet_NotFound(t *testing.T) {
	store := &fakeRecipientStore{getErr: repository.ErrNotFound}
	s := mustRecipientService(t, store)
	_, err := s.Get(context.Background(), "rec-1")
	requireUsecaseError(t, err, ErrorNotFound, "recipient_not_found")
}

func TestRecipientUpdate_PassesOptionalFields(t *testing.T) {
	store := &fakeRecipientStore{}
	s := mustRecipientService(t, store)

	desc := "antiquarian"
	err := s.Update(context.Background(), "rec-1", &RecipientInput{
		FirstName:   "John",
		Description: &desc,
	})
	require.NoError(t, err)
	require.Equal(t, "rec-1", store.updatedRec.RecipientID)
	require.NotNil(t, store.updatedRec.Description)
	require.Equal(t, "antiquarian", *store.updatedRec.Description)
	// Absent optionals stay nil so the store removes the attributes.
	require.Nil(t, store.updatedRec.Occupation)
	require.Nil(t, store.updatedRec.Organization)
}

func TestRecipientUpdate_NotFound(t *testing.T) {
	store := &fakeRecipientStore{updateErr: repository.ErrNotFound}
	s := mustRecipientService(t, store)
	err := s.Update(context.Background(), "rec-1", &RecipientInput{})
	requireUsecaseError(t, err, ErrorNotFound, "recipient_not_found")
}

func TestRecipientDelete_BlockedWhileReferenced(t *testing.T) {
	store := &fakeRecipientStore{refs: []domain.Correspondence{{CorrespondenceID: "corr-1"}}}
	s := mustRecipientService(t, store)

	err := s.Delete(context.Background(), "rec-1")
	requireUsecaseError(t, err, ErrorConflict, "recipient_in_use")
	require.Zero(t, store.deleteCalls)
}

func TestRecipientDelete_HappyPath(t *testing.T) {
	store := &fakeRecipientStore{}
	s := mustRecipientService(t, store)
	require.NoError(t, s.Delete(context.Background(), "rec-1"))
	require.Equal(t, 1, store.deleteCalls)
	require.Equal(t, "rec-1", store.deletedID)
}

func TestRecipientDelete_ReferenceQueryError(t *testing.T) {
	store := &fakeRecipientStore{refsErr: errors.New("throttled")}
	s := mustRecipientService(t, store)
	err := s.Delete(context.Background(), "rec-1")
	requireUsecaseError(t, err, ErrorStorage, "correspondence_query_error")
	require.Zero(t, store.deleteCalls)
}

func TestRecipientDelete_NotFound(t *testing.T) {
	store := &fakeRecipientStore{deleteErr: repository.ErrNotFound}
	s := mustRecipientService(t, store)
	err := s.Delete(context.Background(), "rec-1")
	requireUsecaseError(t, err, ErrorNotFound, "recipient_not_found")
}

func TestRecipientCorrespondences_HappyPath(t *testing.T) {
	store := &fakeRecipientStore{refs: []domain.Correspondence{{CorrespondenceID: "corr-1"}, {CorrespondenceID: "corr-2"}}}
	s := mustRecipientService(t, store)
	corrs, err := s.Correspondences(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, corrs, 2)
}
