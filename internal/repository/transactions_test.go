package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"correspondence-archive/internal/domain"
)

func sampleRecipient() domain.Recipient {
	return domain.Recipient{RecipientID: "rec-1", FirstName: "John", LastName: "Dee", Address: "Mortlake"}
}

func sampleCorrespondence() domain.Correspondence {
	return domain.Correspondence{
		CorrespondenceID: "corr-1",
		RecipientID:      "rec-1",
		Reason:           domain.Reason{Description: "overdue reply", Domain: "personal", Impact: "low"},
		CreatedAt:        "2026-08-01T00:00:00Z",
		UpdatedAt:        "2026-08-01T00:00:00Z",
	}
}

func TestCreateCorrespondence_SingleTransaction(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	letters := []domain.Letter{
		{CorrespondenceID: "corr-1", LetterID: "L1", Title: "On comets"},
		{CorrespondenceID: "corr-1", LetterID: "L2", Title: "On tides"},
	}
	err := c.CreateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), letters)
	require.NoError(t, err)

	// Everything rides in exactly one transact-write; no stray single-item writes.
	require.Equal(t, 1, db.txCalls)
	require.Zero(t, db.putCalls)
	require.Zero(t, db.updateCalls)
	require.Zero(t, db.deleteCalls)

	items := db.lastTxInput.TransactItems
	require.Len(t, items, 4)
	require.Equal(t, "attribute_not_exists(recipientId)", *items[0].Put.ConditionExpression)
	require.Equal(t, "recipients", *items[0].Put.TableName)
	require.Equal(t, "attribute_not_exists(correspondenceId)", *items[1].Put.ConditionExpression)
	require.Equal(t, "correspondences", *items[1].Put.TableName)
	require.Equal(t, "letters", *items[2].Put.TableName)
	require.Nil(t, items[2].Put.ConditionExpression)
}

func TestCreateCorrespondence_NoLetters(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.CreateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), nil)
	require.NoError(t, err)
	require.Len(t, db.lastTxInput.TransactItems, 2)
}

func TestCreateCorrespondence_MissingIDs(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	err := c.CreateCorrespondence(context.Background(), domain.Recipient{}, sampleCorrespondence(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestCreateCorrespondence_TransactionError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.CreateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CreateCorrespondence")
}

func TestUpdateCorrespondence_OpPerPartition(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	updates := []domain.Letter{{CorrespondenceID: "corr-1", LetterID: "B", Title: "updated"}}
	inserts := []domain.Letter{{CorrespondenceID: "corr-1", LetterID: "D", Title: "new"}}
	removes := []string{"A", "C"}

	err := c.UpdateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), updates, inserts, removes)
	require.NoError(t, err)
	require.Equal(t, 1, db.txCalls)

	items := db.lastTxInput.TransactItems
	require.Len(t, items, 6)

	// Recipient and correspondence updates lead the batch.
	require.NotNil(t, items[0].Update)
	require.Equal(t, "recipients", *items[0].Update.TableName)
	require.Equal(t, "attribute_exists(recipientId)", *items[0].Update.ConditionExpression)
	require.NotNil(t, items[1].Update)
	require.Equal(t, "correspondences", *items[1].Update.TableName)
	require.Contains(t, *items[1].Update.UpdateExpression, "#reason = :reason")
	require.Contains(t, *items[1].Update.UpdateExpression, "#updatedAt = :updatedAt")

	// One update for B, one put for D, one delete each for A and C.
	require.NotNil(t, items[2].Update)
	require.Equal(t, "B", items[2].Update.Key["letterId"].(*types.AttributeValueMemberS).Value)
	require.NotNil(t, items[3].Put)
	require.Equal(t, "D", items[3].Put.Item["letterId"].(*types.AttributeValueMemberS).Value)
	require.NotNil(t, items[4].Delete)
	require.Equal(t, "A", items[4].Delete.Key["letterId"].(*types.AttributeValueMemberS).Value)
	require.NotNil(t, items[5].Delete)
	require.Equal(t, "C", items[5].Delete.Key["letterId"].(*types.AttributeValueMemberS).Value)
}

func TestUpdateCorrespondence_LetterUpdateRemovesAbsentDescription(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	updates := []domain.Letter{{CorrespondenceID: "corr-1", LetterID: "B"}}
	err := c.UpdateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), updates, nil, nil)
	require.NoError(t, err)

	expr := *db.lastTxInput.TransactItems[2].Update.UpdateExpression
	require.Contains(t, expr, "REMOVE #description")
}

func TestUpdateCorrespondence_LetterUpdateSetsPresentDescription(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	desc := "water damaged"
	updates := []domain.Letter{{CorrespondenceID: "corr-1", LetterID: "B", Description: &desc}}
	err := c.UpdateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), updates, nil, nil)
	require.NoError(t, err)

	expr := *db.lastTxInput.TransactItems[2].Update.UpdateExpression
	require.Contains(t, expr, "#description = :description")
	require.NotContains(t, expr, "REMOVE")
}

func TestUpdateCorrespondence_TransactionError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.UpdateCorrespondence(context.Background(), sampleRecipient(), sampleCorrespondence(), nil, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UpdateCorrespondence")
}

func TestDeleteCorrespondence_CascadesLetters(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	err := c.DeleteCorrespondence(context.Background(), "corr-1", []string{"L1", "L2"})
	require.NoError(t, err)
	require.Equal(t, 1, db.txCalls)

	items := db.lastTxInput.TransactItems
	require.Len(t, items, 3)
	require.Equal(t, "correspondences", *items[0].Delete.TableName)
	require.Equal(t, "corr-1", items[0].Delete.Key["correspondenceId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "letters", *items[1].Delete.TableName)
	require.Equal(t, "L1", items[1].Delete.Key["letterId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "L2", items[2].Delete.Key["letterId"].(*types.AttributeValueMemberS).Value)
}

func TestDeleteCorrespondence_NoLetters(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.DeleteCorrespondence(context.Background(), "corr-1", nil))
	require.Len(t, db.lastTxInput.TransactItems, 1)
}

func TestDeleteCorrespondence_MissingID(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	err := c.DeleteCorrespondence(context.Background(), "", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}
