package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"correspondence-archive/internal/domain"
)

// CreateCorrespondence inserts the recipient, the correspondence and every
// letter as one transaction. The recipient and correspondence puts are
// conditional on their id not existing yet, so a generator collision aborts
// the whole batch instead of silently overwriting.
func (c *Client) CreateCorrespondence(ctx context.Context, rec domain.Recipient, corr domain.Correspondence, letters []domain.Letter) error {
	if rec.RecipientID == "" || corr.CorrespondenceID == "" {
		return errors.New("repository: CreateCorrespondence: recipientId and correspondenceId are required")
	}

	recItem, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("repository: CreateCorrespondence marshal recipient: %w", err)
	}
	corrItem, err := attributevalue.MarshalMap(corr)
	if err != nil {
		return fmt.Errorf("repository: CreateCorrespondence marshal correspondence: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, 2+len(letters))
	items = append(items,
		types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(c.recipientsTable),
				Item:                recItem,
				ConditionExpression: aws.String("attribute_not_exists(recipientId)"),
			},
		},
		types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(c.correspondencesTable),
				Item:                corrItem,
				ConditionExpression: aws.String("attribute_not_exists(correspondenceId)"),
			},
		},
	)
	for _, l := range letters {
		item, err := attributevalue.MarshalMap(l)
		if err != nil {
			return fmt.Errorf("repository: CreateCorrespondence marshal letter %s: %w", l.LetterID, err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(c.lettersTable),
				Item:      item,
			},
		})
	}

	if _, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("repository: CreateCorrespondence: %w", err)
	}
	return nil
}

// UpdateCorrespondence applies a reconciled letter set together with the
// recipient and correspondence updates as one transaction: one update per
// surviving letter, one put per new letter, one delete per letter the caller
// dropped. If any element fails, nothing is applied.
func (c *Client) UpdateCorrespondence(ctx context.Context, rec domain.Recipient, corr domain.Correspondence, updates, inserts []domain.Letter, removeIDs []string) error {
	if rec.RecipientID == "" || corr.CorrespondenceID == "" {
		return errors.New("repository: UpdateCorrespondence: recipientId and correspondenceId are required")
	}

	recExpr, recNames, recValues := recipientUpdateExpression(rec)
	reasonValue, err := attributevalue.Marshal(corr.Reason)
	if err != nil {
		return fmt.Errorf("repository: UpdateCorrespondence marshal reason: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, 2+len(updates)+len(inserts)+len(removeIDs))
	items = append(items,
		types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(c.recipientsTable),
				Key: map[string]types.AttributeValue{
					attrRecipientID: &types.AttributeValueMemberS{Value: rec.RecipientID},
				},
				UpdateExpression:          aws.String(recExpr),
				ConditionExpression:       aws.String("attribute_exists(recipientId)"),
				ExpressionAttributeNames:  recNames,
				ExpressionAttributeValues: recValues,
			},
		},
		types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(c.correspondencesTable),
				Key: map[string]types.AttributeValue{
					attrCorrespondenceID: &types.AttributeValueMemberS{Value: corr.CorrespondenceID},
				},
				UpdateExpression:    aws.String("SET #reason = :reason, #updatedAt = :updatedAt"),
				ConditionExpression: aws.String("attribute_exists(correspondenceId)"),
				ExpressionAttributeNames: map[string]string{
					"#reason":    "reason",
					"#updatedAt": "updatedAt",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":reason":    reasonValue,
					":updatedAt": &types.AttributeValueMemberS{Value: corr.UpdatedAt},
				},
			},
		},
	)

	for _, l := range updates {
		expr, names, values := letterUpdateExpression(l)
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(c.lettersTable),
				Key:                       letterKey(l.CorrespondenceID, l.LetterID),
				UpdateExpression:          aws.String(expr),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			},
		})
	}
	for _, l := range inserts {
		item, err := attributevalue.MarshalMap(l)
		if err != nil {
			return fmt.Errorf("repository: UpdateCorrespondence marshal letter %s: %w", l.LetterID, err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(c.lettersTable),
				Item:      item,
			},
		})
	}
	for _, id := range removeIDs {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(c.lettersTable),
				Key:       letterKey(corr.CorrespondenceID, id),
			},
		})
	}

	if _, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("repository: UpdateCorrespondence: %w", err)
	}
	return nil
}

// DeleteCorrespondence removes the correspondence record and every letter
// keyed under it in one transaction.
func (c *Client) DeleteCorrespondence(ctx context.Context, correspondenceID string, letterIDs []string) error {
	if correspondenceID == "" {
		return errors.New("repository: DeleteCorrespondence: correspondenceId is required")
	}

	items := make([]types.TransactWriteItem, 0, 1+len(letterIDs))
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(c.correspondencesTable),
			Key: map[string]types.AttributeValue{
				attrCorrespondenceID: &types.AttributeValueMemberS{Value: correspondenceID},
			},
		},
	})
	for _, id := range letterIDs {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(c.lettersTable),
				Key:       letterKey(correspondenceID, id),
			},
		})
	}

	if _, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("repository: DeleteCorrespondence: %w", err)
	}
	return nil
}

func letterKey(correspondenceID, letterID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrCorrespondenceID: &types.AttributeValueMemberS{Value: correspondenceID},
		attrLetterID:         &types.AttributeValueMemberS{Value: letterID},
	}
}

// recipientUpdateExpression builds the SET/REMOVE expression for a recipient
// update. Required fields are always SET; each optional field is SET when
// present on rec and REMOVEd when nil. Attribute name placeholders are used
// throughout to stay clear of DynamoDB reserved words.
func recipientUpdateExpression(rec domain.Recipient) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{
		"#firstName": "firstName",
		"#lastName":  "lastName",
		"#address":   "address",
	}
	values := map[string]types.AttributeValue{
		":firstName": &types.AttributeValueMemberS{Value: rec.FirstName},
		":lastName":  &types.AttributeValueMemberS{Value: rec.LastName},
		":address":   &types.AttributeValueMemberS{Value: rec.Address},
	}
	sets := []string{"#firstName = :firstName", "#lastName = :lastName", "#address = :address"}
	var removes []string

	optional := []struct {
		name  string
		value *string
	}{
		{"description", rec.Description},
		{"occupation", rec.Occupation},
		{"organization", rec.Organization},
	}
	for _, f := range optional {
		placeholder := "#" + f.name
		names[placeholder] = f.name
		if f.value != nil {
			sets = append(sets, placeholder+" = :"+f.name)
			values[":"+f.name] = &types.AttributeValueMemberS{Value: *f.value}
		} else {
			removes = append(removes, placeholder)
		}
	}

	expr := "SET " + strings.Join(sets, ", ")
	if len(removes) > 0 {
		expr += " REMOVE " + strings.Join(removes, ", ")
	}
	return expr, names, values
}

// letterUpdateExpression builds the SET/REMOVE expression for a letter
// update inside the correspondence transaction.
func letterUpdateExpression(l domain.Letter) (string, map[string]string, map[string]types.AttributeValue) {
	fields := []struct {
		name  string
		value string
	}{
		{"date", l.Date},
		{"imageURL", l.ImageURL},
		{"method", l.Method},
		{"status", l.Status},
		{"text", l.Text},
		{"title", l.Title},
		{"type", l.Type},
	}

	names := make(map[string]string, len(fields)+1)
	values := make(map[string]types.AttributeValue, len(fields)+1)
	sets := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		placeholder := "#" + f.name
		names[placeholder] = f.name
		values[":"+f.name] = &types.AttributeValueMemberS{Value: f.value}
		sets = append(sets, placeholder+" = :"+f.name)
	}

	names["#description"] = "description"
	expr := ""
	if l.Description != nil {
		sets = append(sets, "#description = :description")
		values[":description"] = &types.AttributeValueMemberS{Value: *l.Description}
		expr = "SET " + strings.Join(sets, ", ")
	} else {
		expr = "SET " + strings.Join(sets, ", ") + " REMOVE #description"
	}
	return expr, names, values
}
