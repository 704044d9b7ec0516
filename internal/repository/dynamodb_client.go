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

const (
	attrRecipientID      = "recipientId"
	attrCorrespondenceID = "correspondenceId"
	attrLetterID         = "letterId"

	// recipientIndex is the GSI on the correspondences table keyed by
	// recipientId, used for the referential guard on recipient deletion and
	// for recipient-scoped listing.
	recipientIndex = "recipientId-index"
)

// ErrNotFound is returned when a point read misses or a conditional write
// fails because the target record does not exist.
var ErrNotFound = errors.New("repository: item not found")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client wraps the three archive tables: recipients, correspondences and
// letters. Multi-item mutations go through TransactWriteItems so a
// correspondence is never observed without its letters, or vice versa.
type Client struct {
	api                  dynamodbAPI
	recipientsTable      string
	correspondencesTable string
	lettersTable         string
}

// New creates a new repository Client.
func New(api dynamodbAPI, recipientsTable, correspondencesTable, lettersTable string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	for _, t := range []string{recipientsTable, correspondencesTable, lettersTable} {
		if strings.TrimSpace(t) == "" {
			return nil, errors.New("repository: table names must not be empty")
		}
	}
	return &Client{
		api:                  api,
		recipientsTable:      recipientsTable,
		correspondencesTable: correspondencesTable,
		lettersTable:         lettersTable,
	}, nil
}

// GetRecipient reads a single recipient by id.
func (c *Client) GetRecipient(ctx context.Context, recipientID string) (domain.Recipient, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.recipientsTable),
		Key: map[string]types.AttributeValue{
			attrRecipientID: &types.AttributeValueMemberS{Value: recipientID},
		},
	})
	if err != nil {
		return domain.Recipient{}, fmt.Errorf("repository: GetRecipient: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Recipient{}, ErrNotFound
	}
	var rec domain.Recipient
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return domain.Recipient{}, fmt.Errorf("repository: GetRecipient unmarshal: %w", err)
	}
	return rec, nil
}

// PutRecipient inserts a recipient, failing if the id is already taken.
func (c *Client) PutRecipient(ctx context.Context, rec domain.Recipient) error {
	if rec.RecipientID == "" {
		return errors.New("repository: PutRecipient: recipientId is required")
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("repository: PutRecipient marshal: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.recipientsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(recipientId)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutRecipient: %w", err)
	}
	return nil
}

// UpdateRecipient rewrites the stored recipient attributes. Optional fields
// carried by rec are SET; optional fields that are nil are REMOVEd from the
// item, so a stale value never survives an update that dropped the field.
// Returns ErrNotFound when no such recipient exists.
func (c *Client) UpdateRecipient(ctx context.Context, rec domain.Recipient) error {
	if rec.RecipientID == "" {
		return errors.New("repository: UpdateRecipient: recipientId is required")
	}
	expr, names, values := recipientUpdateExpression(rec)
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.recipientsTable),
		Key: map[string]types.AttributeValue{
			attrRecipientID: &types.AttributeValueMemberS{Value: rec.RecipientID},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(recipientId)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: UpdateRecipient: %w", err)
	}
	return nil
}

// DeleteRecipient removes a recipient by id. Returns ErrNotFound when no
// such recipient exists. The caller is responsible for the referential
// guard; no correspondence check happens here.
func (c *Client) DeleteRecipient(ctx context.Context, recipientID string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.recipientsTable),
		Key: map[string]types.AttributeValue{
			attrRecipientID: &types.AttributeValueMemberS{Value: recipientID},
		},
		ConditionExpression: aws.String("attribute_exists(recipientId)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: DeleteRecipient: %w", err)
	}
	return nil
}

// GetCorrespondence reads a single correspondence by id.
func (c *Client) GetCorrespondence(ctx context.Context, correspondenceID string) (domain.Correspondence, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.correspondencesTable),
		Key: map[string]types.AttributeValue{
			attrCorrespondenceID: &types.AttributeValueMemberS{Value: correspondenceID},
		},
	})
	if err != nil {
		return domain.Correspondence{}, fmt.Errorf("repository: GetCorrespondence: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Correspondence{}, ErrNotFound
	}
	var corr domain.Correspondence
	if err := attributevalue.UnmarshalMap(out.Item, &corr); err != nil {
		return domain.Correspondence{}, fmt.Errorf("repository: GetCorrespondence unmarshal: %w", err)
	}
	return corr, nil
}

// QueryLetters returns every letter stored under a correspondence, following
// the continuation key until the query is exhausted.
func (c *Client) QueryLetters(ctx context.Context, correspondenceID string) ([]domain.Letter, error) {
	var letters []domain.Letter
	var startKey map[string]types.AttributeValue
	for {
		out, err := c.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.lettersTable),
			KeyConditionExpression: aws.String("correspondenceId = :cid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":cid": &types.AttributeValueMemberS{Value: correspondenceID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: QueryLetters: %w", err)
		}
		page := make([]domain.Letter, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("repository: QueryLetters unmarshal: %w", err)
		}
		letters = append(letters, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return letters, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// QueryCorrespondencesByRecipient lists the correspondences referencing a
// recipient via the recipientId index.
func (c *Client) QueryCorrespondencesByRecipient(ctx context.Context, recipientID string) ([]domain.Correspondence, error) {
	var corrs []domain.Correspondence
	var startKey map[string]types.AttributeValue
	for {
		out, err := c.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.correspondencesTable),
			IndexName:              aws.String(recipientIndex),
			KeyConditionExpression: aws.String("recipientId = :rid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rid": &types.AttributeValueMemberS{Value: recipientID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: QueryCorrespondencesByRecipient: %w", err)
		}
		page := make([]domain.Correspondence, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("repository: QueryCorrespondencesByRecipient unmarshal: %w", err)
		}
		corrs = append(corrs, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return corrs, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
