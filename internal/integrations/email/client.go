package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the minimal SES interface required by Client.
// *sesv2.Client from aws-sdk-go-v2 satisfies this interface.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Client sends archive letters as plain-text email.
type Client struct {
	api sesAPI
}

// New creates a Client with the given SES API implementation.
func New(api sesAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("email: api must not be nil")
	}
	return &Client{api: api}, nil
}

// Send delivers one plain-text message from the given verified sender.
func (c *Client) Send(ctx context.Context, from, to, subject, body string) error {
	if from == "" || to == "" {
		return errors.New("email: from and to addresses are required")
	}
	_, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("email: send to %s: %w", to, err)
	}
	return nil
}
