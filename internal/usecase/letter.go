package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type URLSigner interface {
	PresignPutObject(ctx context.Context, key, contentType string) (string, error)
}

type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// LetterService covers the letter side-channels: pre-signed image upload
// URLs and outbound letter email. The sender address comes from the
// parameter store and is cached after the first load.
type LetterService struct {
	signer      URLSigner
	email       EmailSender
	params      ParamGetter
	paramPrefix string

	senderMu     sync.RWMutex
	senderLoaded bool
	sender       string
}

type UploadURLInput struct {
	CorrespondenceID string `json:"correspondenceId"`
	LetterID         string `json:"letterId"`
	ContentType      string `json:"contentType"`
}

type SendLetterInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func NewLetterService(signer URLSigner, email EmailSender, params ParamGetter, paramPrefix string) (*LetterService, error) {
	if signer == nil {
		return nil, errors.New("usecase: url signer must not be nil")
	}
	if email == nil {
		return nil, errors.New("usecase: email sender must not be nil")
	}
	if params == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	return &LetterService{
		signer:      signer,
		email:       email,
		params:      params,
		paramPrefix: paramPrefix,
	}, nil
}

// UploadURL issues a pre-signed PUT URL for a letter image.
func (s *LetterService) UploadURL(ctx context.Context, in UploadURLInput) (string, error) {
	if in.CorrespondenceID == "" {
		return "", newError(ErrorValidation, "missing_correspondence_id", nil)
	}
	if in.LetterID == "" {
		return "", newError(ErrorValidation, "missing_letter_id", nil)
	}
	if in.ContentType == "" {
		return "", newError(ErrorValidation, "missing_content_type", nil)
	}
	key := "letters/" + in.CorrespondenceID + "/" + in.LetterID
	url, err := s.signer.PresignPutObject(ctx, key, in.ContentType)
	if err != nil {
		return "", newError(ErrorStorage, "presign_error", err)
	}
	return url, nil
}

// SendLetter emails a letter's text to the given address.
func (s *LetterService) SendLetter(ctx context.Context, in SendLetterInput) error {
	if strings.TrimSpace(in.To) == "" {
		return newError(ErrorValidation, "missing_to_address", nil)
	}
	if strings.TrimSpace(in.Subject) == "" {
		return newError(ErrorValidation, "missing_subject", nil)
	}
	if strings.TrimSpace(in.Body) == "" {
		return newError(ErrorValidation, "missing_body", nil)
	}
	sender, err := s.ensureSender(ctx)
	if err != nil {
		return newError(ErrorStorage, "sender_load_error", err)
	}
	if err := s.email.Send(ctx, sender, in.To, in.Subject, in.Body); err != nil {
		return newError(ErrorStorage, "email_send_error", err)
	}
	return nil
}

func (s *LetterService) ensureSender(ctx context.Context) (string, error) {
	s.senderMu.RLock()
	if s.senderLoaded {
		sender := s.sender
		s.senderMu.RUnlock()
		return sender, nil
	}
	s.senderMu.RUnlock()

	s.senderMu.Lock()
	defer s.senderMu.Unlock()
	if s.senderLoaded {
		return s.sender, nil
	}

	sender, err := s.params.GetParameter(ctx, s.paramPrefix+"/sender_address")
	if err != nil {
		return "", err
	}
	s.sender = sender
	s.senderLoaded = true
	return sender, nil
}
