package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"correspondence-archive/internal/domain"
	"correspondence-archive/internal/usecase"
)

type correspondenceService interface {
	Create(ctx context.Context, in usecase.CreateCorrespondenceInput) (usecase.CreateCorrespondenceOutput, error)
	Update(ctx context.Context, in usecase.UpdateCorrespondenceInput) error
	Delete(ctx context.Context, correspondenceID string) error
	Get(ctx context.Context, correspondenceID string) (domain.Correspondence, error)
	Letters(ctx context.Context, correspondenceID string) ([]domain.Letter, error)
}

type recipientService interface {
	Create(ctx context.Context, in *usecase.RecipientInput) (string, error)
	Get(ctx context.Context, recipientID string) (domain.Recipient, error)
	Update(ctx context.Context, recipientID string, in *usecase.RecipientInput) error
	Delete(ctx context.Context, recipientID string) error
	Correspondences(ctx context.Context, recipientID string) ([]domain.Correspondence, error)
}

type letterService interface {
	UploadURL(ctx context.Context, in usecase.UploadURLInput) (string, error)
	SendLetter(ctx context.Context, in usecase.SendLetterInput) error
}

// Handler routes API Gateway proxy events to the archive services. One
// Lambda serves every route; API Gateway is configured with the resource
// templates matched in Handle.
type Handler struct {
	correspondences correspondenceService
	recipients      recipientService
	letters         letterService
	allowedOrigin   string
}

func NewHandler(c correspondenceService, r recipientService, l letterService, allowedOrigin string) (*Handler, error) {
	if c == nil {
		return nil, errors.New("handler: correspondence service must not be nil")
	}
	if r == nil {
		return nil, errors.New("handler: recipient service must not be nil")
	}
	if l == nil {
		return nil, errors.New("handler: letter service must not be nil")
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Handler{correspondences: c, recipients: r, letters: l, allowedOrigin: allowedOrigin}, nil
}

// correspondencePayload is the shared body shape of the create and update
// correspondence routes. Sections are pointers (and letters a nil-able
// slice) so a missing section is distinguishable from an empty one.
type correspondencePayload struct {
	Recipient      *usecase.RecipientInput      `json:"recipient"`
	Correspondence *usecase.CorrespondenceInput `json:"correspondence"`
	Letters        []usecase.LetterInput        `json:"letters"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createCorrespondenceResponse struct {
	Message          string   `json:"message"`
	CorrespondenceID string   `json:"correspondenceId"`
	RecipientID      string   `json:"recipientId"`
	LetterIDs        []string `json:"letterIds"`
}

type createRecipientResponse struct {
	Message     string `json:"message"`
	RecipientID string `json:"recipientId"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadURL"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := h.responseHeaders(req)

	switch req.HTTPMethod + " " + req.Resource {
	case "POST /correspondences":
		return h.createCorrespondence(ctx, req, headers), nil
	case "GET /correspondences/{correspondenceId}":
		return h.getCorrespondence(ctx, req, headers), nil
	case "PUT /correspondences/{correspondenceId}":
		return h.updateCorrespondence(ctx, req, headers), nil
	case "DELETE /correspondences/{correspondenceId}":
		return h.deleteCorrespondence(ctx, req, headers), nil
	case "GET /correspondences/{correspondenceId}/letters":
		return h.listLetters(ctx, req, headers), nil
	case "POST /recipients":
		return h.createRecipient(ctx, req, headers), nil
	case "GET /recipients/{recipientId}":
		return h.getRecipient(ctx, req, headers), nil
	case "PUT /recipients/{recipientId}":
		return h.updateRecipient(ctx, req, headers), nil
	case "DELETE /recipients/{recipientId}":
		return h.deleteRecipient(ctx, req, headers), nil
	case "GET /recipients/{recipientId}/correspondences":
		return h.listCorrespondences(ctx, req, headers), nil
	case "POST /letters/upload-url":
		return h.uploadURL(ctx, req, headers), nil
	case "POST /letters/send":
		return h.sendLetter(ctx, req, headers), nil
	default:
		return respondJSON(http.StatusNotFound, headers, errorResponse{Error: string(usecase.ErrorNotFound), Message: "route not found"}), nil
	}
}

func (h *Handler) createCorrespondence(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var payload correspondencePayload
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		return respondInvalidBody(headers)
	}
	out, err := h.correspondences.Create(ctx, usecase.CreateCorrespondenceInput{
		Recipient:      payload.Recipient,
		Correspondence: payload.Correspondence,
		Letters:        payload.Letters,
	})
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusCreated, headers, createCorrespondenceResponse{
		Message:          "Correspondence created successfully.",
		CorrespondenceID: out.CorrespondenceID,
		RecipientID:      out.RecipientID,
		LetterIDs:        out.LetterIDs,
	})
}

func (h *Handler) getCorrespondence(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	corr, err := h.correspondences.Get(ctx, req.PathParameters["correspondenceId"])
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, corr)
}

func (h *Handler) updateCorrespondence(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var payload correspondencePayload
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		return respondInvalidBody(headers)
	}
	err := h.correspondences.Update(ctx, usecase.UpdateCorrespondenceInput{
		CorrespondenceID: req.PathParameters["correspondenceId"],
		Recipient:        payload.Recipient,
		Correspondence:   payload.Correspondence,
		Letters:          payload.Letters,
	})
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, messageResponse{Message: "Correspondence updated successfully."})
}

func (h *Handler) deleteCorrespondence(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	if err := h.correspondences.Delete(ctx, req.PathParameters["correspondenceId"]); err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, messageResponse{Message: "Correspondence deleted successfully."})
}

func (h *Handler) listLetters(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	letters, err := h.correspondences.Letters(ctx, req.PathParameters["correspondenceId"])
	if err != nil {
		return respondError(headers, err)
	}
	if letters == nil {
		letters = []domain.Letter{}
	}
	return respondJSON(http.StatusOK, headers, letters)
}

func (h *Handler) createRecipient(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var in usecase.RecipientInput
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respondInvalidBody(headers)
	}
	recipientID, err := h.recipients.Create(ctx, &in)
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusCreated, headers, createRecipientResponse{
		Message:     "Recipient created successfully.",
		RecipientID: recipientID,
	})
}

func (h *Handler) getRecipient(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	rec, err := h.recipients.Get(ctx, req.PathParameters["recipientId"])
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, rec)
}

func (h *Handler) updateRecipient(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var in usecase.RecipientInput
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respondInvalidBody(headers)
	}
	if err := h.recipients.Update(ctx, req.PathParameters["recipientId"], &in); err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, messageResponse{Message: "Recipient updated successfully."})
}

func (h *Handler) deleteRecipient(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	if err := h.recipients.Delete(ctx, req.PathParameters["recipientId"]); err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, messageResponse{Message: "Recipient deleted successfully."})
}

func (h *Handler) listCorrespondences(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	corrs, err := h.recipients.Correspondences(ctx, req.PathParameters["recipientId"])
	if err != nil {
		return respondError(headers, err)
	}
	if corrs == nil {
		corrs = []domain.Correspondence{}
	}
	return respondJSON(http.StatusOK, headers, corrs)
}

func (h *Handler) uploadURL(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var in usecase.UploadURLInput
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respondInvalidBody(headers)
	}
	url, err := h.letters.UploadURL(ctx, in)
	if err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusCreated, headers, uploadURLResponse{UploadURL: url})
}

func (h *Handler) sendLetter(ctx context.Context, req events.APIGatewayProxyRequest, headers map[string]string) events.APIGatewayProxyResponse {
	var in usecase.SendLetterInput
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respondInvalidBody(headers)
	}
	if err := h.letters.SendLetter(ctx, in); err != nil {
		return respondError(headers, err)
	}
	return respondJSON(http.StatusOK, headers, messageResponse{Message: "Letter sent successfully."})
}

// responseHeaders builds the base headers for every response, propagating an
// incoming correlation id case-insensitively and minting one otherwise.
func (h *Handler) responseHeaders(req events.APIGatewayProxyRequest) map[string]string {
	correlationID := ""
	for k, v := range req.Headers {
		if http.CanonicalHeaderKey(k) == "X-Correlation-Id" {
			correlationID = v
			break
		}
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": h.allowedOrigin,
		"X-Correlation-Id":            correlationID,
	}
}

func respondJSON(status int, headers map[string]string, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal response body", "err", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"STORAGE_ERROR","message":"Internal Server Error"}`,
		}
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(b)}
}

func respondInvalidBody(headers map[string]string) events.APIGatewayProxyResponse {
	return respondJSON(http.StatusBadRequest, headers, errorResponse{
		Error:   string(usecase.ErrorValidation),
		Message: "invalid request body",
	})
}

// respondError converts a service error into a response. Storage failures
// surface a generic message; the cause goes to the log, never to the caller.
func respondError(headers map[string]string, err error) events.APIGatewayProxyResponse {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		switch ue.Code {
		case usecase.ErrorValidation:
			return respondJSON(http.StatusBadRequest, headers, errorResponse{Error: string(ue.Code), Message: ue.Reason})
		case usecase.ErrorNotFound:
			return respondJSON(http.StatusNotFound, headers, errorResponse{Error: string(ue.Code), Message: ue.Reason})
		case usecase.ErrorConflict:
			return respondJSON(http.StatusBadRequest, headers, errorResponse{Error: string(ue.Code), Message: ue.Reason})
		}
	}
	slog.Error("request failed", "err", err)
	return respondJSON(http.StatusInternalServerError, headers, errorResponse{
		Error:   string(usecase.ErrorStorage),
		Message: "Internal Server Error",
	})
}
