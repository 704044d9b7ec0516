package usecase

import "correspondence-archive/internal/domain"

// RecipientInput is the recipient section of a request payload. Optional
// fields are pointers so the update path can distinguish "set this value"
// from "remove the stored attribute".
type RecipientInput struct {
	RecipientID  string  `json:"recipientId,omitempty"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Address      string  `json:"address"`
	Description  *string `json:"description,omitempty"`
	Occupation   *string `json:"occupation,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

// ReasonInput is the reason sub-object of a correspondence section.
type ReasonInput struct {
	Description string `json:"description"`
	Domain      string `json:"domain"`
	Impact      string `json:"impact"`
}

// CorrespondenceInput is the correspondence section of a request payload.
type CorrespondenceInput struct {
	Reason *ReasonInput `json:"reason"`
}

// LetterInput is one entry of the letters section. LetterID is empty for
// letters the caller wants freshly created.
type LetterInput struct {
	LetterID    string  `json:"letterId,omitempty"`
	Date        string  `json:"date"`
	ImageURL    string  `json:"imageURL"`
	Method      string  `json:"method"`
	Status      string  `json:"status"`
	Text        string  `json:"text"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

func (in RecipientInput) toDomain(recipientID string) domain.Recipient {
	return domain.Recipient{
		RecipientID:  recipientID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
		Description:  in.Description,
		Occupation:   in.Occupation,
		Organization: in.Organization,
	}
}

func (in LetterInput) toDomain(correspondenceID, letterID string) domain.Letter {
	return domain.Letter{
		CorrespondenceID: correspondenceID,
		LetterID:         letterID,
		Date:             in.Date,
		ImageURL:         in.ImageURL,
		Method:           in.Method,
		Status:           in.Status,
		Text:             in.Text,
		Title:            in.Title,
		Type:             in.Type,
		Description:      in.Description,
	}
}

func (in ReasonInput) toDomain() domain.Reason {
	return domain.Reason{
		Description: in.Description,
		Domain:      in.Domain,
		Impact:      in.Impact,
	}
}
