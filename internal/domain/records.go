package domain

// Recipient is a person letters are addressed to. A recipient may exist on
// its own or be created together with a correspondence.
type Recipient struct {
	RecipientID  string  `dynamodbav:"recipientId" json:"recipientId"`
	FirstName    string  `dynamodbav:"firstName" json:"firstName"`
	LastName     string  `dynamodbav:"lastName" json:"lastName"`
	Address      string  `dynamodbav:"address" json:"address"`
	Description  *string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Occupation   *string `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	Organization *string `dynamodbav:"organization,omitempty" json:"organization,omitempty"`
}

// Reason records why a correspondence was started.
type Reason struct {
	Description string `dynamodbav:"description" json:"description"`
	Domain      string `dynamodbav:"domain" json:"domain"`
	Impact      string `dynamodbav:"impact" json:"impact"`
}

// Correspondence groups the letters exchanged with one recipient.
// RecipientID is set at creation and never reassigned.
type Correspondence struct {
	CorrespondenceID string `dynamodbav:"correspondenceId" json:"correspondenceId"`
	RecipientID      string `dynamodbav:"recipientId" json:"recipientId"`
	Reason           Reason `dynamodbav:"reason" json:"reason"`
	CreatedAt        string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt        string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Letter is a single archived letter. It exists only in the context of a
// correspondence; its composite key is (correspondenceId, letterId).
type Letter struct {
	CorrespondenceID string  `dynamodbav:"correspondenceId" json:"correspondenceId"`
	LetterID         string  `dynamodbav:"letterId" json:"letterId"`
	Date             string  `dynamodbav:"date" json:"date"`
	ImageURL         string  `dynamodbav:"imageURL" json:"imageURL"`
	Method           string  `dynamodbav:"method" json:"method"`
	Status           string  `dynamodbav:"status" json:"status"`
	Text             string  `dynamodbav:"text" json:"text"`
	Title            string  `dynamodbav:"title" json:"title"`
	Type             string  `dynamodbav:"type" json:"type"`
	Description      *string `dynamodbav:"description,omitempty" json:"description,omitempty"`
}
