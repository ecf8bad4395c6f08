package dto

type EmailRequest struct {
	Id      string `json:"id" validate:"required"`
	From    string `json:"from" validate:"omitempty,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

type ClassifyBatchRequest struct {
	Emails []EmailRequest `json:"emails" validate:"required,min=1,dive"`
}

type ClassificationResponse struct {
	EmailId  string `json:"email_id"`
	Category string `json:"category"`
	Error    string `json:"error,omitempty"`
}

type InquiryRequest struct {
	Email        EmailRequest `json:"email" validate:"required"`
	BudgetTokens int          `json:"budget_tokens" validate:"omitempty,min=1"`
}

type RetrievedItemResponse struct {
	ProductId  string  `json:"product_id"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity"`
	Snippet    string  `json:"snippet"`
	Tokens     int     `json:"tokens"`
}

type InquiryResponse struct {
	EmailId     string                  `json:"email_id"`
	Answer      string                  `json:"answer"`
	Items       []RetrievedItemResponse `json:"items"`
	TotalTokens int                     `json:"total_tokens"`
}
