package dto

type OrderLineRequest struct {
	ProductId string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type ProcessOrderRequest struct {
	EmailId string             `json:"email_id" validate:"required"`
	From    string             `json:"from,omitempty" validate:"omitempty,email"`
	Subject string             `json:"subject,omitempty"`
	Lines   []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type ProcessBatchRequest struct {
	Orders []ProcessOrderRequest `json:"orders" validate:"required,min=1,dive"`
}

type OrderOutcomeResponse struct {
	EmailId   string `json:"email_id"`
	ProductId string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
}

type ProcessOrderResponse struct {
	EmailId  string                 `json:"email_id"`
	Outcomes []OrderOutcomeResponse `json:"outcomes"`
	Reply    string                 `json:"reply,omitempty"`
}

type BatchSummaryResponse struct {
	SuccessCount     int                             `json:"success_count"`
	FailedCount      int                             `json:"failed_count"`
	Processed        map[string]ProcessOrderResponse `json:"processed_orders"`
	Errors           map[string]string               `json:"errors,omitempty"`
	InventoryChanges map[string]int                  `json:"inventory_changes"`
}
