package dto

type ProductRequest struct {
	Id          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category"`
	Stock       int    `json:"stock" validate:"min=0"`
	Description string `json:"description"`
	Season      string `json:"season"`
}

type ImportProductsRequest struct {
	Products []ProductRequest `json:"products" validate:"required,min=1,dive"`
}

type ProductResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
	Season      string `json:"season"`
}

type StockResponse struct {
	ProductId string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type IndexStatusResponse struct {
	Entries int      `json:"entries"`
	Gaps    []string `json:"gaps,omitempty"`
}

// PublishEmbedProductMessage is the event-bus payload that asks the consumer
// to (re)embed one product.
type PublishEmbedProductMessage struct {
	ProductId string `json:"product_id"`
}

type SemanticSearchResponse struct {
	Query   string                  `json:"query"`
	Results []RetrievedItemResponse `json:"results"`
}
