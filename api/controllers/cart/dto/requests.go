package cartdto

import "github.com/google/uuid"

// Quantity bounds are enforced by the cart service so callers get INVALID_QUANTITY
// rather than a generic validation error.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type QuestionResponseRequest struct {
	Response string `json:"response" validate:"required,max=500"`
}
