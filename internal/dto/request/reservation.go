package request

import "github.com/shopspring/decimal"

type QuoteRequest struct {
	CheckIn  string   `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string   `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults   int      `json:"adults" validate:"required,min=1"`
	Children int      `json:"children" validate:"min=0"`
	Infants  int      `json:"infants" validate:"min=0"`
	Pets     int      `json:"pets" validate:"min=0"`
	AddOnIDs []string `json:"addon_ids,omitempty" validate:"omitempty,max=20,dive,uuid"`
}

type CreateReservationRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	QuoteRequest
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed pending_cancellation"`
}

type PayReservationRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}
