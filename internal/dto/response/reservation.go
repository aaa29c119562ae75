package response

import (
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/domain/pricing"
	"stay-concierge/pkg/utils"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	PropertyID string   `json:"property_id"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	Guests     int      `json:"guests"`
	AddOnIDs   []string `json:"addon_ids,omitempty"`
	pricing.Breakdown
}

type ReservationResponse struct {
	ID            string                   `json:"id"`
	OrderID       string                   `json:"order_id"`
	PropertyID    string                   `json:"property_id"`
	GuestID       string                   `json:"guest_id"`
	CheckIn       string                   `json:"check_in"`
	CheckOut      string                   `json:"check_out"`
	Nights        int                      `json:"nights"`
	Adults        int                      `json:"adults"`
	Children      int                      `json:"children"`
	Infants       int                      `json:"infants"`
	Pets          int                      `json:"pets"`
	AddOnIDs      []string                 `json:"addon_ids,omitempty"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"discount"`
	CleaningFee   decimal.Decimal          `json:"cleaning_fee"`
	AddOnsTotal   decimal.Decimal          `json:"addons_total"`
	ServiceFee    decimal.Decimal          `json:"service_fee"`
	TouristTax    decimal.Decimal          `json:"tourist_tax"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	Status        entity.ReservationStatus `json:"status"`
	PaymentStatus entity.PaymentStatus     `json:"payment_status"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

func ReservationToResponse(r *entity.Reservation) ReservationResponse {
	addOnIDs := make([]string, len(r.AddOnIDs))
	for i, id := range r.AddOnIDs {
		addOnIDs[i] = id.String()
	}

	return ReservationResponse{
		ID:            r.ID.String(),
		OrderID:       r.OrderID,
		PropertyID:    r.PropertyID.String(),
		GuestID:       r.GuestID.String(),
		CheckIn:       utils.FormatDate(r.CheckIn),
		CheckOut:      utils.FormatDate(r.CheckOut),
		Nights:        pricing.Nights(r.CheckIn, r.CheckOut),
		Adults:        r.Adults,
		Children:      r.Children,
		Infants:       r.Infants,
		Pets:          r.Pets,
		AddOnIDs:      addOnIDs,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		CleaningFee:   r.CleaningFee,
		AddOnsTotal:   r.AddOnsTotal,
		ServiceFee:    r.ServiceFee,
		TouristTax:    r.TouristTax,
		TotalAmount:   r.TotalAmount,
		Status:        r.Status,
		PaymentStatus: r.PaymentStatus,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
