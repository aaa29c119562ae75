package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending             ReservationStatus = "pending"
	ReservationConfirmed           ReservationStatus = "confirmed"
	ReservationCancelled           ReservationStatus = "cancelled"
	ReservationCompleted           ReservationStatus = "completed"
	ReservationPendingCancellation ReservationStatus = "pending_cancellation"
)

// BlockingStatuses hold their dates on the property calendar.
var BlockingStatuses = []string{string(ReservationConfirmed), string(ReservationPending)}

func (s ReservationStatus) Blocking() bool {
	return slices.Contains(BlockingStatuses, string(s))
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentRefundPending PaymentStatus = "refund_pending"
)

type Reservation struct {
	BaseNoDelete
	OrderID       string            `db:"order_id"`
	PropertyID    uuid.UUID         `db:"property_id"`
	GuestID       uuid.UUID         `db:"guest_id"`
	CheckIn       time.Time         `db:"check_in"`
	CheckOut      time.Time         `db:"check_out"`
	Adults        int               `db:"adults"`
	Children      int               `db:"children"`
	Infants       int               `db:"infants"`
	Pets          int               `db:"pets"`
	AddOnIDs      []uuid.UUID       `db:"addon_ids"`
	Subtotal      decimal.Decimal   `db:"subtotal"`
	Discount      decimal.Decimal   `db:"discount"`
	CleaningFee   decimal.Decimal   `db:"cleaning_fee"`
	AddOnsTotal   decimal.Decimal   `db:"addons_total"`
	ServiceFee    decimal.Decimal   `db:"service_fee"`
	TouristTax    decimal.Decimal   `db:"tourist_tax"`
	TotalAmount   decimal.Decimal   `db:"total_amount"`
	Status        ReservationStatus `db:"status"`
	PaymentStatus PaymentStatus     `db:"payment_status"`
}
