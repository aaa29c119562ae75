package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Property struct {
	Base
	OwnerID            uuid.UUID       `db:"owner_id"`
	Title              string          `db:"title"`
	Description        string          `db:"description"`
	City               string          `db:"city"`
	Address            string          `db:"address"`
	MaxGuests          int             `db:"max_guests"`
	PetsAllowed        bool            `db:"pets_allowed"`
	MinNights          int             `db:"min_nights"`
	NightlyRate        decimal.Decimal `db:"nightly_rate"`
	CleaningFee        decimal.Decimal `db:"cleaning_fee"`
	TouristTaxPerNight decimal.Decimal `db:"tourist_tax"`
	WeeklyDiscount     decimal.Decimal `db:"weekly_discount"`  // percent
	MonthlyDiscount    decimal.Decimal `db:"monthly_discount"` // percent
	BlockedDates       []time.Time     `db:"blocked_dates"`
	IsActive           bool            `db:"is_active"`
}

type PropertyFilter struct {
	City      string
	MinGuests int
	OwnerID   *uuid.UUID
}

// AddOn is a concierge service a host offers with a property, priced per stay.
type AddOn struct {
	BaseNoDelete
	PropertyID  uuid.UUID       `db:"property_id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
	IsActive    bool            `db:"is_active"`
}
