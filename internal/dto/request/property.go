package request

import "github.com/shopspring/decimal"

// Money fields accept JSON numbers or strings.
type CreatePropertyRequest struct {
	Title              string          `json:"title" validate:"required,min=3,max=200"`
	Description        string          `json:"description" validate:"max=5000"`
	City               string          `json:"city" validate:"required,max=100"`
	Address            string          `json:"address" validate:"required,max=300"`
	MaxGuests          int             `json:"max_guests" validate:"required,min=1,max=50"`
	PetsAllowed        bool            `json:"pets_allowed"`
	MinNights          int             `json:"min_nights" validate:"omitempty,min=1,max=365"`
	NightlyRate        decimal.Decimal `json:"nightly_rate" validate:"gt=0"`
	CleaningFee        decimal.Decimal `json:"cleaning_fee" validate:"gte=0"`
	TouristTaxPerNight decimal.Decimal `json:"tourist_tax_per_night" validate:"gte=0"`
	WeeklyDiscount     decimal.Decimal `json:"weekly_discount" validate:"gte=0,lte=100"`
	MonthlyDiscount    decimal.Decimal `json:"monthly_discount" validate:"gte=0,lte=100"`
}

type UpdatePropertyRequest struct {
	Title              *string          `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description        *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	City               *string          `json:"city,omitempty" validate:"omitempty,max=100"`
	Address            *string          `json:"address,omitempty" validate:"omitempty,max=300"`
	MaxGuests          *int             `json:"max_guests,omitempty" validate:"omitempty,min=1,max=50"`
	PetsAllowed        *bool            `json:"pets_allowed,omitempty"`
	MinNights          *int             `json:"min_nights,omitempty" validate:"omitempty,min=1,max=365"`
	NightlyRate        *decimal.Decimal `json:"nightly_rate,omitempty"`
	CleaningFee        *decimal.Decimal `json:"cleaning_fee,omitempty"`
	TouristTaxPerNight *decimal.Decimal `json:"tourist_tax_per_night,omitempty"`
	WeeklyDiscount     *decimal.Decimal `json:"weekly_discount,omitempty"`
	MonthlyDiscount    *decimal.Decimal `json:"monthly_discount,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

type ListPropertiesRequest struct {
	PaginatedRequest
	City      string
	MinGuests int
}

type CalendarRequest struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

type BlockDatesRequest struct {
	Dates []string `json:"dates" validate:"required,min=1,max=366,dive,datetime=2006-01-02"`
}

type CreateAddOnRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
}
