package response

import (
	"time"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/domain/availability"
	"stay-concierge/pkg/utils"

	"github.com/shopspring/decimal"
)

type PropertyResponse struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"owner_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	City               string          `json:"city"`
	Address            string          `json:"address"`
	MaxGuests          int             `json:"max_guests"`
	PetsAllowed        bool            `json:"pets_allowed"`
	MinNights          int             `json:"min_nights"`
	NightlyRate        decimal.Decimal `json:"nightly_rate"`
	CleaningFee        decimal.Decimal `json:"cleaning_fee"`
	TouristTaxPerNight decimal.Decimal `json:"tourist_tax_per_night"`
	WeeklyDiscount     decimal.Decimal `json:"weekly_discount"`
	MonthlyDiscount    decimal.Decimal `json:"monthly_discount"`
	IsActive           bool            `json:"is_active"`
	AverageRating      float64         `json:"average_rating"`
	ReviewCount        int64           `json:"review_count"`
	AddOns             []AddOnResponse `json:"addons,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type AddOnResponse struct {
	ID          string          `json:"id"`
	PropertyID  string          `json:"property_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type BlockedDateResponse struct {
	Date   string              `json:"date"`
	Reason availability.Reason `json:"reason"`
}

type CalendarResponse struct {
	PropertyID   string                `json:"property_id"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	BlockedDates []BlockedDateResponse `json:"blocked_dates"`
}

func PropertyToResponse(p *entity.Property) PropertyResponse {
	return PropertyResponse{
		ID:                 p.ID.String(),
		OwnerID:            p.OwnerID.String(),
		Title:              p.Title,
		Description:        p.Description,
		City:               p.City,
		Address:            p.Address,
		MaxGuests:          p.MaxGuests,
		PetsAllowed:        p.PetsAllowed,
		MinNights:          p.MinNights,
		NightlyRate:        p.NightlyRate,
		CleaningFee:        p.CleaningFee,
		TouristTaxPerNight: p.TouristTaxPerNight,
		WeeklyDiscount:     p.WeeklyDiscount,
		MonthlyDiscount:    p.MonthlyDiscount,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

func AddOnToResponse(a *entity.AddOn) AddOnResponse {
	return AddOnResponse{
		ID:          a.ID.String(),
		PropertyID:  a.PropertyID.String(),
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price,
	}
}

func CalendarToResponse(propertyID string, from, to time.Time, dates []availability.BlockedDate) CalendarResponse {
	blocked := make([]BlockedDateResponse, len(dates))
	for i, d := range dates {
		blocked[i] = BlockedDateResponse{Date: utils.FormatDate(d.Date), Reason: d.Reason}
	}

	return CalendarResponse{
		PropertyID:   propertyID,
		From:         utils.FormatDate(from),
		To:           utils.FormatDate(to),
		BlockedDates: blocked,
	}
}
