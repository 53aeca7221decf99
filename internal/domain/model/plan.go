package model

import (
	"time"

	"marketplace-monetization/internal/domain"
)

// FeaturedPlan represents a purchasable featured-placement tier with a fixed
// duration and price in IRR.
type FeaturedPlan struct {
	ID              string
	Name            string
	DurationDays    int
	PriceIRR        int64
	DiscountPercent int      // plan's own baseline discount, independent of codes
	Features        []string // bullet points shown on the storefront
	Active          bool
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *FeaturedPlan) IsZero() bool { return p == nil || p.ID == "" }

// FinalPriceIRR applies the plan's own discount percent to its base price.
func (p *FeaturedPlan) FinalPriceIRR() int64 {
	if p.DiscountPercent <= 0 {
		return p.PriceIRR
	}
	return p.PriceIRR - p.PriceIRR*int64(p.DiscountPercent)/100
}

// NewFeaturedPlan validates and constructs a plan.
func NewFeaturedPlan(id, name string, durationDays int, priceIRR int64, discountPercent int, features []string, sortOrder int) (*FeaturedPlan, error) {
	if id == "" || name == "" || durationDays <= 0 || priceIRR <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &FeaturedPlan{
		ID:              id,
		Name:            name,
		DurationDays:    durationDays,
		PriceIRR:        priceIRR,
		DiscountPercent: discountPercent,
		Features:        features,
		Active:          true,
		SortOrder:       sortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
