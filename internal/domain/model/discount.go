package model

import (
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// DiscountCode is a promotional rule entered by the user at payment time.
type DiscountCode struct {
	ID           string
	Code         string // unique, stored upper-cased
	Type         DiscountType
	Value        int64    // percent for percentage, Rials for fixed
	MaxDiscount  int64    // 0 = uncapped
	MinAmountIRR int64    // 0 = no minimum
	MaxUses      int      // 0 = unlimited
	MaxPerUser   int      // 0 = unlimited
	PlanIDs      []string // empty = all plans
	ExpiresAt    *time.Time
	Active       bool
	UsedCount    int
	CreatedAt    time.Time
}

// NormalizeCode maps user input to the stored representation.
func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// AppliesToPlan checks the allow-list; an empty list means every plan.
func (d *DiscountCode) AppliesToPlan(planID string) bool {
	if len(d.PlanIDs) == 0 {
		return true
	}
	for _, id := range d.PlanIDs {
		if id == planID {
			return true
		}
	}
	return false
}

// DiscountAmount computes the discount for amount in Rials. The result is
// clamped so the payable amount never goes negative.
func (d *DiscountCode) DiscountAmount(amountIRR int64) int64 {
	var discount int64
	switch d.Type {
	case DiscountTypePercentage:
		discount = amountIRR * d.Value / 100
		if d.MaxDiscount > 0 && discount > d.MaxDiscount {
			discount = d.MaxDiscount
		}
	case DiscountTypeFixed:
		discount = d.Value
	}
	if discount > amountIRR {
		discount = amountIRR
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// DiscountUsage is an append-only ledger row. Per-user caps are computed by
// counting these rows rather than trusting a cached counter.
type DiscountUsage struct {
	ID        string
	CodeID    string
	UserID    string
	PaymentID string
	AmountIRR int64 // discount actually applied
	CreatedAt time.Time
}
