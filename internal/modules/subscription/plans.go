package subscription

import (
	"errors"

	"github.com/shopspring/decimal"

	"tutorhub/internal/domain"
)

var ErrUnknownPlan = errors.New("unknown subscription plan")

var plans = []domain.Plan{
	{Name: "monthly", Price: decimal.NewFromInt(199), DurationMonths: 1, Description: "Four lessons a month with priority booking"},
	{Name: "quarterly", Price: decimal.NewFromInt(549), DurationMonths: 3, Description: "Three months of lessons at a lower monthly rate"},
	{Name: "yearly", Price: decimal.NewFromInt(1999), DurationMonths: 12, Description: "A full year of lessons and TOPIK preparation material"},
}

// Plans returns the catalog in display order.
func Plans() []domain.Plan {
	out := make([]domain.Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanByName(name string) (domain.Plan, error) {
	for _, p := range plans {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Plan{}, ErrUnknownPlan
}
