package strategy

import (
	"fmt"
	"sort"

	"maker_go/internal/domain"

	"github.com/shopspring/decimal"
)

// LadderSpec describes a symmetric staircase of post-only quotes around
// a center price.
type LadderSpec struct {
	Center    decimal.Decimal
	Levels    int
	SpreadPct decimal.Decimal // per-level spread in percent
	Size      decimal.Decimal
	Filter    domain.SideFilter
}

// Validate checks spec invariants before any generation or placement.
func (s LadderSpec) Validate() error {
	if !s.Center.IsPositive() {
		return fmt.Errorf("center price must be positive, got %s", s.Center)
	}
	if s.Levels < 1 {
		return fmt.Errorf("levels must be at least 1, got %d", s.Levels)
	}
	if !s.SpreadPct.IsPositive() {
		return fmt.Errorf("spread must be positive, got %s", s.SpreadPct)
	}
	if !s.Size.IsPositive() {
		return fmt.Errorf("size must be positive, got %s", s.Size)
	}
	switch s.Filter {
	case domain.FilterNone, domain.FilterBuyOnly, domain.FilterSellOnly:
	default:
		return fmt.Errorf("unknown side filter %q", s.Filter)
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Generate produces the ladder legs for spec: level i sits spread·i
// percent away from center, buys below and sells above. Legs are
// returned sorted ascending by price, a placement-order convention only.
// Generate has no side effects; callers validate the spec first.
func Generate(spec LadderSpec) []domain.QuoteLeg {
	legs := make([]domain.QuoteLeg, 0, 2*spec.Levels)

	for i := 1; i <= spec.Levels; i++ {
		offset := spec.SpreadPct.Mul(decimal.NewFromInt(int64(i))).Div(hundred)

		if spec.Filter != domain.FilterSellOnly {
			legs = append(legs, domain.QuoteLeg{
				Side:   domain.SideBuy,
				Amount: spec.Size,
				Price:  spec.Center.Mul(decimal.NewFromInt(1).Sub(offset)),
			})
		}

		if spec.Filter != domain.FilterBuyOnly {
			legs = append(legs, domain.QuoteLeg{
				Side:   domain.SideSell,
				Amount: spec.Size,
				Price:  spec.Center.Mul(decimal.NewFromInt(1).Add(offset)),
			})
		}
	}

	sort.Slice(legs, func(i, j int) bool {
		return legs[i].Price.LessThan(legs[j].Price)
	})

	return legs
}
