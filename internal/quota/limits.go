package quota

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/sponsorpath/internal/profile"
)

// Limits is the monthly unlock allowance of each subscription tier.
type Limits struct {
	Free      int `mapstructure:"free" validate:"gte=0"`
	Basic     int `mapstructure:"basic" validate:"gte=0"`
	Pro       int `mapstructure:"pro" validate:"gte=0"`
	Unlimited int `mapstructure:"unlimited" validate:"gte=0"`
}

func DefaultLimits() Limits {
	return Limits{Free: 5, Basic: 15, Pro: 50, Unlimited: 9999}
}

func (l Limits) Validate() error {
	if err := validator.New().Struct(l); err != nil {
		return fmt.Errorf("invalid quota limits: %w", err)
	}
	return nil
}

// For returns the allowance of the tier. Unknown tiers get the free allowance.
func (l Limits) For(tier profile.Tier) int {
	switch tier {
	case profile.TierBasic:
		return l.Basic
	case profile.TierPro:
		return l.Pro
	case profile.TierUnlimited:
		return l.Unlimited
	default:
		return l.Free
	}
}
