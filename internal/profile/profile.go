package profile

import (
	"fmt"
	"slices"
	"strings"
)

type Tier string

const (
	TierFree      Tier = "Free"
	TierBasic     Tier = "Basic"
	TierPro       Tier = "Pro"
	TierUnlimited Tier = "Unlimited"
)

// Tiers lists subscription tiers from the cheapest to the most expensive.
var Tiers = []Tier{TierFree, TierBasic, TierPro, TierUnlimited}

// ParseTier resolves a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	for _, tier := range Tiers {
		if strings.EqualFold(string(tier), s) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown subscription tier %q", s)
}

func (t Tier) Valid() bool {
	return slices.Contains(Tiers, t)
}

// UserProfile is the single durable record of the current user.
// Industries, Locations and Applications are sets kept in insertion order.
// Skills is ordered: the first skill is the headline skill.
type UserProfile struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	CurrentJobTitle string `json:"currentJobTitle"`
	YearsExperience string `json:"yearsExperience"`
	Qualification   string `json:"qualification"`
	DesiredJobTitle string `json:"desiredJobTitle"`

	Industries []string `json:"industries"`
	Locations  []string `json:"locations"`
	Skills     []string `json:"skills"`

	IsOnboarded bool `json:"isOnboarded"`

	SubscriptionTier Tier `json:"subscriptionTier"`
	MatchesUsed      int  `json:"matchesUsed"`
	MatchesLimit     int  `json:"matchesLimit"`

	Applications []string `json:"applications"`
	Interviews   int      `json:"interviews"`
}

// Default returns the profile created on first use for a free tier account.
func Default(limit int) UserProfile {
	return UserProfile{
		FullName:         "Guest User",
		Email:            "user@example.com",
		Industries:       []string{},
		Locations:        []string{},
		Skills:           []string{},
		SubscriptionTier: TierFree,
		MatchesLimit:     limit,
		Applications:     []string{},
	}
}

// Clone returns a deep copy, so callers never share slices with the store.
func (p UserProfile) Clone() UserProfile {
	p.Industries = cloneStrings(p.Industries)
	p.Locations = cloneStrings(p.Locations)
	p.Skills = cloneStrings(p.Skills)
	p.Applications = cloneStrings(p.Applications)
	return p
}

// HasApplied reports whether the sponsor id is in the applications set.
func (p UserProfile) HasApplied(id string) bool {
	return slices.Contains(p.Applications, id)
}

// Remaining returns how many unlocks are left in the current period.
func (p UserProfile) Remaining() int {
	if p.MatchesUsed >= p.MatchesLimit {
		return 0
	}
	return p.MatchesLimit - p.MatchesUsed
}

// HeadlineSkill returns the first skill or an empty string.
func (p UserProfile) HeadlineSkill() string {
	if len(p.Skills) == 0 {
		return ""
	}
	return p.Skills[0]
}

func (p UserProfile) validate() error {
	if p.MatchesUsed < 0 {
		return fmt.Errorf("matchesUsed must not be negative, got %d", p.MatchesUsed)
	}
	if p.MatchesLimit < 0 {
		return fmt.Errorf("matchesLimit must not be negative, got %d", p.MatchesLimit)
	}
	if p.MatchesUsed > p.MatchesLimit {
		return fmt.Errorf("matchesUsed %d exceeds matchesLimit %d", p.MatchesUsed, p.MatchesLimit)
	}
	if p.Interviews < 0 {
		return fmt.Errorf("interviews must not be negative, got %d", p.Interviews)
	}
	if p.SubscriptionTier != "" && !p.SubscriptionTier.Valid() {
		return fmt.Errorf("unknown subscription tier %q", p.SubscriptionTier)
	}
	return nil
}

func (p *UserProfile) normalize() {
	p.Industries = normalizeSet(p.Industries)
	p.Locations = normalizeSet(p.Locations)
	p.Applications = normalizeSet(p.Applications)
	p.Skills = normalizeList(p.Skills)
	if p.SubscriptionTier == "" {
		p.SubscriptionTier = TierFree
	}
}

// normalizeSet trims values, drops blanks and keeps the first occurrence of duplicates.
func normalizeSet(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || slices.Contains(result, value) {
			continue
		}
		result = append(result, value)
	}
	return result
}

func normalizeList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}
