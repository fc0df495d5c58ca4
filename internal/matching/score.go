// Package matching scores sponsors against a user profile.
//
// The score is a deterministic heuristic: a base of 60 plus fixed bonuses for
// industry and location matches, and a small bonus when the match is already
// strong and the profile lists skills. The skill bonus only ever cites the
// first skill and never looks at the sponsor; it is a coarse proxy and not a
// real skill-to-sponsor match.
package matching

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/profile"
)

const (
	BaseScore = 60
	MaxScore  = 99

	IndustryBonus = 20
	LocationBonus = 15
	SkillBonus    = 5

	// skillThreshold is the running score that must be exceeded before the skill bonus applies.
	skillThreshold = 70
)

// londonAliases are commuter-belt towns that count as London.
var londonAliases = []string{"croydon", "dartford", "epsom"}

// Result is the outcome of scoring one sponsor. Reasons follow the order the bonuses were applied.
type Result struct {
	Score   int
	Reasons []string
}

// Score computes the compatibility of a sponsor with the profile.
func Score(p profile.UserProfile, sponsor catalog.Record) Result {
	score := BaseScore
	reasons := make([]string, 0, 3)

	if matchesIndustry(p.Industries, sponsor.Industry) {
		score += IndustryBonus
		reasons = append(reasons, fmt.Sprintf("Matches your interest in %s", sponsor.Industry))
	}

	if matchesLocation(p.Locations, sponsor.Town) {
		score += LocationBonus
		reasons = append(reasons, fmt.Sprintf("Located in %s", sponsor.Town))
	}

	if skill := p.HeadlineSkill(); score > skillThreshold && skill != "" {
		score += SkillBonus
		reasons = append(reasons, fmt.Sprintf("Hiring for %s", skill))
	}

	return Result{
		Score:   min(score, MaxScore),
		Reasons: reasons,
	}
}

func matchesIndustry(tags []string, industry string) bool {
	if industry == "" {
		return false
	}
	industry = strings.ToLower(industry)
	for _, tag := range tags {
		if strings.Contains(industry, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

func matchesLocation(tags []string, town string) bool {
	town = strings.ToLower(town)
	for _, tag := range tags {
		tag = strings.ToLower(tag)
		if strings.Contains(town, tag) {
			return true
		}
		if tag == "london" && IsLondonAlias(town) {
			return true
		}
	}
	return false
}

// IsLondonAlias reports whether the town is one of the satellite towns matched as London.
func IsLondonAlias(town string) bool {
	return slices.Contains(londonAliases, strings.ToLower(strings.TrimSpace(town)))
}
