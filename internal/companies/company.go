package companies

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/matching"
	"github.com/spigell/sponsorpath/internal/profile"
)

const lockedPlaceholder = "unlock to see why this sponsor matches"

// Companies is the list shown on the "find companies" view. It is derived
// from the catalog on every render and never persisted.
type Companies struct {
	Items []*Company
}

// Company is a sponsor record projected for one profile.
type Company struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Industry   string   `json:"industry"`
	Location   string   `json:"location"`
	County     string   `json:"county,omitempty"`
	TypeRating string   `json:"typeRating,omitempty"`
	Routes     []string `json:"routes"`

	// MatchScore is nil when the company was not scored.
	MatchScore   *int     `json:"matchScore,omitempty"`
	MatchReasons []string `json:"matchReasons,omitempty"`

	IsLocked   bool `json:"isLocked"`
	HasApplied bool `json:"hasApplied"`
}

// Build scores every record against the profile, keeping catalog order.
// Companies the profile has applied to start unlocked; all others start locked.
func Build(records []catalog.Record, p profile.UserProfile) *Companies {
	items := make([]*Company, 0, len(records))
	for _, record := range records {
		items = append(items, FromRecord(record, p))
	}
	return &Companies{Items: items}
}

func FromRecord(record catalog.Record, p profile.UserProfile) *Company {
	result := matching.Score(p, record)
	score := result.Score
	applied := p.HasApplied(record.ID)

	industry := record.Industry
	if industry == "" {
		industry = catalog.IndustryOther
	}

	return &Company{
		ID:           record.ID,
		Name:         record.OrganisationName,
		Industry:     industry,
		Location:     record.Town,
		County:       record.County,
		TypeRating:   record.TypeRating,
		Routes:       []string{record.Route},
		MatchScore:   &score,
		MatchReasons: result.Reasons,
		IsLocked:     !applied,
		HasApplied:   applied,
	}
}

// Score returns the match score, treating an absent score as zero.
func (c *Company) Score() int {
	if c.MatchScore == nil {
		return 0
	}
	return *c.MatchScore
}

func (c *Company) Clone() *Company {
	clone := *c
	clone.Routes = slices.Clone(c.Routes)
	clone.MatchReasons = slices.Clone(c.MatchReasons)
	if c.MatchScore != nil {
		score := *c.MatchScore
		clone.MatchScore = &score
	}
	return &clone
}

// Clone returns a deep copy of the list.
func (v *Companies) Clone() *Companies {
	items := make([]*Company, 0, len(v.Items))
	for _, company := range v.Items {
		items = append(items, company.Clone())
	}
	return &Companies{Items: items}
}

func (v *Companies) Len() int {
	return len(v.Items)
}

func (v *Companies) FindByID(id string) *Company {
	for _, company := range v.Items {
		if company.ID == id {
			return company
		}
	}
	return nil
}

// Unlock reveals the company in this projection only. It reports whether the company was found.
func (v *Companies) Unlock(id string) bool {
	company := v.FindByID(id)
	if company == nil {
		return false
	}
	company.IsLocked = false
	return true
}

// MarkApplied flags the company as applied to, which also unlocks it.
func (v *Companies) MarkApplied(id string) bool {
	company := v.FindByID(id)
	if company == nil {
		return false
	}
	company.HasApplied = true
	company.IsLocked = false
	return true
}

// Exclude returns a new list without the companies matched by drop, along with
// the ids of the excluded companies. The receiver is left untouched.
func (v *Companies) Exclude(drop func(*Company) bool) (*Companies, []string) {
	kept := make([]*Company, 0, len(v.Items))
	excluded := make([]string, 0)
	for _, company := range v.Items {
		if drop(company) {
			excluded = append(excluded, company.ID)
			continue
		}
		kept = append(kept, company)
	}
	return &Companies{Items: kept}, excluded
}

func (v *Companies) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, company := range v.Items {
		ids = append(ids, company.ID)
	}
	return ids
}

// ReportByIndustry groups companies by industry. Locked companies do not reveal their match reasons.
func (v *Companies) ReportByIndustry() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, company := range v.Items {
		entry := map[string]string{
			"id":       company.ID,
			"name":     company.Name,
			"location": company.Location,
			"routes":   strings.Join(company.Routes, ", "),
			"status":   company.Status(),
		}

		if company.MatchScore != nil {
			entry["match_score"] = fmt.Sprintf("%d%%", *company.MatchScore)
		}

		switch {
		case company.IsLocked:
			entry["match_reasons"] = lockedPlaceholder
		case len(company.MatchReasons) > 0:
			entry["match_reasons"] = strings.Join(company.MatchReasons, "; ")
		}

		report[company.Industry] = append(report[company.Industry], entry)
	}
	return report
}

// Status is a short label for the company's lock state.
func (c *Company) Status() string {
	switch {
	case c.HasApplied:
		return "applied"
	case c.IsLocked:
		return "locked"
	default:
		return "unlocked"
	}
}

func (v *Companies) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "companies_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
