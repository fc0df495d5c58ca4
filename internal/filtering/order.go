package filtering

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spigell/sponsorpath/internal/companies"
)

type ViewMode string

const (
	ViewRanked       ViewMode = "ranked"
	ViewAlphabetical ViewMode = "alphabetical"
)

var ViewModes = []ViewMode{ViewRanked, ViewAlphabetical}

func ParseViewMode(s string) (ViewMode, error) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if mode == "" {
		return ViewRanked, nil
	}
	if !mode.Valid() {
		return "", fmt.Errorf("unknown view mode %q, expected one of ranked, alphabetical", s)
	}
	return mode, nil
}

func (m ViewMode) Valid() bool {
	return slices.Contains(ViewModes, m)
}

// Order sorts the list in place. Ranked puts the best match first; ties keep
// catalog order. Alphabetical compares names with British English collation.
func Order(v *companies.Companies, mode ViewMode) {
	switch mode {
	case ViewAlphabetical:
		// A collator keeps internal buffers, so it is not shared between calls.
		collator := collate.New(language.BritishEnglish)
		slices.SortStableFunc(v.Items, func(a, b *companies.Company) int {
			return collator.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(v.Items, func(a, b *companies.Company) int {
			return cmp.Compare(b.Score(), a.Score())
		})
	}
}
