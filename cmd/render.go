package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/sponsorpath/internal/companies"
	"github.com/spigell/sponsorpath/internal/profile"
)

func renderCompanies(w io.Writer, list *companies.Companies) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINDUSTRY\tLOCATION\tROUTES\tMATCH\tSTATUS")
	for _, c := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Industry, c.Location, strings.Join(c.Routes, ", "), matchLabel(c), c.Status(),
		)
	}
	return tw.Flush()
}

// renderCompany prints one company. Match reasons stay hidden while it is locked.
func renderCompany(w io.Writer, c *companies.Company) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(w, "  industry:  %s\n", c.Industry)
	fmt.Fprintf(w, "  location:  %s\n", location(c))
	if c.TypeRating != "" {
		fmt.Fprintf(w, "  licence:   %s\n", c.TypeRating)
	}
	fmt.Fprintf(w, "  routes:    %s\n", strings.Join(c.Routes, ", "))
	fmt.Fprintf(w, "  match:     %s\n", matchLabel(c))
	fmt.Fprintf(w, "  status:    %s\n", c.Status())

	if c.IsLocked {
		fmt.Fprintln(w, "  why:       unlock to see why this sponsor matches")
		return
	}
	for _, reason := range c.MatchReasons {
		fmt.Fprintf(w, "  why:       %s\n", reason)
	}
}

func renderProfile(w io.Writer, p profile.UserProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"name", p.FullName},
		{"email", p.Email},
		{"current job title", p.CurrentJobTitle},
		{"desired job title", p.DesiredJobTitle},
		{"years of experience", p.YearsExperience},
		{"qualification", p.Qualification},
		{"industries", strings.Join(p.Industries, ", ")},
		{"locations", strings.Join(p.Locations, ", ")},
		{"skills", strings.Join(p.Skills, ", ")},
		{"onboarded", fmt.Sprintf("%t", p.IsOnboarded)},
		{"plan", string(p.SubscriptionTier)},
		{"unlocks", quotaLabel(p)},
		{"applications", fmt.Sprintf("%d", len(p.Applications))},
		{"interviews", fmt.Sprintf("%d", p.Interviews)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func quotaLabel(p profile.UserProfile) string {
	return fmt.Sprintf("%d of %d used, %d remaining", p.MatchesUsed, p.MatchesLimit, p.Remaining())
}

func matchLabel(c *companies.Company) string {
	if c.MatchScore == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *c.MatchScore)
}

func location(c *companies.Company) string {
	if c.County == "" {
		return c.Location
	}
	return c.Location + ", " + c.County
}

// companyLabel is the promptui item for a company. The id comes first so it can be split off.
func companyLabel(c *companies.Company) string {
	return fmt.Sprintf("%s %s / %s / %s", c.ID, c.Name, c.Location, matchLabel(c))
}
