package catalog

import (
	"slices"
	"strings"
	"testing"
)

func TestSample(t *testing.T) {
	c := Sample()

	if c.Len() != 55 {
		t.Fatalf("expected 55 sample records, got %d", c.Len())
	}

	first, ok := c.FindByID("uk-gov-1")
	if !ok {
		t.Fatalf("expected uk-gov-1 to exist")
	}
	if first.OrganisationName != "ACCENTURE (UK) LIMITED" || first.Town != "London" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Route != "Skilled Worker" || first.TypeRating != "Worker (A rating)" {
		t.Fatalf("unexpected route/rating: %+v", first)
	}

	croydon, ok := c.FindByID("uk-gov-32")
	if !ok || croydon.Town != "Croydon" {
		t.Fatalf("expected MOTT MACDONALD in Croydon, got %+v", croydon)
	}

	if _, ok := c.FindByID("uk-gov-56"); ok {
		t.Fatalf("did not expect uk-gov-56")
	}

	if !slices.Equal(c.Routes(), []string{"Skilled Worker"}) {
		t.Fatalf("unexpected routes: %v", c.Routes())
	}
}

func TestTowns(t *testing.T) {
	c := New([]Record{
		{ID: "a", Town: "London"},
		{ID: "b", Town: "Leeds"},
		{ID: "c", Town: "London"},
		{ID: "d"},
	})

	if !slices.Equal(c.Towns(), []string{"London", "Leeds"}) {
		t.Fatalf("unexpected towns: %v", c.Towns())
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	c := New([]Record{{ID: "a", OrganisationName: "A"}})

	records := c.Records()
	records[0].OrganisationName = "changed"

	got, _ := c.FindByID("a")
	if got.OrganisationName != "A" {
		t.Fatalf("catalog must be immutable, got %q", got.OrganisationName)
	}
}

func TestNewDropsDuplicateIDs(t *testing.T) {
	c := New([]Record{
		{ID: "a", OrganisationName: "First"},
		{ID: "a", OrganisationName: "Second"},
		{ID: "b", OrganisationName: "Third"},
	})

	if c.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", c.Len())
	}
	got, _ := c.FindByID("a")
	if got.OrganisationName != "First" {
		t.Fatalf("expected first occurrence to win, got %q", got.OrganisationName)
	}
}

func TestLoadCSV(t *testing.T) {
	input := "\ufeffOrganisation Name,Town/City,County,Type & Rating,Route\n" +
		"Acme Software Ltd,London,Greater London,Worker (A rating),Skilled Worker\n" +
		"Acme Software Ltd,London,Greater London,Temporary Worker (A rating),Global Business Mobility: Senior or Specialist Worker\n" +
		",Nowhere,,,\n" +
		"St Mary's Hospital,Leeds,West Yorkshire,Worker (A rating),Health and Care\n"

	c, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := c.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records (blank name skipped), got %d", len(records))
	}

	if records[0].ID != "uk-gov-1" || records[1].ID != "uk-gov-2" || records[2].ID != "uk-gov-3" {
		t.Fatalf("unexpected ids: %s %s %s", records[0].ID, records[1].ID, records[2].ID)
	}
	if records[0].OrganisationName != records[1].OrganisationName || records[0].Route == records[1].Route {
		t.Fatalf("expected one record per route for the same organisation")
	}
	if records[0].County != "Greater London" || records[0].Industry != IndustryTechnology {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[2].Industry != IndustryHealthcare {
		t.Fatalf("expected healthcare, got %q", records[2].Industry)
	}
}

func TestLoadCSVRequiresColumns(t *testing.T) {
	if _, err := LoadCSV(strings.NewReader("Name,City\nAcme,London\n")); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	if _, err := LoadCSV(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestInferIndustry(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "DARKTRACE CYBER LIMITED", want: IndustryTechnology},
		{name: "KING'S COLLEGE HOSPITAL NHS FOUNDATION TRUST", want: IndustryHealthcare},
		{name: "BARCLAYS BANK PLC", want: IndustryFinance},
		{name: "BOSTON CONSULTING GROUP UK LLP", want: IndustryConsulting},
		{name: "LAING O'ROURKE CONSTRUCTION", want: IndustryEngineering},
		{name: "UNIVERSITY OF OXFORD", want: IndustryEducation},
		{name: "ARUP", want: IndustryOther},
		// Keywords are checked in order, technology before finance.
		{name: "Data Capital Partners", want: IndustryTechnology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferIndustry(tt.name); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
