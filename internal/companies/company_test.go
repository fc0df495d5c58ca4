package companies

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/profile"
)

func sampleRecords() []catalog.Record {
	return []catalog.Record{
		{ID: "1", OrganisationName: "Acme Software", Town: "London", Route: "Skilled Worker", Industry: "Technology"},
		{ID: "2", OrganisationName: "Mystery Ltd", Town: "Croydon", Route: "Skilled Worker"},
		{ID: "3", OrganisationName: "St Mary's Hospital", Town: "Leeds", Route: "Health and Care", Industry: "Healthcare"},
	}
}

func TestBuild(t *testing.T) {
	p := profile.UserProfile{
		Industries:   []string{"Technology"},
		Locations:    []string{"London"},
		Applications: []string{"3"},
	}

	list := Build(sampleRecords(), p)
	if list.Len() != 3 {
		t.Fatalf("expected 3 companies, got %d", list.Len())
	}

	acme := list.FindByID("1")
	if acme.Score() != 95 || len(acme.MatchReasons) != 2 {
		t.Fatalf("unexpected acme projection: %+v", acme)
	}
	if !acme.IsLocked || acme.HasApplied {
		t.Fatalf("companies not applied to must start locked")
	}

	mystery := list.FindByID("2")
	if mystery.Industry != catalog.IndustryOther {
		t.Fatalf("missing industry must be normalized to Other, got %q", mystery.Industry)
	}
	if mystery.Score() != 75 {
		t.Fatalf("expected croydon to match london, got %d", mystery.Score())
	}

	hospital := list.FindByID("3")
	if hospital.IsLocked || !hospital.HasApplied {
		t.Fatalf("applied company must start unlocked: %+v", hospital)
	}
	if len(hospital.Routes) != 1 || hospital.Routes[0] != "Health and Care" {
		t.Fatalf("unexpected routes: %v", hospital.Routes)
	}
}

func TestRebuildRelocksUnlockedCompanies(t *testing.T) {
	p := profile.UserProfile{}

	list := Build(sampleRecords(), p)
	if !list.Unlock("1") {
		t.Fatalf("expected company to be found")
	}
	if list.FindByID("1").IsLocked {
		t.Fatalf("expected company to be unlocked in this projection")
	}

	rebuilt := Build(sampleRecords(), p)
	if !rebuilt.FindByID("1").IsLocked {
		t.Fatalf("a fresh projection must be locked again unless applied")
	}
}

func TestUnlockAndMarkAppliedUnknownID(t *testing.T) {
	list := Build(sampleRecords(), profile.UserProfile{})

	if list.Unlock("missing") || list.MarkApplied("missing") {
		t.Fatalf("unknown ids must not be found")
	}

	if !list.MarkApplied("2") {
		t.Fatalf("expected company to be found")
	}
	company := list.FindByID("2")
	if !company.HasApplied || company.IsLocked || company.Status() != "applied" {
		t.Fatalf("unexpected company after apply: %+v", company)
	}
}

func TestCloneIsDeep(t *testing.T) {
	list := Build(sampleRecords(), profile.UserProfile{Industries: []string{"Technology"}})
	clone := list.Clone()

	*clone.Items[0].MatchScore = 1
	clone.Items[0].Routes[0] = "changed"
	clone.Items[0].MatchReasons[0] = "changed"

	original := list.Items[0]
	if original.Score() != 80 || original.Routes[0] != "Skilled Worker" || original.MatchReasons[0] == "changed" {
		t.Fatalf("clone shares state with the original: %+v", original)
	}
}

func TestScoreAbsent(t *testing.T) {
	c := &Company{}
	if c.Score() != 0 {
		t.Fatalf("absent score must read as zero")
	}

	zero := 0
	c.MatchScore = &zero
	if c.MatchScore == nil {
		t.Fatalf("explicit zero must stay distinct from absent")
	}
}

func TestReportByIndustry(t *testing.T) {
	p := profile.UserProfile{Industries: []string{"Technology"}, Applications: []string{"3"}}
	list := Build(sampleRecords(), p)

	report := list.ReportByIndustry()

	tech := report["Technology"]
	if len(tech) != 1 {
		t.Fatalf("expected 1 technology entry, got %d", len(tech))
	}
	if tech[0]["match_score"] != "80%" {
		t.Fatalf("unexpected score: %q", tech[0]["match_score"])
	}
	if tech[0]["match_reasons"] != lockedPlaceholder {
		t.Fatalf("locked companies must hide their reasons, got %q", tech[0]["match_reasons"])
	}

	care := report["Healthcare"]
	if len(care) != 1 || care[0]["status"] != "applied" {
		t.Fatalf("unexpected healthcare entries: %v", care)
	}
	if _, ok := care[0]["match_reasons"]; ok {
		t.Fatalf("did not expect reasons for an unscored match")
	}

	if len(report["Other"]) != 1 {
		t.Fatalf("expected the unknown industry under Other")
	}
}

func TestDumpToTmpFile(t *testing.T) {
	list := Build(sampleRecords(), profile.UserProfile{})

	name, err := list.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Companies
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Len() != 3 || decoded.Items[0].Score() != 60 {
		t.Fatalf("unexpected dump: %+v", decoded.Items)
	}
}

func TestExclude(t *testing.T) {
	list := Build(sampleRecords(), profile.UserProfile{})

	kept, excluded := list.Exclude(func(c *Company) bool { return c.Location == "Croydon" })
	if kept.Len() != 2 || len(excluded) != 1 || excluded[0] != "2" {
		t.Fatalf("unexpected exclude result: kept=%v excluded=%v", kept.IDs(), excluded)
	}
	if list.Len() != 3 {
		t.Fatalf("exclude must not modify the receiver")
	}
}
