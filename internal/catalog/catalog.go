// Package catalog holds the read-only list of licensed visa sponsors.
package catalog

import (
	"slices"
)

// Record is one sponsor licence entry. An organisation licensed for several
// routes appears once per route.
type Record struct {
	ID               string `json:"id"`
	OrganisationName string `json:"organisationName"`
	Town             string `json:"town"`
	County           string `json:"county"`
	TypeRating       string `json:"typeRating"`
	Route            string `json:"route"`
	// Industry is inferred from the organisation name. Empty means unknown.
	Industry string `json:"industry,omitempty"`
}

// Catalog is an immutable, ordered list of records.
type Catalog struct {
	records []Record
	byID    map[string]int
}

// New builds a catalog from records, keeping their order. Records with a
// duplicate id keep the first occurrence.
func New(records []Record) *Catalog {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		byID:    make(map[string]int, len(records)),
	}

	for _, record := range records {
		if _, ok := c.byID[record.ID]; ok {
			continue
		}
		c.byID[record.ID] = len(c.records)
		c.records = append(c.records, record)
	}

	return c
}

// Records returns a copy of all records in catalog order.
func (c *Catalog) Records() []Record {
	return slices.Clone(c.records)
}

func (c *Catalog) Len() int {
	return len(c.records)
}

func (c *Catalog) FindByID(id string) (Record, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// Routes returns the distinct visa routes in order of first appearance.
func (c *Catalog) Routes() []string {
	return c.distinct(func(r Record) string { return r.Route })
}

// Towns returns the distinct towns in order of first appearance.
func (c *Catalog) Towns() []string {
	return c.distinct(func(r Record) string { return r.Town })
}

func (c *Catalog) distinct(field func(Record) string) []string {
	var values []string
	for _, record := range c.records {
		value := field(record)
		if value == "" || slices.Contains(values, value) {
			continue
		}
		values = append(values, value)
	}
	return values
}
