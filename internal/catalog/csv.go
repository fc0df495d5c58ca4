package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names of the Home Office "Worker and Temporary Worker" register.
const (
	columnName       = "organisation name"
	columnTown       = "town/city"
	columnCounty     = "county"
	columnTypeRating = "type & rating"
	columnRoute      = "route"
)

const idPrefix = "uk-gov-"

// LoadCSV parses the sponsor register. Ids are assigned from the position of
// each data row, so the same file always yields the same ids.
func LoadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sponsor register is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = idx
	}

	for _, required := range []string{columnName, columnTown, columnRoute} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("sponsor register has no %q column", required)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		name := field(row, columns, columnName)
		if name == "" {
			continue
		}

		records = append(records, Record{
			ID:               fmt.Sprintf("%s%d", idPrefix, len(records)+1),
			OrganisationName: name,
			Town:             field(row, columns, columnTown),
			County:           field(row, columns, columnCounty),
			TypeRating:       field(row, columns, columnTypeRating),
			Route:            field(row, columns, columnRoute),
			Industry:         InferIndustry(name),
		})
	}

	return New(records), nil
}

// LoadFile reads the sponsor register from path.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	catalog, err := LoadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
