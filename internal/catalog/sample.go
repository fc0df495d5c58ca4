package catalog

import (
	_ "embed"
	"strings"
	"sync"
)

// A representative extract of the UK sponsor register.
//
//go:embed uk_sponsors_sample.csv
var sampleCSV string

var (
	sampleOnce    sync.Once
	sampleCatalog *Catalog
)

// Sample returns the embedded sample catalog. It panics if the embedded file
// cannot be parsed.
func Sample() *Catalog {
	sampleOnce.Do(func() {
		c, err := LoadCSV(strings.NewReader(sampleCSV))
		if err != nil {
			panic("catalog: embedded sample is invalid: " + err.Error())
		}
		sampleCatalog = c
	})
	return sampleCatalog
}
