package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Lookup answers the catalog questions the conversation asks, in the
// order the conversation asks them.
type Lookup interface {
	ActiveFamilies() []string
	SKUsForFamily(family string) []string
	NeighborhoodsForSKU(sku string) []string
	PointsOfSale(sku, neighborhood string) []string
}

// SalesRecord is one row of the last-30-days sales extract.
type SalesRecord struct {
	Family       string `yaml:"familia_produto"`
	SKU          string `yaml:"sku"`
	Neighborhood string `yaml:"bairro"`
	ClientName   string `yaml:"nomecliente"`
	Address      string `yaml:"endereco"`
}

const (
	placeholderName    = "Sem nome"
	placeholderAddress = "Sem endereço"
)

// Table is an in-memory Lookup over a loaded sales extract.
type Table struct {
	records []SalesRecord
}

// NewTable builds a lookup table from sales records.
func NewTable(records []SalesRecord) *Table {
	return &Table{records: records}
}

// LoadTable reads the sales extract from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %v", err)
	}

	var records []SalesRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing catalog YAML: %v", err)
	}

	return NewTable(records), nil
}

// ActiveFamilies returns the sorted, deduplicated product families.
func (t *Table) ActiveFamilies() []string {
	return t.distinct(func(r SalesRecord) string { return r.Family }, nil)
}

// SKUsForFamily returns the sorted, deduplicated SKUs sold under a
// family; empty for an unknown family.
func (t *Table) SKUsForFamily(family string) []string {
	return t.distinct(
		func(r SalesRecord) string { return r.SKU },
		func(r SalesRecord) bool { return r.Family == family },
	)
}

// NeighborhoodsForSKU returns the sorted, deduplicated neighborhoods a
// SKU was sold in.
func (t *Table) NeighborhoodsForSKU(sku string) []string {
	return t.distinct(
		func(r SalesRecord) string { return r.Neighborhood },
		func(r SalesRecord) bool { return r.SKU == sku },
	)
}

// PointsOfSale returns every "{name} — {address}" descriptor matching
// the SKU and neighborhood, with placeholders for blank fields.
func (t *Table) PointsOfSale(sku, neighborhood string) []string {
	var points []string
	for _, r := range t.records {
		if r.SKU != sku || r.Neighborhood != neighborhood {
			continue
		}
		name := r.ClientName
		if name == "" {
			name = placeholderName
		}
		address := r.Address
		if address == "" {
			address = placeholderAddress
		}
		points = append(points, fmt.Sprintf("%s — %s", name, address))
	}
	return points
}

func (t *Table) distinct(value func(SalesRecord) string, match func(SalesRecord) bool) []string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range t.records {
		if match != nil && !match(r) {
			continue
		}
		v := value(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
