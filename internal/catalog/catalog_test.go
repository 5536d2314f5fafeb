package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []SalesRecord {
	return []SalesRecord{
		{Family: "Limpeza", SKU: "SKU9", Neighborhood: "Sul", ClientName: "Casa Limpa", Address: "Rua C, 9"},
		{Family: "Bebidas", SKU: "SKU1", Neighborhood: "Centro", ClientName: "Mercado Bom Preço", Address: "Rua A, 123"},
		{Family: "Bebidas", SKU: "SKU2", Neighborhood: "Norte", ClientName: "Adega do Zé", Address: "Av. B, 45"},
		{Family: "Bebidas", SKU: "SKU1", Neighborhood: "Centro", ClientName: "Padaria Central", Address: ""},
		{Family: "Bebidas", SKU: "SKU1", Neighborhood: "Centro", ClientName: "", Address: "Praça D, 1"},
	}
}

func TestActiveFamiliesSortedAndDeduplicated(t *testing.T) {
	table := NewTable(testRecords())
	assert.Equal(t, []string{"Bebidas", "Limpeza"}, table.ActiveFamilies())
}

func TestSKUsForFamily(t *testing.T) {
	table := NewTable(testRecords())

	assert.Equal(t, []string{"SKU1", "SKU2"}, table.SKUsForFamily("Bebidas"))
	assert.Empty(t, table.SKUsForFamily("Eletrônicos"))
}

func TestNeighborhoodsForSKU(t *testing.T) {
	table := NewTable(testRecords())

	assert.Equal(t, []string{"Centro"}, table.NeighborhoodsForSKU("SKU1"))
	assert.Empty(t, table.NeighborhoodsForSKU("SKU404"))
}

func TestPointsOfSaleFormatting(t *testing.T) {
	table := NewTable(testRecords())

	points := table.PointsOfSale("SKU1", "Centro")
	assert.Equal(t, []string{
		"Mercado Bom Preço — Rua A, 123",
		"Padaria Central — Sem endereço",
		"Sem nome — Praça D, 1",
	}, points)
}

func TestPointsOfSaleNoMatch(t *testing.T) {
	table := NewTable(testRecords())
	assert.Empty(t, table.PointsOfSale("SKU1", "Norte"))
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendas.yaml")
	content := `
- familia_produto: Bebidas
  sku: SKU1
  bairro: Centro
  nomecliente: Mercado Bom Preço
  endereco: Rua A, 123
- familia_produto: Bebidas
  sku: SKU2
  bairro: Norte
  nomecliente: Adega do Zé
  endereco: Av. B, 45
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bebidas"}, table.ActiveFamilies())
	assert.Equal(t, []string{"SKU1", "SKU2"}, table.SKUsForFamily("Bebidas"))
	assert.Equal(t, []string{"Mercado Bom Preço — Rua A, 123"}, table.PointsOfSale("SKU1", "Centro"))
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
