package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-costing/models"
)

const testCatalog = `
menuItems:
  - id: fried-rice
    name: Fried Rice
    variants:
      - id: regular
        name: Regular
        composition:
          - componentType: recipe
            componentId: r1
            quantity: 1
recipes:
  - id: r1
    name: Fried Rice Base
    components:
      - componentType: product
        componentId: rice
        quantity: 150
        unit: g
      - componentType: product
        componentId: egg
        quantity: 1
        unit: pc
products:
  - id: rice
    name: Rice
    unit: g
    baseCostPerUnit: 0.01
  - id: egg
    name: Egg
    unit: pc
    baseCostPerUnit: 0.5
`

const testSale = `
warehouseId: main
reference: bill-7
lines:
  - menuItemId: fried-rice
    variantId: regular
    quantity: 2
`

const testLots = `
lots:
  - id: rice-new
    entityId: rice
    warehouseId: main
    receivedAt: 2026-01-02T08:00:00Z
    quantity: 500
    unitCost: "0.02"
  - id: rice-old
    entityId: rice
    warehouseId: main
    receivedAt: 2026-01-01T08:00:00Z
    quantity: 200
    unitCost: "0.01"
  - id: egg-1
    kind: product
    entityId: egg
    warehouseId: main
    receivedAt: 2026-01-01T08:00:00Z
    quantity: 12
    unitCost: "0.4"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecomposeCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)

	out, err := execute(t, "decompose", "--catalog", catalogPath, "--item", "fried-rice", "--variant", "regular", "--qty", "2", "--paths")
	require.NoError(t, err)
	assert.Contains(t, out, "Fried Rice (Regular) x2")
	assert.Contains(t, out, "300.000")
	assert.Contains(t, out, "gram")
	assert.Contains(t, out, "Fried Rice > Regular")

	_, err = execute(t, "decompose", "--catalog", catalogPath, "--item", "fried-rice", "--variant", "regular", "--strategy", "explode")
	assert.ErrorContains(t, err, "--strategy must be keep or decompose")

	_, err = execute(t, "decompose", "--catalog", catalogPath)
	assert.ErrorContains(t, err, "--sale or both --item and --variant")
}

func TestWriteOffCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)
	salePath := writeFile(t, dir, "sale.yaml", testSale)

	out, err := execute(t, "writeoff", "--catalog", catalogPath, "--sale", salePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total base cost: $4.00")

	out, err = execute(t, "writeoff", "--catalog", catalogPath, "--sale", salePath, "--json")
	require.NoError(t, err)
	var writeOffs []models.WriteOffResult
	require.NoError(t, json.Unmarshal([]byte(out), &writeOffs))
	require.Len(t, writeOffs, 1)
	assert.Equal(t, 2, writeOffs[0].TotalProducts)
	assert.True(t, writeOffs[0].TotalBaseCost.Equal(decimal.NewFromInt(4)))
}

func TestCostCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)
	salePath := writeFile(t, dir, "sale.yaml", testSale)
	lotsPath := writeFile(t, dir, "lots.yaml", testLots)

	out, err := execute(t, "cost", "--catalog", catalogPath, "--sale", salePath, "--lots", lotsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Total cost: $4.80")
	assert.NotContains(t, out, "warning")

	out, err = execute(t, "cost", "--catalog", catalogPath, "--sale", salePath, "--lots", lotsPath, "--json")
	require.NoError(t, err)
	var response models.SaleCostResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "bill-7", response.Reference)
	require.Len(t, response.Costs, 1)
	rice := response.Costs[0].Lines[0]
	require.Len(t, rice.Allocations, 2)
	assert.Equal(t, "rice-old", rice.Allocations[0].BatchID)

	_, err = execute(t, "cost", "--catalog", catalogPath, "--sale", salePath)
	assert.ErrorContains(t, err, "--lots is required")
}

func TestCostCommand_Shortfall(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.yaml", testCatalog)
	lotsPath := writeFile(t, dir, "lots.yaml", "lots: []\n")

	out, err := execute(t, "cost", "--catalog", catalogPath, "--lots", lotsPath,
		"--item", "fried-rice", "--variant", "regular", "--warehouse", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "short 150.000")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "Total cost: $0.00")

	out, err = execute(t, "cost", "--catalog", catalogPath, "--lots", lotsPath,
		"--item", "fried-rice", "--variant", "regular", "--warehouse", "main", "--fallback")
	require.NoError(t, err)
	assert.Contains(t, out, "Total cost: $2.00")
}
