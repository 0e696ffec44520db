package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `
components:
  - {name: Sapphire Pulse RX 6700 XT, category: GPU, price: 15000, performance_score: 80}
  - {name: AMD Ryzen 5 5600X, category: CPU, price: 10000, performance_score: 70, specs: {socket: AM4}}
  - {name: MSI B450 Tomahawk, category: motherboard, price: 4000, performance_score: 60, specs: {chipset: B450}}
  - {name: Kingston Fury 16GB, category: RAM, price: 3000, performance_score: 60, specs: {type: DDR4}}
  - {name: WD Blue SN570 500GB, category: Storage, price: 3000, performance_score: 55}
  - {name: Corsair CX750, category: PSU, price: 3000, performance_score: 60, specs: {wattage: 750W}}
  - {name: Antec NX200, category: Case, price: 2000, performance_score: 50}
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecommendTable(t *testing.T) {
	out, err := run(t, "recommend", "--catalog", writeSnapshot(t), "--purpose", "gaming_budget", "--budget", "50000")
	require.NoError(t, err)
	assert.Contains(t, out, "Sapphire Pulse RX 6700 XT")
	assert.Contains(t, out, "৳40,000")
	assert.Contains(t, out, "remaining: ৳10,000 of ৳50,000")
}

func TestRecommendJSON(t *testing.T) {
	out, err := run(t, "recommend", "-c", writeSnapshot(t), "-p", "gaming_budget", "-b", "50000", "-f", "json")
	require.NoError(t, err)

	var resp struct {
		TotalPrice  int               `json:"total_price"`
		Explanation map[string]string `json:"build_explanation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 40000, resp.TotalPrice)
	assert.Len(t, resp.Explanation, 7)
}

func TestRecommendFailsWithoutBudgetRoom(t *testing.T) {
	_, err := run(t, "recommend", "--catalog", writeSnapshot(t), "--purpose", "gaming_budget", "--budget", "20000")
	assert.ErrorContains(t, err, "no suitable GPU found within budget")

	_, err = run(t, "recommend", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"), "--budget", "20000")
	assert.ErrorContains(t, err, "read catalog")
}

func TestCompare(t *testing.T) {
	out, err := run(t, "compare", "--catalog", writeSnapshot(t), "--purpose", "gaming_budget",
		"--budgets", "50000,20000,60000")
	require.NoError(t, err)
	assert.Contains(t, out, "Best value build: gaming_budget at ৳40,000")
	assert.Contains(t, out, "৳20,000  failed: no suitable GPU")

	_, err = run(t, "compare", "--catalog", writeSnapshot(t), "--purpose", "gaming_budget", "--budgets", "50000")
	assert.ErrorContains(t, err, "need 2 to 5 budgets")
}

func TestPSU(t *testing.T) {
	out, err := run(t, "psu", "--gpu", "RTX 4070", "--cpu", "Ryzen 5 5600X")
	require.NoError(t, err)
	assert.Equal(t, "900 W (cpu tier MID)\n", out)

	out, err = run(t, "psu", "--gpu", "RTX 4070", "--cpu-tier", "high")
	require.NoError(t, err)
	assert.Equal(t, "960 W (cpu tier HIGH)\n", out)

	_, err = run(t, "psu", "--cpu-tier", "extreme")
	assert.ErrorContains(t, err, "unknown cpu tier")
}

func TestTier(t *testing.T) {
	out, err := run(t, "tier", "--category", "gpu", "RTX 4070 Ti", "RTX 4060")
	require.NoError(t, err)
	assert.Equal(t, "HIGH\tRTX 4070 Ti\nLOW\tRTX 4060\n", out)

	_, err = run(t, "tier", "--category", "floppy", "x")
	assert.Error(t, err)
}
