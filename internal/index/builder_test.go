package index

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestBuild_GroupsByAssetAndTimeframe(t *testing.T) {
	idx := Build([]Partition{
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q2", StartDate: 1, EndDate: 2},
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q1", StartDate: 3, EndDate: 4},
		{Asset: "XXBTZUSD", Timeframe: "1h", Quarter: "2024-Q1", StartDate: 5, EndDate: 6},
		{Asset: "XETHZUSD", Timeframe: "1m", Quarter: "2024-Q2", StartDate: 7, EndDate: 8},
	}, now)

	assert.Equal(t, "1.0", idx.Version)
	assert.Equal(t, "2024-07-01T00:00:00Z", idx.GeneratedAt)
	assert.Equal(t, 2, idx.TotalAssets)
	assert.Equal(t, 4, idx.TotalFiles)

	require.Contains(t, idx.Assets, "XXBTZUSD")
	require.Contains(t, idx.Assets["XXBTZUSD"], "1m")
	entries := idx.Assets["XXBTZUSD"]["1m"]
	require.Len(t, entries, 2)
	// Ordered by quarter regardless of input order.
	assert.Equal(t, "2024-Q1", entries[0].Quarter)
	assert.Equal(t, "2024-Q2", entries[1].Quarter)

	assert.Len(t, idx.Assets["XXBTZUSD"]["1h"], 1)
	assert.Len(t, idx.Assets["XETHZUSD"]["1m"], 1)
}

func TestBuild_EmptyInput(t *testing.T) {
	idx := Build(nil, now)

	assert.Equal(t, 0, idx.TotalAssets)
	assert.Equal(t, 0, idx.TotalFiles)
	assert.Empty(t, idx.Assets)
}

// A run that published only a subset yields an index covering exactly
// that subset; nothing from earlier runs survives.
func TestBuild_ReflectsOnlyGivenPartitions(t *testing.T) {
	full := []Partition{
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q1", StartDate: 1, EndDate: 2},
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q2", StartDate: 3, EndDate: 4},
		{Asset: "SOLUSD", Timeframe: "1d", Quarter: "2024-Q2", StartDate: 5, EndDate: 6},
	}

	idx := Build(full[:2], now)
	assert.Equal(t, 1, idx.TotalAssets)
	assert.Equal(t, 2, idx.TotalFiles)
	assert.NotContains(t, idx.Assets, "SOLUSD")
}

func TestMarshalValidated_WireShape(t *testing.T) {
	idx := Build([]Partition{
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q2", StartDate: 1714521600000, EndDate: 1714694400000},
	}, now)

	data, err := idx.MarshalValidated()
	require.NoError(t, err)

	var decoded struct {
		Version     string                                 `json:"version"`
		GeneratedAt string                                 `json:"generatedAt"`
		Assets      map[string]map[string][]map[string]any `json:"assets"`
		TotalAssets int                                    `json:"totalAssets"`
		TotalFiles  int                                    `json:"totalFiles"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded.Assets, "XXBTZUSD")
	require.Len(t, decoded.Assets["XXBTZUSD"]["1m"], 1)
	assert.Equal(t, "2024-Q2", decoded.Assets["XXBTZUSD"]["1m"][0]["quarter"])
}

func TestMarshalValidated_RejectsBadQuarter(t *testing.T) {
	idx := Build([]Partition{
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-5", StartDate: 1, EndDate: 2},
	}, now)

	_, err := idx.MarshalValidated()
	assert.Error(t, err)
}
