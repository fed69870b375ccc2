package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiquira/assetrisk/internal/model"
)

func snapshotRows() [][]string {
	return [][]string{
		{"prop-001", "2026-01", "450000", "1.1", "2.5", "4.5", "2.8", "4.0"},
		{"prop-001", "2026-03", "470000", "1.3", "2.6", "4.4", "2.7", "4.0"},
		{"prop-001", "2026-02", "460000", "1.2", "2.5", "4.5", "2.8", "4.0"},
		{"prop-002", "2026-03", "320000", "0.4", "2.6", "4.4", "2.7", "4.0"},
	}
}

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseSnapshot(snapshotRows())
	require.NoError(t, err)
	require.Len(t, snap, 2)

	m := snap["prop-001"]
	require.NotNil(t, m)
	// Ordered by period, not input order.
	assert.Equal(t, []float64{450_000, 460_000, 470_000}, m.PriceHistory)
	// Ratio and economics come from the latest period.
	assert.InDelta(t, 1.3, m.DemandSupplyRatio, 0.001)
	assert.InDelta(t, 2.6, m.Economic.GDPGrowth, 0.001)

	require.NotNil(t, snap["prop-002"])
	assert.Equal(t, []float64{320_000}, snap["prop-002"].PriceHistory)
}

func TestParseSnapshotSkipsBlankRows(t *testing.T) {
	rows := append([][]string{{}, {" ", "", "", "", "", "", "", ""}}, snapshotRows()...)
	snap, err := ParseSnapshot(rows)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestParseSnapshotShortRow(t *testing.T) {
	_, err := ParseSnapshot([][]string{{"prop-001", "2026-01", "450000"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestParseSnapshotBadNumber(t *testing.T) {
	rows := snapshotRows()
	rows[0][colPrice] = "not-a-price"
	_, err := ParseSnapshot(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestParseCellHandlesSeparatorsAndBlanks(t *testing.T) {
	v, err := parseCell("450,000.5")
	require.NoError(t, err)
	assert.InDelta(t, 450_000.5, v, 0.001)

	v, err = parseCell("  ")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestApplySnapshot(t *testing.T) {
	records := []*model.PropertyRecord{
		{ID: "prop-001"},
		{ID: "prop-003", Market: &model.MarketRecord{DemandSupplyRatio: 9}},
	}
	snap, err := ParseSnapshot(snapshotRows())
	require.NoError(t, err)

	updated := ApplySnapshot(records, snap)

	assert.Equal(t, 1, updated)
	require.NotNil(t, records[0].Market)
	assert.Equal(t, []float64{450_000, 460_000, 470_000}, records[0].Market.PriceHistory)
	// No snapshot entry leaves the existing market section alone.
	assert.InDelta(t, 9, records[1].Market.DemandSupplyRatio, 0.001)
}
