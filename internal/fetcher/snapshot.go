package fetcher

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/model"
)

// Snapshot column layout. One row per property and period; the economic
// columns repeat the macro indicators for the row's period.
const (
	colPropertyID = iota
	colPeriod
	colPrice
	colDemandSupply
	colGDPGrowth
	colUnemployment
	colInflation
	colInterestRate
	snapshotColumns
)

// snapshotRow is one parsed spreadsheet row.
type snapshotRow struct {
	propertyID string
	period     string
	price      float64
	ratio      float64
	economic   model.EconomicIndicators
}

// ParseSnapshot converts spreadsheet rows into per-property market
// records. Price history is ordered by period ascending; the demand/supply
// ratio and economic indicators come from the latest period.
func ParseSnapshot(rows [][]string) (map[string]*model.MarketRecord, error) {
	parsed := make(map[string][]snapshotRow)

	for i, cells := range rows {
		if len(cells) == 0 || strings.TrimSpace(cells[colPropertyID]) == "" {
			continue
		}
		if len(cells) < snapshotColumns {
			return nil, eris.Errorf("fetcher: snapshot row %d has %d columns, want %d", i+1, len(cells), snapshotColumns)
		}

		row := snapshotRow{
			propertyID: strings.TrimSpace(cells[colPropertyID]),
			period:     strings.TrimSpace(cells[colPeriod]),
		}

		var err error
		if row.price, err = parseCell(cells[colPrice]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d price", i+1)
		}
		if row.ratio, err = parseCell(cells[colDemandSupply]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d demand/supply", i+1)
		}
		if row.economic.GDPGrowth, err = parseCell(cells[colGDPGrowth]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d gdp growth", i+1)
		}
		if row.economic.Unemployment, err = parseCell(cells[colUnemployment]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d unemployment", i+1)
		}
		if row.economic.Inflation, err = parseCell(cells[colInflation]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d inflation", i+1)
		}
		if row.economic.InterestRate, err = parseCell(cells[colInterestRate]); err != nil {
			return nil, eris.Wrapf(err, "fetcher: snapshot row %d interest rate", i+1)
		}

		parsed[row.propertyID] = append(parsed[row.propertyID], row)
	}

	out := make(map[string]*model.MarketRecord, len(parsed))
	for id, propRows := range parsed {
		sort.SliceStable(propRows, func(i, j int) bool {
			return propRows[i].period < propRows[j].period
		})

		market := &model.MarketRecord{
			PriceHistory: make([]float64, len(propRows)),
		}
		for i, r := range propRows {
			market.PriceHistory[i] = r.price
		}
		latest := propRows[len(propRows)-1]
		market.DemandSupplyRatio = latest.ratio
		market.Economic = latest.economic

		out[id] = market
	}
	return out, nil
}

// ApplySnapshot replaces the market section of each record that has an
// entry in the snapshot. Records without a matching entry are untouched.
// Returns the number of records updated.
func ApplySnapshot(records []*model.PropertyRecord, snapshot map[string]*model.MarketRecord) int {
	updated := 0
	for _, rec := range records {
		market, ok := snapshot[rec.ID]
		if !ok {
			continue
		}
		rec.Market = market
		updated++
	}
	if updated < len(records) {
		zap.L().Warn("snapshot missing some properties",
			zap.Int("records", len(records)),
			zap.Int("updated", updated),
		)
	}
	return updated
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
