// Package geo resolves flood-zone risk for property coordinates from a
// FEMA flood hazard shapefile.
package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/aiquira/assetrisk/internal/model"
)

// Zone is one flood-zone polygon with its hazard code.
type Zone struct {
	Code string
	Risk float64

	// rings holds flat XY coordinates, one slice per polygon part.
	rings [][]float64
}

// zoneFieldNames are the attribute names that carry the hazard code,
// checked case-insensitively. FEMA NFHL ships FLD_ZONE; some county
// extracts rename it to ZONE.
var zoneFieldNames = []string{"fld_zone", "zone"}

// riskForZone maps a FEMA zone code to a flood risk ratio in [0,1].
func riskForZone(code string) float64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "V"):
		return 1.0
	case strings.HasPrefix(code, "A"):
		return 0.9
	case code == "X500" || strings.Contains(code, "0.2"):
		return 0.2
	case code == "X" || code == "B" || code == "C":
		return 0.05
	default:
		// Zone D and anything unrecognized: hazard undetermined.
		return 0.3
	}
}

// LoadZones reads flood-zone polygons and their hazard codes from a
// shapefile. Non-polygon shapes are skipped.
func LoadZones(path string) ([]Zone, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	zoneIdx := -1
	for i, f := range reader.Fields() {
		name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		for _, want := range zoneFieldNames {
			if name == want {
				zoneIdx = i
			}
		}
	}
	if zoneIdx < 0 {
		return nil, eris.Errorf("geo: no zone attribute in %s", path)
	}

	var zones []Zone
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			skipped++
			continue
		}

		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(zoneIdx), "\x00"))
		zone := Zone{
			Code:  code,
			Risk:  riskForZone(code),
			rings: polygonRings(poly),
		}
		zones = append(zones, zone)
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped non-polygon shapes", zap.Int("skipped", skipped))
	}
	zap.L().Info("geo: loaded flood zones", zap.String("path", path), zap.Int("zones", len(zones)))
	return zones, nil
}

// polygonRings splits a shapefile polygon into flat XY rings, one per part.
func polygonRings(poly *shp.Polygon) [][]float64 {
	parts := poly.Parts
	rings := make([][]float64, 0, len(parts))

	for i := range parts {
		start := parts[i]
		end := int32(len(poly.Points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}

		ring := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			ring = append(ring, poly.Points[j].X, poly.Points[j].Y)
		}
		rings = append(rings, ring)
	}
	return rings
}

// Locator answers point-in-zone queries over a loaded zone set.
type Locator struct {
	zones []Zone
}

// NewLocator creates a Locator over the given zones.
func NewLocator(zones []Zone) *Locator {
	return &Locator{zones: zones}
}

// RiskAt returns the highest flood risk of any zone containing the
// coordinate, with the matching zone code. ok is false when no zone
// contains the point.
func (l *Locator) RiskAt(lat, lon float64) (risk float64, code string, ok bool) {
	// Shapefile coordinates are (X=lon, Y=lat).
	p := geom.Coord{lon, lat}

	for _, zone := range l.zones {
		for _, ring := range zone.rings {
			if !xy.IsPointInRing(geom.XY, p, ring) {
				continue
			}
			if !ok || zone.Risk > risk {
				risk, code, ok = zone.Risk, zone.Code, true
			}
			break
		}
	}
	return risk, code, ok
}

// EnrichRecord fills in FloodRisk from the zone map when the record has
// coordinates and no flood risk of its own. Returns true if it changed
// the record.
func (l *Locator) EnrichRecord(rec *model.PropertyRecord) bool {
	if rec == nil || rec.Location == nil {
		return false
	}
	loc := rec.Location
	if loc.Latitude == nil || loc.Longitude == nil || loc.FloodRisk != 0 {
		return false
	}

	risk, code, ok := l.RiskAt(*loc.Latitude, *loc.Longitude)
	if !ok {
		return false
	}

	loc.FloodRisk = risk
	zap.L().Debug("geo: flood risk resolved",
		zap.String("property", rec.ID),
		zap.String("zone", code),
		zap.Float64("risk", risk),
	)
	return true
}
