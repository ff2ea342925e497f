package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"borderhopper/internal/db"
	"borderhopper/internal/graph"
)

// ErrDuplicateMember is returned when a base unit is listed by two composites.
var ErrDuplicateMember = errors.New("member belongs to more than one composite")

// MissingMemberError reports a composite member that is not a base unit.
type MissingMemberError struct {
	Composite string
	Member    string
}

func (e *MissingMemberError) Error() string {
	return fmt.Sprintf("composite %s: member %q is not a known unit", e.Composite, e.Member)
}

// Composite is a region made of whole base units, e.g. a licence plate area
// covering several municipalities.
type Composite struct {
	Code    string
	City    string
	Members []string
}

// Name is the unit name of the composite: "code (city)".
func (c Composite) Name() string {
	return c.Code + " (" + c.City + ")"
}

// ParseComposites reads the tab-separated cross-reference
// "code<TAB>city<TAB>member, member, ...". Blank lines and lines starting
// with '#' are skipped.
func ParseComposites(r io.Reader, rename func(string) string) ([]Composite, error) {
	if rename == nil {
		rename = strings.TrimSpace
	}
	var out []Composite
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			return nil, fmt.Errorf("line %d: want 3 tab-separated fields, got %d", lineNo, len(parts))
		}
		c := Composite{Code: strings.TrimSpace(parts[0]), City: strings.TrimSpace(parts[1])}
		for _, m := range strings.Split(parts[2], ",") {
			if m = rename(m); m != "" {
				c.Members = append(c.Members, m)
			}
		}
		if c.Code == "" || len(c.Members) == 0 {
			return nil, fmt.Errorf("line %d: composite needs a code and at least one member", lineNo)
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read composites: %w", err)
	}
	return out, nil
}

type geometryCollection struct {
	Type       string            `json:"type"`
	Geometries []json.RawMessage `json:"geometries"`
}

// BuildComposites derives composite units from base features. Two composites
// border each other when any of their members do. The boundary of a
// composite is the GeometryCollection of its member boundaries. Base units
// that belong to no composite are returned in uncovered.
func BuildComposites(t graph.UnitType, composites []Composite, base []Feature) (records []db.UnitRecord, uncovered []string, err error) {
	baseIndex := make(map[string]int, len(base))
	for i, f := range base {
		baseIndex[f.Name] = i
	}

	owner := make(map[string]int, len(base))
	records = make([]db.UnitRecord, 0, len(composites))
	for ci, c := range composites {
		gc := geometryCollection{Type: "GeometryCollection", Geometries: []json.RawMessage{}}
		for _, m := range c.Members {
			bi, ok := baseIndex[m]
			if !ok {
				return nil, nil, &MissingMemberError{Composite: c.Name(), Member: m}
			}
			if prev, taken := owner[m]; taken {
				return nil, nil, fmt.Errorf("%s in %s and %s: %w", m, composites[prev].Name(), c.Name(), ErrDuplicateMember)
			}
			owner[m] = ci
			if g := base[bi].Geometry; len(g) > 0 && string(g) != "null" {
				gc.Geometries = append(gc.Geometries, g)
			}
		}
		geojson, err := json.Marshal(gc)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s geometry: %w", c.Name(), err)
		}
		records = append(records, db.UnitRecord{Name: c.Name(), Type: t, GeoJSON: string(geojson)})
	}

	linked := make([][]bool, len(composites))
	for i := range linked {
		linked[i] = make([]bool, len(composites))
	}
	for _, f := range base {
		from, ok := owner[f.Name]
		if !ok {
			uncovered = append(uncovered, f.Name)
			continue
		}
		for _, n := range f.Neighbors {
			to, ok := owner[n]
			if !ok || to == from {
				continue
			}
			linked[from][to] = true
			linked[to][from] = true
		}
	}
	for i := range records {
		for j := range records {
			if linked[i][j] {
				records[i].Neighbors = append(records[i].Neighbors, records[j].Name)
			}
		}
	}
	return records, uncovered, nil
}
