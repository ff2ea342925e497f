package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"borderhopper/internal/db"
	"borderhopper/internal/graph"
)

// Dataset describes one precomputed adjacency file and the unit type it
// produces.
type Dataset struct {
	Type graph.UnitType
	// File is the FeatureCollection for base types. For Tablica it is the
	// composite cross-reference and Base names the member collection.
	File string
	Base string
	// NameProperty is read before the generic "name" property.
	NameProperty string
	Rename       func(string) string
	Forbidden    []Pair
}

// Pair is an unordered pair of unit names.
type Pair struct{ A, B string }

// ForbiddenCountryPairs touch geometrically but make no sense as borders in
// the game, mostly through overseas territories.
var ForbiddenCountryPairs = []Pair{
	{"France", "Brazil"},
	{"France", "Suriname"},
	{"Spain", "Morocco"},
	{"Russia", "Poland"},
	{"Russia", "Lithuania"},
	{"Azerbaijan", "Turkey"},
}

// Datasets lists every supported dataset in load order. Tablica must follow
// Opstina's source because it is derived from it.
var Datasets = []Dataset{
	{Type: graph.Country, File: "countries.geojson", NameProperty: "ADMIN", Forbidden: ForbiddenCountryPairs},
	{Type: graph.CountryUnfiltered, File: "countries.geojson", NameProperty: "ADMIN"},
	{Type: graph.Okrug, File: "okruzi.geojson", NameProperty: "okrug_imel", Rename: ProcessOkrugName},
	{Type: graph.Opstina, File: "opstine.geojson", NameProperty: "opstina_imel", Rename: ProcessOpstinaName},
	{Type: graph.Tablica, File: "tablice.tsv", Base: "opstine.geojson", NameProperty: "opstina_imel", Rename: ProcessOpstinaName},
}

// Feature is one parsed unit: its processed name, the processed names it
// borders and its boundary kept verbatim.
type Feature struct {
	Name      string
	Neighbors []string
	Geometry  json.RawMessage
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Properties map[string]json.RawMessage `json:"properties"`
	Geometry   json.RawMessage            `json:"geometry"`
}

// ReadFeatures parses a FeatureCollection file.
func ReadFeatures(path, nameProperty string, rename func(string) string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFeatures(data, nameProperty, rename)
}

// ParseFeatures decodes a FeatureCollection. Each feature needs a string name
// under nameProperty or "name"; "neighbors" is an optional string array.
func ParseFeatures(data []byte, nameProperty string, rename func(string) string) ([]Feature, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	if rename == nil {
		rename = strings.TrimSpace
	}

	out := make([]Feature, 0, len(fc.Features))
	for i, rf := range fc.Features {
		name, err := featureName(rf.Properties, nameProperty)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		var neighbors []string
		if raw, ok := rf.Properties["neighbors"]; ok {
			if err := json.Unmarshal(raw, &neighbors); err != nil {
				return nil, fmt.Errorf("feature %d (%s): neighbors: %w", i, name, err)
			}
		}
		f := Feature{Name: rename(name), Geometry: rf.Geometry}
		for _, n := range neighbors {
			if n = rename(n); n != "" {
				f.Neighbors = append(f.Neighbors, n)
			}
		}
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d: empty name after processing %q", i, name)
		}
		out = append(out, f)
	}
	return out, nil
}

func featureName(props map[string]json.RawMessage, nameProperty string) (string, error) {
	for _, key := range []string{nameProperty, "name"} {
		if key == "" {
			continue
		}
		raw, ok := props[key]
		if !ok {
			continue
		}
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return "", fmt.Errorf("property %s is not a string", key)
		}
		return name, nil
	}
	return "", fmt.Errorf("missing name property %q", nameProperty)
}

// BuildRecords turns features into storable units. Neighbor lists are made
// symmetric, unknown names and self-borders are dropped, and forbidden pairs
// are removed in both directions. dropped counts discarded neighbor entries.
func BuildRecords(t graph.UnitType, features []Feature, forbidden []Pair) (records []db.UnitRecord, dropped int) {
	index := make(map[string]int, len(features))
	records = make([]db.UnitRecord, 0, len(features))
	for _, f := range features {
		if _, dup := index[f.Name]; dup {
			continue
		}
		index[f.Name] = len(records)
		records = append(records, db.UnitRecord{Name: f.Name, Type: t, GeoJSON: string(f.Geometry)})
	}

	banned := make(map[Pair]bool, 2*len(forbidden))
	for _, p := range forbidden {
		banned[p] = true
		banned[Pair{p.B, p.A}] = true
	}

	sets := make([]map[string]bool, len(records))
	for i := range sets {
		sets[i] = make(map[string]bool)
	}
	link := func(a, b string) {
		sets[index[a]][b] = true
	}
	for _, f := range features {
		for _, n := range f.Neighbors {
			_, known := index[n]
			if !known || n == f.Name || banned[Pair{f.Name, n}] {
				dropped++
				continue
			}
			link(f.Name, n)
			link(n, f.Name)
		}
	}

	// neighbor lists follow record order so storage stays deterministic
	for i := range records {
		for _, other := range records {
			if sets[i][other.Name] {
				records[i].Neighbors = append(records[i].Neighbors, other.Name)
			}
		}
	}
	return records, dropped
}

// countConnections returns the number of stored neighbor entries.
func countConnections(records []db.UnitRecord) int {
	n := 0
	for _, r := range records {
		n += len(r.Neighbors)
	}
	return n
}
