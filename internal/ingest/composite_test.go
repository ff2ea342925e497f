package ingest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"borderhopper/internal/graph"
)

const tabliceTSV = "# code\tcity\tmembers\n" +
	"BO\tBor\tBor, Negotin\n" +
	"\n" +
	"ZA\tZaječar\tZaječar, Knjaževac\r\n"

func baseOpstine() []Feature {
	return []Feature{
		{Name: "Bor", Neighbors: []string{"Zaječar", "Negotin"}, Geometry: json.RawMessage(`{"type":"Polygon"}`)},
		{Name: "Zaječar", Neighbors: []string{"Bor", "Knjaževac"}, Geometry: json.RawMessage(`{"type":"Polygon"}`)},
		{Name: "Negotin", Neighbors: []string{"Bor"}, Geometry: json.RawMessage(`null`)},
		{Name: "Knjaževac", Neighbors: []string{"Zaječar"}},
		{Name: "Majdanpek"},
	}
}

func TestParseComposites(t *testing.T) {
	composites, err := ParseComposites(strings.NewReader(tabliceTSV), ProcessOpstinaName)
	require.NoError(t, err)
	require.Len(t, composites, 2)
	assert.Equal(t, "BO (Bor)", composites[0].Name())
	assert.Equal(t, []string{"Bor", "Negotin"}, composites[0].Members)
	assert.Equal(t, "ZA (Zaječar)", composites[1].Name())
	assert.Equal(t, []string{"Zaječar", "Knjaževac"}, composites[1].Members)
}

func TestParseComposites_Malformed(t *testing.T) {
	for _, in := range []string{"BO\tBor\n", "\tBor\tBor\n", "BO\tBor\t , \n"} {
		_, err := ParseComposites(strings.NewReader(in), nil)
		assert.Error(t, err, "input %q", in)
	}
}

func TestBuildComposites(t *testing.T) {
	composites, err := ParseComposites(strings.NewReader(tabliceTSV), ProcessOpstinaName)
	require.NoError(t, err)

	records, uncovered, err := BuildComposites(graph.Tablica, composites, baseOpstine())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"ZA (Zaječar)"}, records[0].Neighbors)
	assert.Equal(t, []string{"BO (Bor)"}, records[1].Neighbors)
	assert.Equal(t, []string{"Majdanpek"}, uncovered)

	// null member geometries are left out of the collection
	assert.JSONEq(t, `{"type":"GeometryCollection","geometries":[{"type":"Polygon"}]}`, records[0].GeoJSON)
	assert.JSONEq(t, `{"type":"GeometryCollection","geometries":[{"type":"Polygon"}]}`, records[1].GeoJSON)
}

func TestBuildComposites_InternalBordersIgnored(t *testing.T) {
	composites := []Composite{{Code: "BO", City: "Bor", Members: []string{"Bor", "Zaječar", "Negotin", "Knjaževac", "Majdanpek"}}}
	records, uncovered, err := BuildComposites(graph.Tablica, composites, baseOpstine())
	require.NoError(t, err)
	assert.Empty(t, records[0].Neighbors)
	assert.Empty(t, uncovered)
}

func TestBuildComposites_MissingMember(t *testing.T) {
	composites := []Composite{{Code: "NI", City: "Niš", Members: []string{"Bor", "Niš"}}}
	_, _, err := BuildComposites(graph.Tablica, composites, baseOpstine())

	var missing *MissingMemberError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "NI (Niš)", missing.Composite)
	assert.Equal(t, "Niš", missing.Member)
}

func TestBuildComposites_DuplicateMember(t *testing.T) {
	composites := []Composite{
		{Code: "BO", City: "Bor", Members: []string{"Bor"}},
		{Code: "NE", City: "Negotin", Members: []string{"Negotin", "Bor"}},
	}
	_, _, err := BuildComposites(graph.Tablica, composites, baseOpstine())
	assert.ErrorIs(t, err, ErrDuplicateMember)
}
