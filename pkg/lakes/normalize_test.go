package lakes

import (
	"testing"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

func testLake() *Lake {
	return &Lake{
		ID:   "zurichsee",
		Name: "Zürichsee",
		Stations: []StationConfig{
			{Name: "Zürich Bürkliplatz (See)", Latitude: 47.3655, Longitude: 8.5411},
			{Name: "Thalwil (See)", Latitude: 47.2925, Longitude: 8.5654},
		},
		NameMapping: map[string]string{
			"Zürich Bürkliplatz": "Zürich Bürkliplatz (See)",
			"Bürkliplatz":        "Zürich Bürkliplatz (See)",
		},
	}
}

func TestNormalizeStationName(t *testing.T) {
	lake := testLake()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"direct mapping", "Zürich Bürkliplatz", "Zürich Bürkliplatz (See)"},
		{"case insensitive mapping", "BÜRKLIPLATZ", "Zürich Bürkliplatz (See)"},
		{"suffix stripped before mapping", "Zürich Bürkliplatz ZH", "Zürich Bürkliplatz (See)"},
		{"unknown name passes through", "Rapperswil", "Rapperswil"},
		{"empty", "", ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := lake.NormalizeStationName(testCase.input); got != testCase.expected {
				t.Errorf("got %q, expected %q", got, testCase.expected)
			}
		})
	}
}

func TestCleanStationName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Thalwil (See)", "Thalwil"},
		{"Uster ZH", "Uster"},
		{"Rapperswil SG", "Rapperswil"},
		{"Männedorf", "Männedorf"},
	}

	for _, testCase := range testCases {
		if got := CleanStationName(testCase.input); got != testCase.expected {
			t.Errorf("CleanStationName(%q) = %q, expected %q", testCase.input, got, testCase.expected)
		}
	}
}

func TestMergeStationsCuratedWins(t *testing.T) {
	lake := testLake()

	curated := lake.CuratedStations()
	derived := []vdm.Station{
		{Name: "Thalwil (See)", Latitude: 1, Longitude: 1},
		{Name: "Erlenbach (See)", Latitude: 47.3040, Longitude: 8.5975},
	}

	merged := MergeStations(curated, derived)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged stations, got %d", len(merged))
	}

	for _, station := range merged {
		if station.Name == "Thalwil (See)" && station.Latitude == 1 {
			t.Error("derived station overwrote curated coordinates")
		}
	}
}

func TestStationPairMatches(t *testing.T) {
	pair := StationPair{A: "Uster", B: "Maur"}

	if !pair.Matches("Niederuster", "Maur") {
		t.Error("substring match should hit in order")
	}
	if !pair.Matches("Maur", "Uster") {
		t.Error("reversed order should hit")
	}
	if pair.Matches("Fällanden", "Maur") {
		t.Error("unrelated station should not hit")
	}
}
