package ingredient

import (
	"reflect"
	"testing"

	"meal-planner/internal/core/diabetes"
)

func TestFilterAvailability(t *testing.T) {
	out := Filter(sampleCatalog(), Constraints{})
	if _, ok := byName(out, "Dragonfruit"); ok {
		t.Fatal("unavailable ingredient should be excluded")
	}
	if _, ok := byName(out, "Spinach"); !ok {
		t.Fatal("seasonal ingredient should be kept")
	}
}

func TestFilterAllergyBidirectionalSubstring(t *testing.T) {
	tests := []struct {
		allergy string
		removed string
	}{
		{"peanut", "Peanut Butter"},  // allergy inside allergen
		{"shellfish", "Salmon"},      // allergen "fish" inside allergy
		{"PEANUTS", "Peanut Butter"}, // case-insensitive
	}
	for _, tt := range tests {
		out := Filter(sampleCatalog(), Constraints{Allergies: []string{tt.allergy}})
		if _, ok := byName(out, tt.removed); ok {
			t.Errorf("allergy %q should remove %s", tt.allergy, tt.removed)
		}
	}
}

func TestFilterReligiousDiet(t *testing.T) {
	out := Filter(sampleCatalog(), Constraints{ReligiousDiets: []string{"Halal"}})
	if _, ok := byName(out, "Pork Chop"); ok {
		t.Error("halal diet should exclude pork")
	}

	vegan := Filter(sampleCatalog(), Constraints{ReligiousDiets: []string{"vegan"}})
	if _, ok := byName(vegan, "Salmon"); ok {
		t.Error("vegan diet should exclude salmon")
	}

	unknown := Filter(sampleCatalog(), Constraints{ReligiousDiets: []string{"pescatarian"}})
	if len(unknown) != len(Filter(sampleCatalog(), Constraints{})) {
		t.Error("unknown diet strings should be ignored")
	}
}

func TestFilterSeverity(t *testing.T) {
	severe := Filter(sampleCatalog(), Constraints{Severity: diabetes.SeveritySevere})
	if _, ok := byName(severe, "Brown Rice"); ok {
		t.Error("severe should exclude carbs > 30g")
	}
	if _, ok := byName(severe, "White Bread"); ok {
		t.Error("high GI with carbs > 10 should be excluded")
	}

	mild := Filter(sampleCatalog(), Constraints{Severity: diabetes.SeverityMild})
	if _, ok := byName(mild, "Brown Rice"); !ok {
		t.Error("mild should keep brown rice")
	}
	if _, ok := byName(mild, "White Bread"); ok {
		t.Error("high GI rule applies whenever a severity marker is present")
	}

	none := Filter(sampleCatalog(), Constraints{})
	if _, ok := byName(none, "White Bread"); !ok {
		t.Error("no severity marker should skip the glycemic rule")
	}
}

func TestFilterIdempotentAndOrderPreserving(t *testing.T) {
	c := Constraints{
		Allergies:      []string{"fish"},
		ReligiousDiets: []string{"kosher"},
		Severity:       diabetes.SeverityModerate,
	}
	once := Filter(sampleCatalog(), c)
	twice := Filter(once, c)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter not idempotent:\n%v\n%v", Names(once), Names(twice))
	}
	want := []string{"Peanut Butter", "Brown Rice", "Spinach"}
	if got := Names(once); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCheckCompatibility(t *testing.T) {
	salmon, _ := byName(sampleCatalog(), "Salmon")
	got := CheckCompatibility(salmon, Constraints{Allergies: []string{"fish"}, ReligiousDiets: []string{"vegan", "halal"}})
	if got.Compatible {
		t.Fatal("expected incompatible")
	}
	want := []string{"allergen: fish", "diet: vegan"}
	if !reflect.DeepEqual(got.Violations, want) {
		t.Errorf("violations = %v, want %v", got.Violations, want)
	}
}
