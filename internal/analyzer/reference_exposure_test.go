package analyzer

import (
	"strings"
	"testing"
)

func TestReferenceExposureDirectReturn(t *testing.T) {
	source := `class Cart:
    def get_items(self):
        return self._items
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["exposure_type"] != "direct_return" {
		t.Errorf("exposure_type = %v", v.Metadata["exposure_type"])
	}
	if v.Metadata["attribute"] != "_items" {
		t.Errorf("attribute = %v", v.Metadata["attribute"])
	}
	if v.Metadata["method"] != "get_items" {
		t.Errorf("method = %v", v.Metadata["method"])
	}
	if v.Metadata["is_property"] != false {
		t.Errorf("is_property = %v", v.Metadata["is_property"])
	}
	if !strings.Contains(v.Suggestion, "copy") {
		t.Errorf("suggestion should mention copying: %s", v.Suggestion)
	}
}

func TestReferenceExposureSubscriptReturn(t *testing.T) {
	source := `class Store:
    def lookup(self, key):
        return self._cache[key]
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["exposure_type"] != "subscript_return" {
		t.Errorf("exposure_type = %v", result.Violations[0].Metadata["exposure_type"])
	}
}

func TestReferenceExposurePluralPublicAttribute(t *testing.T) {
	source := `class Roster:
    def members(self):
        return self.players
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["exposure_type"] != "collection_return" {
		t.Errorf("exposure_type = %v", result.Violations[0].Metadata["exposure_type"])
	}
}

func TestReferenceExposureProperty(t *testing.T) {
	source := `class Config:
    @property
    def entries(self):
        return self._entries
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	v := result.Violations[0]
	if v.Metadata["is_property"] != true {
		t.Errorf("is_property = %v", v.Metadata["is_property"])
	}
	if !strings.HasPrefix(v.Message, "Property") {
		t.Errorf("message should name the property kind: %s", v.Message)
	}
	if result.Summary["property_exposures"] != 1 {
		t.Errorf("property_exposures = %v", result.Summary["property_exposures"])
	}
}

func TestReferenceExposureGetterDecorator(t *testing.T) {
	source := `class Config:
    @entries.getter
    def entries(self):
        return self._entries
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}

	if result.ViolationCount != 1 {
		t.Fatalf("expected 1 violation, got %d", result.ViolationCount)
	}
	if result.Violations[0].Metadata["is_property"] != true {
		t.Errorf("is_property = %v", result.Violations[0].Metadata["is_property"])
	}
	if result.Summary["property_exposures"] != 1 {
		t.Errorf("property_exposures = %v", result.Summary["property_exposures"])
	}
}

func TestReferenceExposureScalarNotFlagged(t *testing.T) {
	source := `class Point:
    def norm(self):
        return self.x + self.y
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("computed return values must not be flagged, got %d", result.ViolationCount)
	}
}

func TestReferenceExposureCopyNotFlagged(t *testing.T) {
	source := `class Cart:
    def get_items(self):
        return list(self._items)
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("defensive copies must not be flagged, got %d", result.ViolationCount)
	}
}

func TestReferenceExposureFreeFunctionIgnored(t *testing.T) {
	source := `def get_items(self):
    return self._items
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.ViolationCount != 0 {
		t.Errorf("functions outside classes must not be flagged, got %d", result.ViolationCount)
	}
}

func TestReferenceExposureTogglesDisableChecks(t *testing.T) {
	source := `class Config:
    @property
    def entries(self):
        return self._entries

    def get_rows(self):
        return self._rows
`
	file := parsedFile(t, source)

	result, err := NewReferenceExposureRule(Options{"check_properties": false}).Analyze(file)
	if err != nil {
		t.Fatal(err)
	}
	if result.Summary["property_exposures"] != 0 {
		t.Errorf("property checks disabled, got %v", result.Summary["property_exposures"])
	}
	if result.Summary["getter_exposures"] != 1 {
		t.Errorf("getter_exposures = %v", result.Summary["getter_exposures"])
	}
}
