package common

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, false},
		{"prose around", `Here you go: {"x":true} enjoy`, `{"x":true}`, false},
		{"none", "no json here", "", true},
		{"reversed braces", "} {", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]any
	if err := ParseJSON(`{"a":1} {"b":2}`, &v); err == nil {
		t.Fatal("expected error for trailing JSON value")
	}
}

func TestParseJSONUsesNumber(t *testing.T) {
	var v map[string]any
	if err := ParseJSON(`{"n":12.5}`, &v); err != nil {
		t.Fatal(err)
	}
	if _, ok := v["n"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", v["n"])
	}
}

func TestParseJSONLenientQuotesKeys(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := ParseJSONLenient(`{name: "salmon"}`, &v); err != nil {
		t.Fatal(err)
	}
	if v.Name != "salmon" {
		t.Errorf("Name = %q", v.Name)
	}
}
