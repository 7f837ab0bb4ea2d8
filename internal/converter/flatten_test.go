package converter

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	v, err := ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON(%s) failed: %v", s, err)
	}
	return v
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		columns []string
		rows    [][]any
	}{
		{
			name:    "Uniform array",
			input:   `[{"id":1,"name":"Rex"},{"id":2,"name":"Tom"}]`,
			columns: []string{"id", "name"},
			rows: [][]any{
				{json.Number("1"), "Rex"},
				{json.Number("2"), "Tom"},
			},
		},
		{
			name:    "Heterogeneous keys",
			input:   `[{"a":1},{"b":2}]`,
			columns: []string{"a", "b"},
			rows: [][]any{
				{json.Number("1"), nil},
				{nil, json.Number("2")},
			},
		},
		{
			name:    "Single object root",
			input:   `{"a":true,"b":"x"}`,
			columns: []string{"a", "b"},
			rows:    [][]any{{true, "x"}},
		},
		{
			name:    "Nested objects use dotted paths",
			input:   `[{"pet":{"name":"Rex","owner":{"city":"SP"}},"id":7}]`,
			columns: []string{"pet.name", "pet.owner.city", "id"},
			rows:    [][]any{{"Rex", "SP", json.Number("7")}},
		},
		{
			name:    "Nested arrays stay in one cell as JSON",
			input:   `[{"id":1,"tags":["a","b"],"items":[{"z":1,"a":"<b>"}]}]`,
			columns: []string{"id", "tags", "items"},
			rows:    [][]any{{json.Number("1"), `["a","b"]`, `[{"z":1,"a":"<b>"}]`}},
		},
		{
			name:    "Null and empty object are empty cells",
			input:   `{"a":null,"b":{}}`,
			columns: []string{"a", "b"},
			rows:    [][]any{{nil, nil}},
		},
		{
			name:    "Columns follow first-seen order across records",
			input:   `[{"c":1,"a":2},{"b":3,"a":4,"d":5}]`,
			columns: []string{"c", "a", "b", "d"},
			rows: [][]any{
				{json.Number("1"), json.Number("2"), nil, nil},
				{nil, json.Number("4"), json.Number("3"), json.Number("5")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Flatten(mustParse(t, tt.input))
			if err != nil {
				t.Fatalf("Flatten failed: %v", err)
			}
			if !reflect.DeepEqual(ds.Columns, tt.columns) {
				t.Errorf("Columns = %v; want %v", ds.Columns, tt.columns)
			}
			if len(ds.Records) != len(tt.rows) {
				t.Fatalf("got %d records; want %d", len(ds.Records), len(tt.rows))
			}
			for i, want := range tt.rows {
				if got := ds.Row(i); !reflect.DeepEqual(got, want) {
					t.Errorf("Row(%d) = %#v; want %#v", i, got, want)
				}
			}
		})
	}
}

func TestFlatten_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		empty bool
	}{
		{"Empty array", `[]`, true},
		{"Empty object", `{}`, true},
		{"Array of empty objects", `[{},{}]`, true},
		{"Scalar root", `42`, false},
		{"String root", `"hello"`, false},
		{"Null root", `null`, false},
		{"Array of scalars", `[1,2,3]`, false},
		{"Mixed array", `[{"a":1},"b"]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten(mustParse(t, tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if KindOf(err) != KindTransform {
				t.Errorf("KindOf(err) = %s; want transform", KindOf(err))
			}
			if got := errors.Is(err, ErrEmptyDataset); got != tt.empty {
				t.Errorf("errors.Is(err, ErrEmptyDataset) = %v; want %v", got, tt.empty)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Object", `{"a":1}`, false},
		{"Array with whitespace", " [1, 2] \n", false},
		{"Empty body", ``, true},
		{"Truncated", `{"a":`, true},
		{"Trailing data", `{"a":1} {"b":2}`, true},
		{"HTML", `<html></html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseJSON(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestObject_MarshalJSON_KeepsOrder(t *testing.T) {
	v := mustParse(t, `{"z":1,"a":{"y":[true,null],"b":"x"}}`)
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":1,"a":{"y":[true,null],"b":"x"}}`
	if string(out) != want {
		t.Errorf("Marshal = %s; want %s", out, want)
	}
}
