package setting

import (
	"encoding/json"
	"testing"
)

func TestFromJSONInfersKind(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
	}{
		{name: "string", raw: `"My Site"`, wantKind: KindString},
		{name: "integer", raw: `25`, wantKind: KindNumber},
		{name: "float", raw: `2.5`, wantKind: KindNumber},
		{name: "negative", raw: `-3`, wantKind: KindNumber},
		{name: "bool_true", raw: `true`, wantKind: KindBoolean},
		{name: "bool_false", raw: `false`, wantKind: KindBoolean},
		{name: "object", raw: `{"a": 1}`, wantKind: KindJSON},
		{name: "array", raw: `[1, 2]`, wantKind: KindJSON},
		{name: "null_becomes_empty_string", raw: `null`, wantKind: KindString},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			v, err := FromJSON(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("FromJSON(%s): %v", tt.raw, err)
			}
			if v.Kind != tt.wantKind {
				t.Fatalf("got kind %q, want %q", v.Kind, tt.wantKind)
			}
		})
	}

	if _, err := FromJSON(json.RawMessage(``)); err == nil {
		t.Error("empty input should not parse")
	}
	if _, err := FromJSON(json.RawMessage(`{broken`)); err == nil {
		t.Error("malformed json should not parse")
	}
}

func TestTextRoundTrip(t *testing.T) {
	// what is written to the text column must decode back to the same
	// typed value
	values := []Value{
		{Kind: KindString, Str: "hello"},
		{Kind: KindString, Str: ""},
		{Kind: KindNumber, Num: 42},
		{Kind: KindNumber, Num: 0.125},
		{Kind: KindBoolean, Bool: true},
		{Kind: KindBoolean, Bool: false},
		{Kind: KindJSON, Raw: json.RawMessage(`{"nested":{"deep":[1,2,3]}}`)},
	}

	for _, v := range values {
		got := Decode(v.EncodeText(), v.Kind)

		if got.Kind != v.Kind {
			t.Errorf("kind changed across the column: %q -> %q", v.Kind, got.Kind)
			continue
		}

		switch v.Kind {
		case KindNumber:
			if got.Num != v.Num {
				t.Errorf("number changed: %v -> %v", v.Num, got.Num)
			}
		case KindBoolean:
			if got.Bool != v.Bool {
				t.Errorf("bool changed: %v -> %v", v.Bool, got.Bool)
			}
		case KindJSON:
			if string(got.Raw) != string(v.Raw) {
				t.Errorf("json changed: %s -> %s", v.Raw, got.Raw)
			}
		default:
			if got.Str != v.Str {
				t.Errorf("string changed: %q -> %q", v.Str, got.Str)
			}
		}
	}
}

func TestDecodeToleratesCorruptColumns(t *testing.T) {
	// a mangled number or json column degrades to a string instead of
	// failing the whole settings read
	if v := Decode("not-a-number", KindNumber); v.Kind != KindString || v.Str != "not-a-number" {
		t.Errorf("corrupt number column: got %+v", v)
	}
	if v := Decode("{broken", KindJSON); v.Kind != KindString {
		t.Errorf("corrupt json column: got %+v", v)
	}
}

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Value{Kind: KindString, Str: "a"}, `"a"`},
		{Value{Kind: KindNumber, Num: 7}, `7`},
		{Value{Kind: KindBoolean, Bool: true}, `true`},
		{Value{Kind: KindJSON, Raw: json.RawMessage(`[1]`)}, `[1]`},
	}

	for _, tt := range tests {
		got, err := json.Marshal(tt.value)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(got) != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
