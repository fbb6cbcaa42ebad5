package setting

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("setting not found")

// Kind is the type tag stored next to each value. It decides how the
// text column is deserialized on the way out.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindJSON    Kind = "json"
)

type Setting struct {
	Key       string
	Value     Value
	UpdatedAt time.Time
}

// Value is a tagged union over the four storable kinds. Exactly one of
// the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Raw  json.RawMessage
}

// FromJSON infers the kind from the raw JSON value, the same way the
// store infers it from a request body on write.
func FromJSON(raw json.RawMessage) (Value, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Value{}, errors.New("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case '{', '[':
		if !json.Valid(raw) {
			return Value{}, errors.New("invalid json value")
		}
		return Value{Kind: KindJSON, Raw: append(json.RawMessage(nil), raw...)}, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBoolean, Bool: b}, nil
	case 'n':
		// null is stored as an empty string
		return Value{Kind: KindString}, nil
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindNumber, Num: n}, nil
	}
}

// Decode turns the stored text column back into a typed value.
func Decode(text string, kind Kind) Value {
	switch kind {
	case KindNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{Kind: KindString, Str: text}
		}
		return Value{Kind: KindNumber, Num: n}
	case KindBoolean:
		return Value{Kind: KindBoolean, Bool: text == "true"}
	case KindJSON:
		if json.Valid([]byte(text)) {
			return Value{Kind: KindJSON, Raw: json.RawMessage(text)}
		}
		return Value{Kind: KindString, Str: text}
	default:
		return Value{Kind: KindString, Str: text}
	}
}

// EncodeText renders the value for the text column.
func (v Value) EncodeText() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindJSON:
		return string(v.Raw)
	default:
		return v.Str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBoolean:
		return json.Marshal(v.Bool)
	case KindJSON:
		return v.Raw, nil
	default:
		return json.Marshal(v.Str)
	}
}
