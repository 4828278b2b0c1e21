package fetch

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// BodyKind tags how a response body was interpreted.
type BodyKind int

const (
	BodyNone BodyKind = iota // 204 or failed attempt
	BodyJSON
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	default:
		return "none"
	}
}

// Body is the raw payload of the last settled attempt.
type Body struct {
	Kind        BodyKind
	ContentType string
	Raw         []byte
}

// Text returns the body as a string regardless of kind.
func (b Body) Text() string {
	return string(b.Raw)
}

// Decode unmarshals a JSON body into v.
func (b Body) Decode(v any) error {
	if b.Kind != BodyJSON {
		return fmt.Errorf("body is %s, not json", b.Kind)
	}
	return json.Unmarshal(b.Raw, v)
}

func isJSONContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "application/json")
}

// decodeBody turns b into a *T. Text bodies are accepted by string, any,
// []byte and encoding.TextUnmarshaler targets.
func decodeBody[T any](b Body) (*T, error) {
	var v T
	switch b.Kind {
	case BodyNone:
		return nil, nil
	case BodyJSON:
		if err := b.Decode(&v); err != nil {
			return nil, &DecodeError{ContentType: b.ContentType, Err: err}
		}
		return &v, nil
	}

	switch p := any(&v).(type) {
	case *string:
		*p = b.Text()
	case *any:
		*p = b.Text()
	case *[]byte:
		*p = append([]byte(nil), b.Raw...)
	case encoding.TextUnmarshaler:
		if err := p.UnmarshalText(b.Raw); err != nil {
			return nil, &DecodeError{ContentType: b.ContentType, Err: err}
		}
	default:
		return nil, &DecodeError{
			ContentType: b.ContentType,
			Err:         fmt.Errorf("cannot decode %q body into %T", b.ContentType, v),
		}
	}
	return &v, nil
}
