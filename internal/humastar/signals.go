package humastar

import (
	"bytes"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
)

// EmptyInput is the input of operations without parameters.
type EmptyInput struct{}

// SignalsInput is embedded by inputs that carry the Datastar signal store
// as their body.
type SignalsInput struct {
	RawBody []byte
}

// MustParse decodes the body, answering 400 when it is not a JSON object.
func (i *SignalsInput) MustParse() (Signals, error) {
	signals, err := ParseSignals(i.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid signals: " + err.Error())
	}
	return signals, nil
}

// Signals is the flat signal store Datastar posts with each action.
type Signals map[string]any

// ParseSignals decodes a signal store. An empty body is an empty store.
// Numbers stay json.Number so ids made of digits survive as strings.
func ParseSignals(body []byte) (Signals, error) {
	signals := Signals{}
	if len(bytes.TrimSpace(body)) == 0 {
		return signals, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// String returns a string or number signal as text, and "" otherwise.
func (s Signals) String(key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// Float returns a numeric signal, parsing strings bound to inputs.
func (s Signals) Float(key string) float64 {
	var text string
	switch v := s[key].(type) {
	case json.Number:
		text = v.String()
	case string:
		text = v
	default:
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return f
}

// Bool returns a boolean signal. Checkbox values posted as "true" or
// "false" are accepted.
func (s Signals) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Has reports whether key is present, even with a zero value.
func (s Signals) Has(key string) bool {
	_, ok := s[key]
	return ok
}
