package style

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// DecodeJSON decodes a camelCase config object onto the defaults of the
// variant named by t. An empty body yields the defaults; unknown fields are
// rejected.
func DecodeJSON(t LayerType, data []byte) (Config, error) {
	if _, err := ParseLayerType(string(t)); err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	cfg, err := decodeVariant(t, func(dst any) error {
		if len(data) == 0 {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	})
	if err != nil {
		return nil, fmt.Errorf("%s config: %w", t, err)
	}
	return cfg, nil
}
