package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/recon/internal/ir"
)

// marshalAttrs stores event attributes as canonical JSON so golden traces
// and stored rows agree byte for byte.
func marshalAttrs(attrs map[string]string) (string, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	data, err := ir.MarshalCanonical(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return string(data), nil
}

func unmarshalAttrs(data string) (map[string]string, error) {
	attrs := map[string]string{}
	if data == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return attrs, nil
}
