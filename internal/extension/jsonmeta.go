package extension

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONMeta requires the meta field to be a JSON object, optionally with a
// set of required top-level keys.
type JSONMeta struct {
	Base
	Required []string
}

func (v JSONMeta) PreUpload(_ context.Context, _ Toolkit, _ uint, draft *Draft) (string, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(draft.Meta), &parsed); err != nil {
		return "meta is not a JSON object", nil
	}
	for _, key := range v.Required {
		if _, ok := parsed[key]; !ok {
			return fmt.Sprintf("meta is missing required field %q", key), nil
		}
	}
	return "", nil
}
