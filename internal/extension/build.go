package extension

import (
	"fmt"
)

// ValidatorSpec is one validator entry in a project's configuration.
type ValidatorSpec struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// ProjectSpec is one project's configuration: an ordered validator list.
type ProjectSpec struct {
	Name       string          `mapstructure:"name"`
	Validators []ValidatorSpec `mapstructure:"validators"`
}

// BuildRegistry turns configuration into the process-wide registry. The
// fallback project for unconfigured names is read-only. Validator order in
// the config is preserved exactly.
func BuildRegistry(specs []ProjectSpec) (*Registry, error) {
	registry := NewRegistry(NewProject("default", ReadOnly{}))

	for _, spec := range specs {
		validators := make([]Validator, 0, len(spec.Validators))
		for _, vs := range spec.Validators {
			v, err := buildValidator(vs)
			if err != nil {
				return nil, fmt.Errorf("project %s: %w", spec.Name, err)
			}
			validators = append(validators, v)
		}
		registry.Register(NewProject(spec.Name, validators...))
	}

	return registry, nil
}

func buildValidator(spec ValidatorSpec) (Validator, error) {
	switch spec.Type {
	case "read_only":
		return ReadOnly{}, nil
	case "max_size":
		return MaxSize{Limit: intParam(spec.Params, "limit", 1<<20)}, nil
	case "title_length":
		return TitleLength{
			Min: intParam(spec.Params, "min", 1),
			Max: intParam(spec.Params, "max", 1024),
		}, nil
	case "json_meta":
		return JSONMeta{Required: stringsParam(spec.Params, "required")}, nil
	case "image":
		return Image{
			Format: stringParam(spec.Params, "format", "png"),
			Width:  intParam(spec.Params, "width", 0),
			Height: intParam(spec.Params, "height", 0),
		}, nil
	case "alpha_mask":
		maskPath := stringParam(spec.Params, "mask", "")
		if maskPath == "" {
			return nil, fmt.Errorf("alpha_mask requires a mask path")
		}
		mask, err := LoadMask(maskPath)
		if err != nil {
			return nil, err
		}
		width, height := 0, 0
		if len(mask) > 0 {
			height = len(mask)
			width = len(mask[0])
		}
		return AlphaMask{
			Width:     intParam(spec.Params, "width", width),
			Height:    intParam(spec.Params, "height", height),
			Mask:      mask,
			Threshold: intParam(spec.Params, "threshold", 0),
		}, nil
	case "report_tagger":
		return ReportTagger{
			Reason: stringParam(spec.Params, "reason", "INVALID"),
			Tag:    stringParam(spec.Params, "tag", InvalidTag),
		}, nil
	default:
		return nil, fmt.Errorf("unknown validator type %q", spec.Type)
	}
}

func intParam(params map[string]any, key string, fallback int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return fallback
}

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

func stringsParam(params map[string]any, key string) []string {
	var out []string
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
