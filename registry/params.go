package registry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrParamType = errors.New("parameter has the wrong type")

// Params are free-form factory parameters, usually decoded from YAML. Getters
// return the default when a key is absent and an error when it is mistyped.
type Params map[string]any

func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%s=%v is not an integer: %w", key, v, ErrParamType)
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%s=%v is not a number: %w", key, v, ErrParamType)
}

// Duration accepts a time.ParseDuration string or a time.Duration.
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s=%q: %w", key, v, errors.Join(ErrParamType, err))
		}
		return d, nil
	}
	return 0, fmt.Errorf("%s=%v is not a duration: %w", key, v, ErrParamType)
}

func (p Params) String(key string, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s=%v is not a string: %w", key, v, ErrParamType)
	}
	return s, nil
}

// Floats accepts a list of numbers.
func (p Params) Floats(key string, def []float64) ([]float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case []float64:
		return v, nil
	case []any:
		floats := make([]float64, 0, len(v))
		for i, item := range v {
			f, err := Params{key: item}.Float(key, 0)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			floats = append(floats, f)
		}
		return floats, nil
	}
	return nil, fmt.Errorf("%s=%v is not a list of numbers: %w", key, v, ErrParamType)
}
