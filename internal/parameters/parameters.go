// Package parameters handles generic configuration Params, a map[string]string that the
// user can set, e.g. the parameters of a strategy in "baseline:cache_size=100000,max_depth=400".
package parameters

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/janpfeifer/freecellGo/internal/generics"
	"github.com/pkg/errors"
)

// Params represent generic configuration parameters.
type Params map[string]string

// NewFromConfigString create params from user's configuration string.
// See GetParamOr and PopParamOr to parse values from this map.
func NewFromConfigString(config string) Params {
	params := make(Params)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subParts := strings.SplitN(part, "=", 2) // Split into up to 2 parts to handle '=' in values
		if len(subParts) == 1 {
			params[subParts[0]] = ""
		} else {
			params[subParts[0]] = subParts[1]
		}
	}
	return params
}

// SplitConfig splits a configuration like "name:k1=v1,k2" into the name and its parameters.
func SplitConfig(config string) (name string, params Params) {
	name = config
	rest := ""
	if split := strings.Index(config, ":"); split != -1 {
		name = config[:split]
		rest = config[split+1:]
	}
	return strings.TrimSpace(name), NewFromConfigString(rest)
}

// CheckAllConsumed returns an error listing the parameters left in params, typically those that were
// not popped by PopParamOr because they are unknown.
func CheckAllConsumed(params Params) error {
	if len(params) > 0 {
		return errors.Errorf("unknown parameters \"%s\" passed", strings.Join(generics.KeysSlice(params), "\", \""))
	}
	return nil
}

// ParamTypes that can be parsed by GetParamOr.
type ParamTypes interface {
	bool | int | float32 | float64 | string | time.Duration
}

// PopParamOr is like GetParamOr, but it also deletes from the params map the retrieved parameter.
func PopParamOr[T ParamTypes](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr attempts to parse a parameter to the given type if the key is present, or returns the defaultValue
// if not.
//
// For bool types, a key without a value is interpreted as true. Int values can also be given in
// scientific notation ("5e6"), as long as they are integral.
func GetParamOr[T ParamTypes](params Params, key string, defaultValue T) (T, error) {
	vAny := (any)(defaultValue)
	var t T
	toT := func(v any) T { return v.(T) }
	switch vAny.(type) {
	case string:
		if value, exists := params[key]; exists {
			return toT(value), nil
		}
	case int:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := parseInt(value)
			if err != nil {
				return t, errors.WithMessagef(err, "failed to parse configuration %s=%q to int", key, value)
			}
			return toT(parsedValue), nil
		}
	case float32:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(float32(parsedValue)), nil
		}
	case float64:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(parsedValue), nil
		}
	case time.Duration:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := time.ParseDuration(value)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to duration", key, value)
			}
			return toT(parsedValue), nil
		}
	case bool:
		if value, exists := params[key]; exists {
			if value == "" || strings.ToLower(value) == "true" || value == "1" { // Empty value is considered "true"
				return toT(true), nil
			}
			if strings.ToLower(value) == "false" || value == "0" {
				return toT(false), nil
			}
			return defaultValue, errors.Errorf("failed to parse configuration %s=%q to bool", key, value)
		}
	}
	return defaultValue, nil
}

func parseInt(value string) (int, error) {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrap(err, "not a number")
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, errors.Errorf("%q is not an integer", value)
	}
	return int(f), nil
}
