package kinds

import (
	"math"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
)

// Parameter values arrive from TOML (int64, float64), JSON (float64) and Go
// callers (int, float64), so the coercions below accept all of them.

func floatParam(name string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, errs.New(errs.ErrCodeInvalidParam, "%s: want a number, got %T", name, v)
}

func intParam(name string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) {
			return int(x), nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidParam, "%s: want an integer, got %v", name, v)
}

func positiveInt(name string, v any, limit int) (int, error) {
	n, err := intParam(name, v)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > limit {
		return 0, errs.New(errs.ErrCodeInvalidParam, "%s: %d out of range [1, %d]", name, n, limit)
	}
	return n, nil
}

func unknownParam(kind, name string) error {
	return errs.New(errs.ErrCodeInvalidParam, "%s has no parameter %q", kind, name)
}
