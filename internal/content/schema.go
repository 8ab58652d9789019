package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var errEmptyPayload = errors.New("empty object")

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// decode parses body into T and checks it against its validate tags.
// The placeholder API answers unknown ids with "{}", so an all-zero object is reported as errEmptyPayload.
func decode[T any](v *validator.Validate, body []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding %T: %w", out, err)
	}

	if reflect.ValueOf(out).IsZero() {
		return nil, errEmptyPayload
	}

	if err := v.Struct(&out); err != nil {
		return nil, fmt.Errorf("validating %T: %w", out, err)
	}
	return &out, nil
}

func decodeList[T any](v *validator.Validate, body []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding %T: %w", out, err)
	}
	if out == nil {
		return nil, fmt.Errorf("decoding %T: expected a JSON array", out)
	}

	for i := range out {
		if err := v.Struct(&out[i]); err != nil {
			return nil, fmt.Errorf("validating item %d: %w", i, err)
		}
	}
	return out, nil
}
