package practicum

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
	"github.com/erkineren/homework-monitor/internal/models"
)

// ExtractHomeworks returns the homeworks list of a response unchanged.
// Records are validated later, one at a time, by ParseStatus.
func ExtractHomeworks(raw models.RawResponse) ([]any, error) {
	response, ok := raw.(map[string]any)
	if !ok {
		return nil, apperrors.NewTypeMismatchError(describe(raw))
	}

	value, present := response["homeworks"]
	switch homeworks := value.(type) {
	case []any:
		return homeworks, nil
	case nil:
		if !present {
			return nil, apperrors.NewNoExpectedAnswerError(`key "homeworks" is missing`)
		}
		return nil, apperrors.NewAnswerShapeError(describe(value))
	case map[string]any, string, bool, json.Number, float64:
		return nil, apperrors.NewAnswerShapeError(describe(value))
	default:
		return nil, apperrors.NewNoExpectedAnswerError(fmt.Sprintf("unexpected homeworks value %T", value))
	}
}

// CurrentDate returns the server timestamp of a response. ok is false when
// the field is absent or not an integer.
func CurrentDate(raw models.RawResponse) (int64, bool) {
	response, ok := raw.(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := response["current_date"].(type) {
	case json.Number:
		ts, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return ts, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// describe names the JSON type of a decoded value.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
