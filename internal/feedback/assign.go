package feedback

import (
	"encoding/json"
	"fmt"
	"math"
)

// assign writes value into the field of s, coercing the loosely typed values a
// JSON-decoding caller hands over. s is left untouched on error.
func assign(s *FormState, field Field, value any) error {
	switch field {
	case FieldName, FieldEmail, FieldInstructor:
		str, err := asString(field, value)
		if err != nil {
			return err
		}
		switch field {
		case FieldName:
			s.Name = str
		case FieldEmail:
			s.Email = str
		default:
			s.Instructor = str
		}
	case FieldCourse:
		str, err := asString(field, value)
		if err != nil {
			return err
		}
		if str != "" && !contains(Courses, str) {
			return invalidValue(field, "unknown course %q", str)
		}
		s.Course = str
	case FieldRecommend:
		str, err := asString(field, value)
		if err != nil {
			return err
		}
		if str != "" && !contains(RecommendOptions, str) {
			return invalidValue(field, "must be Yes or No")
		}
		s.Recommend = str
	case FieldRating:
		n, err := asInt(field, value)
		if err != nil {
			return err
		}
		if n < MinRating || n > MaxRating {
			return invalidValue(field, "must be between %d and %d", MinRating, MaxRating)
		}
		s.Rating = n
	case FieldPace:
		if value == nil {
			s.Pace = nil
			return nil
		}
		n, err := asInt(field, value)
		if err != nil {
			return err
		}
		if n < MinPace || n > MaxPace {
			return invalidValue(field, "must be between %d and %d", MinPace, MaxPace)
		}
		s.Pace = &n
	case FieldWorkedWell:
		tags, err := asTags(value)
		if err != nil {
			return err
		}
		s.WorkedWell = tags
	case FieldComments:
		str, err := asString(field, value)
		if err != nil {
			return err
		}
		s.Comments = str
	case FieldConsent:
		b, ok := value.(bool)
		if !ok {
			return invalidValue(field, "expected boolean, got %T", value)
		}
		s.Consent = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func invalidValue(field Field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, fmt.Sprintf(format, args...))
}

func asString(field Field, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", invalidValue(field, "expected string, got %T", value)
	}
}

func asInt(field Field, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, invalidValue(field, "expected whole number, got %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, invalidValue(field, "expected whole number, got %q", v.String())
		}
		return int(n), nil
	default:
		return 0, invalidValue(field, "expected number, got %T", value)
	}
}

// asTags accepts []string or []any and keeps the first occurrence of each option
func asTags(value any) ([]string, error) {
	var raw []string
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		raw = v
	case []any:
		raw = make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, invalidValue(FieldWorkedWell, "expected list of strings, got %T", item)
			}
			raw = append(raw, str)
		}
	default:
		return nil, invalidValue(FieldWorkedWell, "expected list of strings, got %T", value)
	}

	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		if !contains(WorkedWellOptions, tag) {
			return nil, invalidValue(FieldWorkedWell, "unknown option %q", tag)
		}
		if !contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
