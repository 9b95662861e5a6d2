package feedback

import (
	"regexp"
	"unicode/utf16"
)

// Validation messages shown inline next to the field
const (
	MsgRequired        = "Required"
	MsgMinName         = "Minimum 2 characters"
	MsgInvalidEmail    = "Invalid email format"
	MsgSelectCourse    = "Select a course"
	MsgSelectRecommend = "Select Yes or No"
	MsgGiveRating      = "Give a rating"
	MsgMinComments     = "Minimum 50 characters"
	MsgConsentRequired = "Consent required"
)

// jsSpace mirrors the browser's \s class so addresses with non-breaking or
// ideographic spaces are rejected the same way the form rejects them.
const jsSpace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var emailPattern = regexp.MustCompile(`^[^` + jsSpace + `@]+@[^` + jsSpace + `@]+\.[^` + jsSpace + `@]+$`)

type rule func(s FormState) string

var rules = map[Field]rule{
	FieldName: func(s FormState) string {
		if s.Name == "" {
			return MsgRequired
		}
		if textLength(s.Name) < MinNameLength {
			return MsgMinName
		}
		return ""
	},
	FieldEmail: func(s FormState) string {
		if s.Email == "" {
			return MsgRequired
		}
		if !emailPattern.MatchString(s.Email) {
			return MsgInvalidEmail
		}
		return ""
	},
	FieldCourse: func(s FormState) string {
		if s.Course == "" {
			return MsgSelectCourse
		}
		return ""
	},
	FieldInstructor: func(s FormState) string {
		if s.Instructor == "" {
			return MsgRequired
		}
		return ""
	},
	FieldRecommend: func(s FormState) string {
		if s.Recommend == "" {
			return MsgSelectRecommend
		}
		return ""
	},
	FieldRating: func(s FormState) string {
		if s.Rating < 1 {
			return MsgGiveRating
		}
		return ""
	},
	FieldPace: func(s FormState) string {
		if s.Pace == nil {
			return MsgRequired
		}
		return ""
	},
	FieldComments: func(s FormState) string {
		if s.Comments == "" {
			return MsgRequired
		}
		if textLength(s.Comments) < MinCommentsLength {
			return MsgMinComments
		}
		return ""
	},
	FieldConsent: func(s FormState) string {
		if !s.Consent {
			return MsgConsentRequired
		}
		return ""
	},
}

// Validate runs the rule for field against the current state.
// It returns the error message, or "" when the value is acceptable.
// Fields without a rule (workedWell) are always valid.
func Validate(field Field, state FormState) string {
	r, ok := rules[field]
	if !ok {
		return ""
	}
	return r(state)
}

// ValidateValue validates a single raw value for field without a surrounding state
func ValidateValue(field Field, value any) (string, error) {
	state := DefaultFormState()
	if err := assign(&state, field, value); err != nil {
		return "", err
	}
	return Validate(field, state), nil
}

// ValidateAll runs every rule and returns the failing fields
func ValidateAll(state FormState) ErrorMap {
	errs := make(ErrorMap)
	for _, f := range AllFields {
		if msg := Validate(f, state); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

// isFilled reports whether the value of a required field counts as entered.
// Zero rating and zero pace are legal values but do not count as filled.
func isFilled(field Field, s FormState) bool {
	switch field {
	case FieldName:
		return s.Name != ""
	case FieldEmail:
		return s.Email != ""
	case FieldCourse:
		return s.Course != ""
	case FieldInstructor:
		return s.Instructor != ""
	case FieldRecommend:
		return s.Recommend != ""
	case FieldRating:
		return s.Rating != 0
	case FieldPace:
		return s.Pace != nil && *s.Pace != 0
	case FieldComments:
		return s.Comments != ""
	case FieldConsent:
		return s.Consent
	case FieldWorkedWell:
		return len(s.WorkedWell) > 0
	default:
		return false
	}
}

// textLength counts UTF-16 code units, the unit the form's length limits are expressed in
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
