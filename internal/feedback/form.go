package feedback

// Field identifies a single input of the course feedback form
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldCourse     Field = "course"
	FieldInstructor Field = "instructor"
	FieldRecommend  Field = "recommend"
	FieldRating     Field = "rating"
	FieldPace       Field = "pace"
	FieldWorkedWell Field = "workedWell"
	FieldComments   Field = "comments"
	FieldConsent    Field = "consent"
)

// RequiredFields are the fields that gate submission and count towards progress.
// workedWell is optional and intentionally absent.
var RequiredFields = []Field{
	FieldName,
	FieldEmail,
	FieldCourse,
	FieldInstructor,
	FieldRecommend,
	FieldRating,
	FieldPace,
	FieldComments,
	FieldConsent,
}

// AllFields lists every form field in display order
var AllFields = []Field{
	FieldName,
	FieldEmail,
	FieldCourse,
	FieldInstructor,
	FieldRecommend,
	FieldRating,
	FieldPace,
	FieldWorkedWell,
	FieldComments,
	FieldConsent,
}

// Option catalogues
var (
	Courses           = []string{"DSA", "Operating Systems", "DBMS", "Networks"}
	RecommendOptions  = []string{"Yes", "No"}
	WorkedWellOptions = []string{"Lectures", "Labs", "Assignments", "Projects", "Others"}

	// DefaultInstructors are suggestions only; any non-empty instructor is accepted
	DefaultInstructors = []string{"Dr. Sharma", "Prof. Iyer", "Dr. Mehta", "Prof. Rao"}
)

const (
	MinRating   = 0
	MaxRating   = 5
	MinPace     = 0
	MaxPace     = 10
	DefaultPace = 5

	MinNameLength     = 2
	MinCommentsLength = 50
)

// FormState is the full set of values entered by a student
type FormState struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Course     string   `json:"course"`
	Instructor string   `json:"instructor"`
	Recommend  string   `json:"recommend"`
	Rating     int      `json:"rating"`
	Pace       *int     `json:"pace"`
	WorkedWell []string `json:"workedWell"`
	Comments   string   `json:"comments"`
	Consent    bool     `json:"consent"`
}

// DefaultFormState returns a blank form with pace preset to the middle of the scale
func DefaultFormState() FormState {
	pace := DefaultPace
	return FormState{
		Pace:       &pace,
		WorkedWell: []string{},
	}
}

// Clone returns a deep copy that shares no memory with s
func (s FormState) Clone() FormState {
	out := s
	if s.Pace != nil {
		pace := *s.Pace
		out.Pace = &pace
	}
	out.WorkedWell = make([]string, len(s.WorkedWell))
	copy(out.WorkedWell, s.WorkedWell)
	return out
}

// Value returns the current value of field as it would be handed to a rule
func (s FormState) Value(field Field) (any, bool) {
	switch field {
	case FieldName:
		return s.Name, true
	case FieldEmail:
		return s.Email, true
	case FieldCourse:
		return s.Course, true
	case FieldInstructor:
		return s.Instructor, true
	case FieldRecommend:
		return s.Recommend, true
	case FieldRating:
		return s.Rating, true
	case FieldPace:
		return s.Pace, true
	case FieldWorkedWell:
		return s.WorkedWell, true
	case FieldComments:
		return s.Comments, true
	case FieldConsent:
		return s.Consent, true
	default:
		return nil, false
	}
}

// ErrorMap maps a field to its current validation message. A missing key means valid.
type ErrorMap map[Field]string

// Clone returns an independent copy of m
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Phase is the submission lifecycle position of an engine
type Phase string

const (
	PhaseEditing        Phase = "editing"
	PhaseReadyToConfirm Phase = "readyToConfirm"
)

// IsKnownField reports whether field is one of the form's fields
func IsKnownField(field Field) bool {
	for _, f := range AllFields {
		if f == field {
			return true
		}
	}
	return false
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
