// Package catalog provides the option lists rendered by the feedback form.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"gopkg.in/yaml.v3"
)

// Catalog is the set of choices offered to the student.
// Courses, recommend and workedWell options are fixed by the form;
// instructors are suggestions and may be replaced from a file.
type Catalog struct {
	Courses           []string `json:"courses"`
	Instructors       []string `json:"instructors"`
	RecommendOptions  []string `json:"recommendOptions"`
	WorkedWellOptions []string `json:"workedWellOptions"`
	RatingMax         int      `json:"ratingMax"`
	PaceMin           int      `json:"paceMin"`
	PaceMax           int      `json:"paceMax"`
}

type instructorsFile struct {
	Instructors []string `yaml:"instructors"`
}

// Default returns the built-in catalog
func Default() Catalog {
	return Catalog{
		Courses:           cloneStrings(feedback.Courses),
		Instructors:       cloneStrings(feedback.DefaultInstructors),
		RecommendOptions:  cloneStrings(feedback.RecommendOptions),
		WorkedWellOptions: cloneStrings(feedback.WorkedWellOptions),
		RatingMax:         feedback.MaxRating,
		PaceMin:           feedback.MinPace,
		PaceMax:           feedback.MaxPace,
	}
}

// Load returns the default catalog, with instructor suggestions read from
// the YAML file at path when path is set.
//
//	instructors:
//	  - Dr. Sharma
//	  - Prof. Iyer
func Load(path string) (Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var file instructorsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	instructors := make([]string, 0, len(file.Instructors))
	seen := make(map[string]struct{}, len(file.Instructors))
	for _, name := range file.Instructors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		instructors = append(instructors, name)
	}
	if len(instructors) == 0 {
		return Catalog{}, fmt.Errorf("catalog: %s lists no instructors", path)
	}

	c.Instructors = instructors
	return c, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
