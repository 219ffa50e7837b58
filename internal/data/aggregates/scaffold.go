package aggregates

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

const courseScaffoldEnv = "COURSE_SCAFFOLD_YAML"

//go:embed course_scaffold.yaml
var courseScaffoldFS embed.FS

type ScaffoldWeek struct {
	Number      int      `yaml:"number"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Objectives  []string `yaml:"objectives"`
	Topics      []string `yaml:"topics"`
}

type yamlCourseScaffold struct {
	Scaffold string         `yaml:"scaffold"`
	Version  int            `yaml:"version"`
	Weeks    []ScaffoldWeek `yaml:"weeks"`
}

// CourseScaffold is the placeholder curriculum for a new course: exactly one
// entry per week number 1..MaxWeeksPerCourse.
type CourseScaffold struct {
	Weeks []ScaffoldWeek
}

// FallbackCourseScaffold is used when no template can be loaded.
func FallbackCourseScaffold() *CourseScaffold {
	weeks := make([]ScaffoldWeek, 0, types.MaxWeeksPerCourse)
	for n := 1; n <= types.MaxWeeksPerCourse; n++ {
		weeks = append(weeks, placeholderWeek(n))
	}
	return &CourseScaffold{Weeks: weeks}
}

func placeholderWeek(n int) ScaffoldWeek {
	return ScaffoldWeek{Number: n, Title: fmt.Sprintf("Week %d", n)}
}

// LoadCourseScaffold reads the template from path, or from the embedded
// default when path is empty. Gaps are filled with placeholders.
func LoadCourseScaffold(path string) (*CourseScaffold, error) {
	data, err := readCourseScaffold(path)
	if err != nil {
		return nil, err
	}
	var spec yamlCourseScaffold
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse course scaffold: %w", err)
	}
	return buildCourseScaffold(spec)
}

// CourseScaffoldFromEnv loads the template named by COURSE_SCAFFOLD_YAML and
// falls back to the built-in placeholders on any error.
func CourseScaffoldFromEnv(log *logger.Logger) *CourseScaffold {
	path := strings.TrimSpace(os.Getenv(courseScaffoldEnv))
	s, err := LoadCourseScaffold(path)
	if err != nil {
		if log != nil {
			log.Warn("course scaffold load failed; using fallback", "path", path, "error", err)
		}
		return FallbackCourseScaffold()
	}
	return s
}

func readCourseScaffold(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return courseScaffoldFS.ReadFile("course_scaffold.yaml")
}

func buildCourseScaffold(spec yamlCourseScaffold) (*CourseScaffold, error) {
	byNumber := make(map[int]ScaffoldWeek, len(spec.Weeks))
	for _, w := range spec.Weeks {
		if w.Number < 1 || w.Number > types.MaxWeeksPerCourse {
			return nil, fmt.Errorf("scaffold week number %d out of range", w.Number)
		}
		if _, dup := byNumber[w.Number]; dup {
			return nil, fmt.Errorf("scaffold week %d defined twice", w.Number)
		}
		w.Title = strings.TrimSpace(w.Title)
		if w.Title == "" {
			w.Title = placeholderWeek(w.Number).Title
		}
		byNumber[w.Number] = w
	}
	out := &CourseScaffold{Weeks: make([]ScaffoldWeek, 0, types.MaxWeeksPerCourse)}
	for n := 1; n <= types.MaxWeeksPerCourse; n++ {
		if w, ok := byNumber[n]; ok {
			out.Weeks = append(out.Weeks, w)
			continue
		}
		out.Weeks = append(out.Weeks, placeholderWeek(n))
	}
	return out, nil
}
