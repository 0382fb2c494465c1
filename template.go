package textops

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// StepTemplate is a text-free step definition.
type StepTemplate struct {
	TaskDescription string `json:"task_description" yaml:"task"`
	ExampleOutput   string `json:"example_output,omitempty" yaml:"example,omitempty"`
}

// RoutineTemplate is a reusable routine definition with no bound text.
type RoutineTemplate struct {
	ID          string         `json:"id" yaml:"id,omitempty"`
	OwnerID     string         `json:"owner_id,omitempty" yaml:"-"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []StepTemplate `json:"steps" yaml:"steps"`
	UsageCount  int            `json:"usage_count" yaml:"-"`
	CreatedAt   time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"-"`
}

// Validate checks that the template can be replayed.
func (t RoutineTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	if len(t.Steps) == 0 {
		return errors.New("template needs at least one step")
	}
	for i, s := range t.Steps {
		if strings.TrimSpace(s.TaskDescription) == "" {
			return fmt.Errorf("step %d: task description is required", i+1)
		}
	}
	return nil
}

// Replay creates a fresh routine from t: one pending step per template step, with
// empty text. Binding text to the first step is up to the caller.
func Replay(t RoutineTemplate, backend string) *Routine {
	r := NewRoutine(t.Name, backend)
	r.OwnerID = t.OwnerID
	r.TemplateID = t.ID
	for _, s := range t.Steps {
		r.AppendStep(StepInput{TaskDescription: s.TaskDescription, ExampleOutput: s.ExampleOutput})
	}
	return r
}

// TemplateFromRoutine captures the task descriptions of r's steps, dropping all text.
// Skipped steps and retried duplicates are kept in order; steps without a task are left out.
func TemplateFromRoutine(r *Routine, name, description string) RoutineTemplate {
	if name == "" {
		name = r.Name
	}
	now := time.Now().UTC()
	t := RoutineTemplate{
		ID:          uuid.NewString(),
		OwnerID:     r.OwnerID,
		Name:        name,
		Description: description,
		Steps:       []StepTemplate{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, s := range r.Steps {
		if strings.TrimSpace(s.Input.TaskDescription) == "" {
			continue
		}
		t.Steps = append(t.Steps, StepTemplate{
			TaskDescription: s.Input.TaskDescription,
			ExampleOutput:   s.Input.ExampleOutput,
		})
	}
	return t
}

type templateFile struct {
	Templates []RoutineTemplate `yaml:"templates"`
}

// ReadTemplates decodes a YAML document of the form
//
//	templates:
//	  - name: Clean list
//	    steps:
//	      - task: remove duplicate lines
//	      - task: sort lines
//
// Templates without an id get a fresh one. Every template is validated.
func ReadTemplates(r io.Reader) ([]RoutineTemplate, error) {
	var f templateFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	now := time.Now().UTC()
	for i := range f.Templates {
		t := &f.Templates[i]
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i+1, err)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.CreatedAt, t.UpdatedAt = now, now
	}
	return f.Templates, nil
}

// WriteTemplates encodes templates in the format read by ReadTemplates.
func WriteTemplates(w io.Writer, templates []RoutineTemplate) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(templateFile{Templates: templates}); err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	return enc.Close()
}
