package server

import (
	"errors"
	"strings"

	"github.com/skosovsky/textops"
)

type evaluateRequest struct {
	Text            string `json:"text" description:"Sample text the task applies to."`
	TaskDescription string `json:"task_description" jsonschema:"minLength=1" description:"Free-text description of the transformation."`
	ExampleOutput   string `json:"example_output,omitempty"`
	Backend         string `json:"backend,omitempty"`
}

type convertRequest struct {
	Text            string   `json:"text"`
	TaskDescription string   `json:"task_description" jsonschema:"minLength=1"`
	ExampleOutput   string   `json:"example_output,omitempty"`
	ToolArgs        []string `json:"tool_args,omitempty" description:"Positional arguments used when the evaluator returns none."`
	Backend         string   `json:"backend,omitempty"`
}

type executeRequest struct {
	Tool string   `json:"tool" jsonschema:"minLength=1"`
	Text string   `json:"text"`
	Args []string `json:"args,omitempty"`
}

type createRoutineRequest struct {
	Name    string `json:"name,omitempty"`
	Backend string `json:"backend,omitempty"`
}

type appendStepRequest struct {
	Text            string `json:"text,omitempty"`
	TaskDescription string `json:"task_description,omitempty"`
	ExampleOutput   string `json:"example_output,omitempty"`
	FromPrevious    bool   `json:"from_previous,omitempty" description:"Carry the converted text of the last completed step forward."`
}

func (r appendStepRequest) Validate() error {
	if r.FromPrevious && r.Text != "" {
		return errors.New("text cannot be combined with from_previous")
	}
	return nil
}

// runStepRequest overrides the stored input of a step; empty fields keep it.
type runStepRequest struct {
	Text            *string `json:"text,omitempty"`
	TaskDescription string  `json:"task_description,omitempty"`
	ExampleOutput   string  `json:"example_output,omitempty"`
}

func (r runStepRequest) merge(in textops.StepInput) textops.StepInput {
	if r.Text != nil {
		in.Text = *r.Text
	}
	if r.TaskDescription != "" {
		in.TaskDescription = r.TaskDescription
	}
	if r.ExampleOutput != "" {
		in.ExampleOutput = r.ExampleOutput
	}
	return in
}

type templateStep struct {
	TaskDescription string `json:"task_description" jsonschema:"minLength=1"`
	ExampleOutput   string `json:"example_output,omitempty"`
}

type saveTemplateRequest struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	RoutineID   string         `json:"routine_id,omitempty" description:"Capture the steps of this routine."`
	Steps       []templateStep `json:"steps,omitempty"`
}

func (r saveTemplateRequest) Validate() error {
	switch {
	case r.RoutineID != "" && len(r.Steps) > 0:
		return errors.New("give either routine_id or steps, not both")
	case r.RoutineID == "" && len(r.Steps) == 0:
		return errors.New("steps are required")
	case r.RoutineID == "" && strings.TrimSpace(r.Name) == "":
		return errors.New("name is required")
	}
	return nil
}

func (r saveTemplateRequest) template(ownerID string) textops.RoutineTemplate {
	t := textops.RoutineTemplate{
		OwnerID:     ownerID,
		Name:        r.Name,
		Description: r.Description,
		Steps:       make([]textops.StepTemplate, len(r.Steps)),
	}
	for i, s := range r.Steps {
		t.Steps[i] = textops.StepTemplate{TaskDescription: s.TaskDescription, ExampleOutput: s.ExampleOutput}
	}
	return t
}

type replayRequest struct {
	Text    string `json:"text"`
	Backend string `json:"backend,omitempty"`
}
