// Package textops turns a free-text task description into a call to one of a fixed
// catalog of text tools, runs it safely, and records the outcome as steps of a
// replayable routine.
//
// # Overview
//
// Users describe what they want ("remove duplicate lines", "csv to json") together
// with a text sample. This package decides which tool satisfies the request, binds
// its arguments, executes it, and returns a ConversionResult that never carries a Go
// error: every failure is resolved to a value the caller can display.
//
// Pipeline: task description → Evaluator (heuristic or delegated) → ToolEvaluation →
// Registry.Execute → ConversionResult (converted text, unified diff, render mode) →
// WorkflowStep → Routine status.
//
// # Key concepts
//
//   - Registry: name → Tool map built once at startup. Tools are pure functions
//     func(text string, args ...string) string with a declared, ordered parameter list.
//   - Tool argument errors are returned as "Error: ..." text, not as Go errors; only an
//     unknown tool name fails execution (ErrToolNotAvailable).
//   - Positional binding: values parsed from a delegated reply are zipped against the
//     declared parameter order, not matched by name (see BindArgs).
//   - Routine status is never stored; ComputeStatus derives it from the steps.
//
// # Example
//
//	reg := catalog.NewRegistry()
//	engine := textops.NewEngine(reg, textops.NewHeuristicEvaluator())
//	res := engine.ProcessRequest(ctx, textops.Request{
//	    Text:            "the quick brown fox",
//	    TaskDescription: "Capitalize all words",
//	})
//	// res.ConvertedText == "The Quick Brown Fox", res.RenderMode == textops.RenderDiff
package textops
