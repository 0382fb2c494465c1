package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skosovsky/textops"
)

type taskFlags struct {
	input   inputFlags
	task    string
	example string
	backend string
	asJSON  bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	f.input.register(cmd)
	cmd.Flags().StringVarP(&f.task, "task", "t", "", "task description (required)")
	cmd.Flags().StringVar(&f.example, "example", "", "example of the expected output")
	cmd.Flags().StringVarP(&f.backend, "backend", "b", "", "evaluation strategy (heuristic, delegated); defaults to backend.mode")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print as JSON")
	_ = cmd.MarkFlagRequired("task")
}

// engine returns the app engine, switched to the --backend strategy when given.
func (f *taskFlags) engine(a *app) (*textops.Engine, error) {
	if f.backend == "" {
		return a.engine, nil
	}
	ev, ok := a.service.Strategy(f.backend)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", f.backend)
	}
	return a.engine.WithEvaluator(ev), nil
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	f := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show which tool and arguments a task resolves to, without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := f.input.read(cmd)
			if err != nil {
				return err
			}
			engine, err := f.engine(opts.app)
			if err != nil {
				return err
			}
			eval := engine.EvaluateTask(cmd.Context(), text, f.task, f.example)
			if f.asJSON {
				return writeJSON(cmd, eval)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tool: %s\n", eval.Tool)
			for _, a := range eval.Args {
				fmt.Fprintf(out, "  %s = %q\n", a.Name, a.Value)
			}
			if eval.Reasoning != "" {
				fmt.Fprintf(out, "reasoning: %s\n", eval.Reasoning)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newConvertCmd(opts *rootOptions) *cobra.Command {
	f := &taskFlags{}
	var args []string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Pick a tool for the task and apply it to the text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := f.input.read(cmd)
			if err != nil {
				return err
			}
			engine, err := f.engine(opts.app)
			if err != nil {
				return err
			}
			res := engine.ProcessRequest(cmd.Context(), textops.Request{
				Text:            text,
				TaskDescription: f.task,
				ExampleOutput:   f.example,
				ToolArgs:        args,
			})
			return printResult(cmd, res, f.asJSON)
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "fallback tool argument, repeatable; used when the evaluator binds none")
	return cmd
}

func newExecCmd(opts *rootOptions) *cobra.Command {
	var (
		input  inputFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "exec TOOL [ARG...]",
		Short: "Run a tool directly with positional arguments",
		Example: `  textops exec sortLines --text "b
a" -- desc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input.read(cmd)
			if err != nil {
				return err
			}
			res := opts.app.engine.ExecuteTool(cmd.Context(), args[0], text, args[1:])
			return printResult(cmd, res, asJSON)
		},
	}
	input.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// printResult shows a diff-mode result as its unified diff and an output-mode result
// as the converted text. Pipeline errors become the command error.
func printResult(cmd *cobra.Command, res textops.ConversionResult, asJSON bool) error {
	if asJSON {
		if err := writeJSON(cmd, res); err != nil {
			return err
		}
	} else if !res.Failed() {
		out := cmd.OutOrStdout()
		if res.RenderMode == textops.RenderDiff && res.Diff != "" {
			fmt.Fprint(out, res.Diff)
		} else {
			fmt.Fprintln(out, res.ConvertedText)
		}
	}
	if res.Failed() {
		return fmt.Errorf("%s: %s", res.ToolUsed, res.Error)
	}
	return nil
}
