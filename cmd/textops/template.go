package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skosovsky/textops"
)

func newTemplateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Manage routine templates",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return opts.app.requireStore()
		},
	}
	cmd.AddCommand(
		newTemplateListCmd(opts),
		newTemplateImportCmd(opts),
		newTemplateExportCmd(opts),
		newTemplateDeleteCmd(opts),
		newTemplateReplayCmd(opts),
	)
	return cmd
}

func newTemplateListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := opts.app.service.ListTemplates(cmd.Context(), opts.owner)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTEPS\tUSED")
			for _, t := range ts {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", t.ID, t.Name, len(t.Steps), t.UsageCount)
			}
			return w.Flush()
		},
	}
}

func newTemplateImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: `Import templates from a YAML file ("-" for stdin)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open templates: %w", err)
				}
				defer f.Close()
				r = f
			}
			ts, err := textops.ReadTemplates(r)
			if err != nil {
				return err
			}
			for _, t := range ts {
				t.OwnerID = opts.owner
				saved, err := opts.app.service.SaveTemplate(cmd.Context(), t)
				if err != nil {
					return fmt.Errorf("template %q: %w", t.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s %s\n", saved.ID, saved.Name)
			}
			return nil
		},
	}
}

func newTemplateExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export templates as YAML to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := opts.app.service.ListTemplates(cmd.Context(), opts.owner)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return textops.WriteTemplates(cmd.OutOrStdout(), ts)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export: %w", err)
			}
			if err := textops.WriteTemplates(f, ts); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func newTemplateDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.app.service.DeleteTemplate(cmd.Context(), opts.owner, args[0])
		},
	}
}

func newTemplateReplayCmd(opts *rootOptions) *cobra.Command {
	var (
		input   inputFlags
		backend string
		run     bool
	)
	cmd := &cobra.Command{
		Use:   "replay ID",
		Short: "Create a routine from a template and optionally run it",
		Long: `replay creates a routine with one pending step per template step and binds the
input text to the first step. With --run every step is executed in order and each
step's converted text becomes the next step's input; the final text is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input.read(cmd)
			if err != nil {
				return err
			}
			svc := opts.app.service
			r, err := svc.ReplayTemplate(cmd.Context(), opts.owner, args[0], backend, text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !run {
				fmt.Fprintf(out, "routine %s created with %d steps\n", r.ID, len(r.Steps))
				return nil
			}
			for i, s := range r.Steps {
				in := s.Input
				in.Text = text
				step, err := svc.RunStep(cmd.Context(), r.ID, s.ID, &in)
				if err != nil {
					return err
				}
				if step.Status == textops.StepError {
					return fmt.Errorf("step %d (%s): %s", i+1, in.TaskDescription, step.Error)
				}
				text = step.Output.Result.ConvertedText
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
	input.register(cmd)
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "evaluation strategy for the routine")
	cmd.Flags().BoolVar(&run, "run", false, "run every step, chaining outputs")
	return cmd
}
