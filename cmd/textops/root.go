package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skosovsky/textops/config"
)

type rootOptions struct {
	configPath string
	owner      string
	app        *app
}

// close releases what PersistentPreRunE opened. Cobra skips post-run hooks when a
// command fails, so callers close after Execute instead.
func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

// execute runs the command line in args and always releases the app.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, opts.close())
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textops",
		Short: "Apply text tools chosen from a free-text task description",
		Long: `textops picks one tool from a fixed catalog of text operations (case,
lines, counting, CSV/JSON, extraction, formatting, generators) based on a
free-text task, runs it, and shows the result as a diff or as output.

Examples:
  echo "b\na" | textops convert --task "sort lines"
  textops exec repeatText --text hi -- 3 ", "
  textops serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.app, err = newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			return err
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.owner, "owner", "local", "owner id for routines and templates")

	cmd.AddCommand(
		newToolsCmd(opts),
		newEvaluateCmd(opts),
		newConvertCmd(opts),
		newExecCmd(opts),
		newServeCmd(opts),
		newTemplateCmd(opts),
	)
	return cmd
}

// inputFlags reads the text to work on from --text, --file or stdin.
type inputFlags struct {
	text string
	file string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "input text")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `read input from a file ("-" for stdin)`)
}

func (f *inputFlags) read(cmd *cobra.Command) (string, error) {
	switch {
	case f.text != "" && f.file != "":
		return "", fmt.Errorf("use either --text or --file")
	case f.text != "":
		return f.text, nil
	case f.file == "" || f.file == "-":
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSuffix(string(raw), "\n"), nil
	default:
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(raw), nil
	}
}
