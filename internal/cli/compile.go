package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bjoto/simple-binary-encoding/internal/compiler"
	"github.com/bjoto/simple-binary-encoding/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // explicit output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema.xml>",
		Short: "Compile an XML message schema to IR",
		Long: `Compile an XML message schema into the validated intermediate
representation, optionally writing it as JSON for downstream
generators and decoders.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadToolConfig(opts.Config)
	if err != nil {
		return reportError(formatter, ExitCommandError, ErrCodeConfig, err.Error())
	}
	if opts.Format == "text" && cfg.Format != "" {
		formatter.Format = cfg.Format
	}

	schema, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}

	formatter.VerboseLog("Compiled schema %s (%d message(s))",
		schema.Package(), countMessages(schema))

	summary := Summarize(schema)

	if out := outputPath(opts, cfg, schema); out != "" {
		if err := writeSummary(summary, out); err != nil {
			return reportError(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error())
		}
		formatter.VerboseLog("Wrote %s", out)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	return formatter.Success(renderText(summary))
}

// loadSchema parses and validates a schema file, mapping each failure to
// the right exit code: command errors for unreadable or malformed input,
// validation failures for a structurally invalid schema.
func loadSchema(formatter *OutputFormatter, path string) (*ir.MessageSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, reportError(formatter, ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("schema file %s: %v", path, err))
	}
	defer f.Close()

	schema, err := compiler.ParseSchema(f)
	if err != nil {
		var vErr *compiler.SchemaValidationError
		if errors.As(err, &vErr) {
			if outErr := formatter.Error(vErr.Code, vErr.Error(), nil); outErr != nil {
				return nil, outErr
			}
			return nil, &ExitError{Code: ExitFailure, Message: "schema validation failed", Err: err}
		}
		return nil, reportError(formatter, ExitCommandError, ErrCodeParse, err.Error())
	}
	return schema, nil
}

func reportError(formatter *OutputFormatter, exitCode int, code, message string) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return err
	}
	return &ExitError{Code: exitCode, Message: message}
}

func outputPath(opts *CompileOptions, cfg ToolConfig, schema *ir.MessageSchema) string {
	if opts.Output != "" {
		return opts.Output
	}
	if cfg.OutputDir != "" {
		return filepath.Join(cfg.OutputDir, schema.Package()+".ir.json")
	}
	return ""
}

func writeSummary(summary SchemaSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func countMessages(schema *ir.MessageSchema) int {
	n := 0
	for range schema.Messages() {
		n++
	}
	return n
}
