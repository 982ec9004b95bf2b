package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema.xml>",
		Short: "Validate an XML message schema",
		Long: `Parse an XML message schema and run the structural validator:
template id uniqueness, member id uniqueness per scope, constant/type
compatibility, and type reference resolution.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	schema, err := loadSchema(formatter, schemaPath)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"package":  schema.Package(),
			"messages": countMessages(schema),
		})
	}
	return formatter.Success(fmt.Sprintf("schema %s is valid (%d message(s))",
		schema.Package(), countMessages(schema)))
}
