package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"evalgo.org/hostjobs/internal/validation"
)

var validateRemote bool

var validateCmd = &cobra.Command{
	Use:   "validate [type] [file]",
	Short: "Validate a JSON-LD document",
	Long: `Validate a JSON-LD document against hostjobs schemas.

Examples:
  hostjobs validate host my-host.json
  hostjobs validate host my-host.json --remote`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateRemote, "remote", false, "validate through the API instead of locally")
}

func runValidate(cmd *cobra.Command, args []string) error {
	entityType := args[0]
	filename := args[1]

	if entityType != "host" {
		return fmt.Errorf("unknown entity type: %s (use 'host')", entityType)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if validateRemote {
		return runAPIValidation(commandContext(cmd), cmd.OutOrStdout(), data)
	}
	return runLocalValidation(cmd.OutOrStdout(), data)
}

// runLocalValidation validates the document locally
func runLocalValidation(out io.Writer, data []byte) error {
	host, result, err := validation.New().ParseHost(data)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if err := printValidation(out, result.Valid, result.Errors); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s is %s\n", host.ID, host.State)
	return nil
}

// runAPIValidation validates the document via API
func runAPIValidation(ctx context.Context, out io.Writer, data []byte) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	result, err := c.ValidateHost(ctx, data)
	if err != nil {
		return err
	}

	errs := make([]validation.ValidationError, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = validation.ValidationError{Field: e.Field, Message: e.Message, Value: e.Value}
	}
	return printValidation(out, result.Valid, errs)
}

func printValidation(out io.Writer, valid bool, errs []validation.ValidationError) error {
	if valid {
		fmt.Fprintln(out, "✓ Document is valid")
		return nil
	}

	fmt.Fprintln(out, "✗ Validation failed:")
	for _, e := range errs {
		if e.Value != nil {
			fmt.Fprintf(out, "  - %s: %s (value: %v)\n", e.Field, e.Message, e.Value)
		} else {
			fmt.Fprintf(out, "  - %s: %s\n", e.Field, e.Message)
		}
	}

	return fmt.Errorf("validation failed")
}
