package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/marmos91/appfx/pkg/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for configuration",
	Long: `Generate a JSON schema for the appfx configuration file, for IDE
completion and validation of config.yaml.

Examples:
  # Print schema to stdout
  appfx config schema

  # Save schema to file
  appfx config schema --output config.schema.json`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")
}

// Schema returns the JSON schema of config.Config.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "appfx Configuration"
	schema.Description = "Configuration schema for the appfx application host"

	return json.MarshalIndent(schema, "", "  ")
}

func runSchema(cmd *cobra.Command, args []string) error {
	schemaJSON, err := Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(schemaJSON))
	return nil
}
