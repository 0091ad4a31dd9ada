package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/restcall/packages/rest"
	"github.com/abdul-hamid-achik/restcall/packages/schema"
)

var (
	validateFileFlag   string
	validateSchemaFlag string
	validateTestFlag   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Issue a call and validate the response body against a JSON Schema",
	Long: `Issue the call described by a YAML request file and validate the
response body against a JSON Schema document. Exits non-zero when the
body does not conform, when the reply is empty, or when the call fails.

Examples:
  restcall validate -f widget.yaml --schema widget.schema.json`,
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFileFlag, "file", "f", "", "YAML request file (required)")
	validateCmd.Flags().StringVar(&validateSchemaFlag, "schema", "", "JSON Schema file (required)")
	validateCmd.Flags().BoolVar(&validateTestFlag, "test", false, "Use http instead of https")

	_ = validateCmd.MarkFlagRequired("file")
	_ = validateCmd.MarkFlagRequired("schema")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rf, err := loadRequestFile(validateFileFlag)
	if err != nil {
		return err
	}
	req := rf.toRequest(cfg)

	client := rest.NewClient(rest.WithTest(validateTestFlag || cfg.GetTest()))
	defer client.Close()

	reply, err := client.API(req)
	if err != nil {
		return err
	}
	if reply.Empty {
		return fmt.Errorf("cannot validate an empty reply")
	}

	result, err := schema.ValidateFile([]byte(reply.Response.Body), validateSchemaFlag)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("schema validation failed: %s", result.Summary())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Response body conforms to %s (HTTP %d)\n",
		validateSchemaFlag, reply.Response.StatusCode)
	return nil
}
