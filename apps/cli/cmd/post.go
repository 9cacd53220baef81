package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rawnet/httpc/packages/executor"
	"github.com/rawnet/httpc/packages/message"
)

var (
	dataFlag   string
	schemaFlag string
)

var postCmd = &cobra.Command{
	Use:   "post URL",
	Short: "Execute an HTTP POST request",
	Long: `Execute a single HTTP POST request over raw sockets. POST never
follows redirects.

The -d value is sent as application/json: a form string like a=1&b=2
is re-encoded as {"a":"1","b":"2"}, a value naming an existing file is
replaced by that file's contents, and anything else is sent as literal
JSON text.

Examples:
  # Form-style data, re-encoded as JSON
  httpc post -d "name=alex&role=dev" http://example.com/users

  # Literal JSON
  httpc post -d '{"name":"alex"}' http://example.com/users

  # Body from a file, validated against a schema first
  httpc post -d payload.json --schema user.schema.json http://example.com/users`,
	Args: cobra.ExactArgs(1),
	RunE: postCommand,
}

func init() {
	addCommonFlags(postCmd)
	postCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "POST body: form string, literal JSON, or path to a JSON file")
	postCmd.Flags().StringVar(&schemaFlag, "schema", "", "Validate the JSON body against this JSON Schema before sending")
}

func postCommand(cmd *cobra.Command, args []string) error {
	if schemaFlag != "" {
		body, _, err := message.PrepareBody(dataFlag)
		if err != nil {
			return usageError{err}
		}
		if err := message.ValidateSchema(body, schemaFlag); err != nil {
			return usageError{err}
		}
	}

	return runBatch(cmd, executor.MethodPost, args, dataFlag)
}
