package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/fivetwenty-io/restverb/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVerbCommands creates one subcommand per supported verb.
func NewVerbCommands() []*cobra.Command {
	verbs := rest.Verbs()

	commands := make([]*cobra.Command, 0, len(verbs))
	for _, verb := range verbs {
		commands = append(commands, newVerbCommand(verb))
	}

	return commands
}

func newVerbCommand(verb rest.Verb) *cobra.Command {
	var (
		params  []string
		headers []string
		data    string
	)

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s ENDPOINT [SEGMENT...]", verb),
		Short: fmt.Sprintf("Send a %s request", verb.Method()),
		Long: fmt.Sprintf(`Send a %s request to {scheme}://{host}:{port}{prefix}/ENDPOINT/SEGMENT...

Segments and query parameters are percent-encoded individually.`, verb.Method()),
		Example: fmt.Sprintf("  restverb %s users 42 -p fields=name", verb),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildCallOptions(args[1:], params, headers, data)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			client, cleanup, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			call, err := client.Method(string(verb))
			if err != nil {
				return err
			}

			resp, err := call(ctx, args[0], opts...)

			return writeResult(cmd, resp, err)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra request header as key=value (repeatable)")

	if verb.HasBody() {
		cmd.Flags().StringVarP(&data, "data", "d", "", "request body; @FILE reads the body from a file")
	}

	return cmd
}

// NewQueryCommand creates the query command, the string-verb escape hatch.
func NewQueryCommand() *cobra.Command {
	var (
		params []string
		data   string
	)

	cmd := &cobra.Command{
		Use:   "query VERB ENDPOINT",
		Short: "Send a request with the verb given as an argument",
		Long:  "Send a request whose verb is chosen at run time. An empty VERB (\"\") sends GET.",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			queryParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			body, err := readBody(data)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			client, cleanup, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var payload interface{}
			if body != "" {
				payload = body
			}

			resp, err := client.Query(ctx, args[1], args[0], payload, queryParams)

			return writeResult(cmd, resp, err)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body; @FILE reads the body from a file")

	return cmd
}

func buildCallOptions(segments, params, headers []string, data string) ([]rest.CallOption, error) {
	queryParams, err := parseKeyValues(params)
	if err != nil {
		return nil, err
	}

	headerValues, err := parseKeyValues(headers)
	if err != nil {
		return nil, err
	}

	body, err := readBody(data)
	if err != nil {
		return nil, err
	}

	opts := []rest.CallOption{
		rest.WithSegments(segments...),
		rest.WithParams(queryParams),
	}

	for key, value := range headerValues {
		opts = append(opts, rest.WithHeader(key, fmt.Sprint(value)))
	}

	if body != "" {
		opts = append(opts, rest.WithBody(body))
	}

	return opts, nil
}

// parseKeyValues parses "key=value" pairs. Later keys win.
func parseKeyValues(pairs []string) (rest.Params, error) {
	params := make(rest.Params, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParameter, pair)
		}

		params[strings.TrimSpace(key)] = value
	}

	return params, nil
}

func readBody(data string) (string, error) {
	path, isFile := strings.CutPrefix(data, "@")
	if !isFile {
		return data, nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // path supplied by the user on purpose
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}

	return string(content), nil
}

// writeResult renders resp (the sentinel record included) and returns err.
func writeResult(cmd *cobra.Command, resp *rest.Response, err error) error {
	if resp == nil {
		return err
	}

	renderErr := renderResponse(cmd.OutOrStdout(), resp, viper.GetString("output"))
	if err != nil {
		return err
	}

	return renderErr
}
