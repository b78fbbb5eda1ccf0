package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/fivetwenty-io/restverb/pkg/rest"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// property is one row of the Property/Value table.
type property struct {
	name  string
	value string
}

// render writes view as JSON or YAML, or rows as a Property/Value table.
func render(out io.Writer, format string, view interface{}, rows []property) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(view)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(view)
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")

		for _, row := range rows {
			_ = table.Append(row.name, row.value)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputType, format)
	}
}

type responseView struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	OK         bool   `json:"ok"          yaml:"ok"`
	Duration   string `json:"duration"    yaml:"duration"`
	Data       string `json:"data"        yaml:"data"`
}

func renderResponse(out io.Writer, resp *rest.Response, format string) error {
	view := responseView{
		StatusCode: resp.StatusCode,
		OK:         resp.OK,
		Duration:   resp.Duration.String(),
		Data:       resp.Data,
	}

	status := strconv.Itoa(view.StatusCode)
	if resp.TransportFailed() {
		status = constants.NotAvailable
	}

	return render(out, format, view, []property{
		{"Status", status},
		{"OK", strconv.FormatBool(view.OK)},
		{"Duration", view.Duration},
		{"Data", view.Data},
	})
}
