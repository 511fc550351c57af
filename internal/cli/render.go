package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"query-genie/internal/apis/dtos"
	"query-genie/pkg/envelope"
)

// FormatEnvelope renders an envelope for the terminal.
func FormatEnvelope(env envelope.Envelope) (string, error) {
	switch env.Type() {
	case envelope.TypeSelect:
		return formatSelect(env.Select)
	case envelope.TypeStatus:
		return pterm.Success.Sprintln(env.Status.Message), nil
	case envelope.TypeConfirmationRequired:
		return formatConfirmation(env.Confirmation, nil)
	default:
		return pterm.Error.Sprintln(env.Error.Message), nil
	}
}

// FormatAskResult renders the statement followed by its outcome.
func FormatAskResult(result *AskResult) (string, error) {
	var b strings.Builder
	if result.SQL != "" && result.Envelope.Type() != envelope.TypeConfirmationRequired {
		b.WriteString(pterm.NewStyle(pterm.FgLightCyan).Sprint("SQL: "))
		b.WriteString(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(result.SQL))
		b.WriteString("\n\n")
	}

	var body string
	var err error
	if result.Envelope.Type() == envelope.TypeConfirmationRequired {
		body, err = formatConfirmation(result.Envelope.Confirmation, result.Statement)
	} else {
		body, err = FormatEnvelope(result.Envelope)
	}
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	return b.String(), nil
}

func formatSelect(sel *envelope.Select) (string, error) {
	if len(sel.Columns) == 0 {
		return pterm.Info.Sprintln("Query returned no columns."), nil
	}

	data := pterm.TableData{sel.Columns}
	data = append(data, sel.Rows...)
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	noun := "rows"
	if sel.RowCount == 1 {
		noun = "row"
	}
	return table + "\n" + pterm.Info.Sprintfln("%d %s", sel.RowCount, noun), nil
}

func formatConfirmation(conf *envelope.ConfirmationRequired, info *dtos.StatementInfo) (string, error) {
	var b strings.Builder
	b.WriteString(pterm.Warning.Sprintln("This statement needs confirmation before it runs."))
	b.WriteString(pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Pending SQL")).
		Sprint(conf.SQL))
	b.WriteString("\n")

	data := pterm.TableData{conf.Preview.Columns}
	data = append(data, conf.Preview.Data...)
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	b.WriteString(table)
	b.WriteString("\n")

	if info != nil && len(info.Warning) > 0 {
		items := make([]pterm.BulletListItem, 0, len(info.Warning))
		for _, w := range info.Warning {
			items = append(items, pterm.BulletListItem{Level: 0, Text: w})
		}
		list, err := pterm.DefaultBulletList.WithItems(items).Srender()
		if err != nil {
			return "", fmt.Errorf("failed to render warnings: %w", err)
		}
		b.WriteString(list)
	}
	return b.String(), nil
}
