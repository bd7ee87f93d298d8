package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/playsuper/sdk-go/internal/flags"
)

// flagRow is the CLI view of one flag definition.
type flagRow struct {
	Key          string   `json:"key" yaml:"key"`
	DefaultValue string   `json:"defaultValue" yaml:"defaultValue"`
	Rules        int      `json:"rules" yaml:"rules"`
	RuleIDs      []string `json:"ruleIds,omitempty" yaml:"ruleIds,omitempty"`
}

func buildRows(doc *flags.Document) []flagRow {
	rows := make([]flagRow, 0, len(doc.Features))
	for key, def := range doc.Features {
		row := flagRow{Key: key, DefaultValue: def.DefaultValue, Rules: len(def.Rules)}
		for _, r := range def.Rules {
			row.RuleIDs = append(row.RuleIDs, r.ID)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func printRows(rows []flagRow) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string][]flagRow{"flags": rows})
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(rows)
	case "table":
		return printTable(rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTable(rows []flagRow) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Key", "Default", "Rules")

	for _, row := range rows {
		def := row.DefaultValue
		if len(def) > 40 {
			def = def[:37] + "..."
		}
		table.Append(row.Key, def, fmt.Sprintf("%d", row.Rules))
	}

	return table.Render()
}
