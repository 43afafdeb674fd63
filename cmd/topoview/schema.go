package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/topoview/internal/analysis"
	"github.com/Mr-Dark-debug/topoview/internal/database"
	"github.com/Mr-Dark-debug/topoview/pkg/jsonutil"
)

// outputSchemas maps each command with --format json to its output schema.
var outputSchemas = map[string]func() *jsonschema.Schema{
	"tables":    generateSchema[tablesOutput],
	"tree":      generateSchema[treeOutput],
	"report":    generateSchema[analysis.Report],
	"snapshots": generateSchema[[]database.SnapshotInfo],
	"show":      generateSchema[snapshotOutput],
}

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func schemaCmd() *cobra.Command {
	names := make([]string, 0, len(outputSchemas))
	for name := range outputSchemas {
		names = append(names, name)
	}
	sort.Strings(names)

	return &cobra.Command{
		Use:       "schema COMMAND",
		Short:     "Print the JSON Schema of a command's --format json output",
		Long:      "Print the JSON Schema of the JSON output of one of: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := outputSchemas[args[0]]
			if !ok {
				return fmt.Errorf("no JSON output for %q (want %s)", args[0], strings.Join(names, "|"))
			}
			return jsonutil.Write(cmd.OutOrStdout(), gen())
		},
	}
}
