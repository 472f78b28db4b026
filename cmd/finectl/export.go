package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/export"
)

var (
	exportFormat    string
	exportOutput    string
	exportOverwrite bool
	exportPretty    bool
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export chart data as CSV or JSON",
	GroupID: "views",
}

var exportFlowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Export the links of the argument flow diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dashboard.FlowRequest{Location: flowLocation, Counterpart: flowCounterpart}
		return withServices(func(ctx context.Context, svc *dashboard.Services) error {
			diagram, err := dashboard.NewFlowFacade(svc).Diagram(ctx, req)
			if err != nil {
				return err
			}
			return writeExport("flow", export.FlowRows(diagram.Graph))
		})
	},
}

var exportCharacterCmd = &cobra.Command{
	Use:   "character <name>",
	Short: "Export the plotted points of a character chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(_ context.Context, svc *dashboard.Services) error {
			chart, err := dashboard.NewChartFacade(svc).CharacterChart(args[0])
			if err != nil {
				return err
			}
			return writeExport(args[0], export.ChartRows(*chart))
		})
	},
}

// writeExport writes rows to the output file, or to stdout when the output is "-".
func writeExport(name string, rows any) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		return export.ToWriter(os.Stdout, format, rows, exportPretty)
	}

	path := exportOutput
	if path == "" {
		path = export.GenerateFilename(name, format)
	}
	exporter := export.NewExporter(export.Options{
		Format:     format,
		FilePath:   path,
		PrettyJSON: exportPretty,
		Overwrite:  exportOverwrite,
	})
	if err := exporter.Export(rows); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportFormat, "format", "f", string(export.FormatCSV), "csv or json")
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout")
	exportCmd.PersistentFlags().BoolVar(&exportOverwrite, "overwrite", false, "replace an existing file")
	exportCmd.PersistentFlags().BoolVar(&exportPretty, "pretty", true, "indent JSON output")

	exportFlowCmd.Flags().StringVar(&flowLocation, "location", "", "only arguments at this location")
	exportFlowCmd.Flags().StringVar(&flowCounterpart, "counterpart", "", "only arguments with this character")

	exportCmd.AddCommand(exportFlowCmd)
	exportCmd.AddCommand(exportCharacterCmd)
}
