package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/fine-dashboard/internal/charts"
	"github.com/ramonehamilton/fine-dashboard/internal/dashboard"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

var (
	renderOutput string
	renderOpen   bool

	flowLocation    string
	flowCounterpart string
	flowHover       string
	flowHoverIndex  int
)

var renderCmd = &cobra.Command{
	Use:     "render",
	Short:   "Render a chart to a standalone HTML file",
	GroupID: "views",
}

var renderFlowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Render the argument flow diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dashboard.FlowRequest{Location: flowLocation, Counterpart: flowCounterpart}
		if flowHover != "" {
			hover, ok := sankey.ParseHover(flowHover, flowHoverIndex)
			if !ok {
				return fmt.Errorf("unknown hover type %q (want node or link)", flowHover)
			}
			req.Hover = hover
		}

		return withServices(func(ctx context.Context, svc *dashboard.Services) error {
			return renderTo(defaultOutput("flow.html"), func(w io.Writer) error {
				return dashboard.NewFlowFacade(svc).RenderHTML(ctx, w, req)
			})
		})
	},
}

var renderCharacterCmd = &cobra.Command{
	Use:   "character <name>",
	Short: "Render the sentence and sentiment chart of a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(_ context.Context, svc *dashboard.Services) error {
			return renderTo(defaultOutput(args[0]+".html"), func(w io.Writer) error {
				return dashboard.NewChartFacade(svc).RenderHTML(w, args[0])
			})
		})
	},
}

func withServices(fn func(context.Context, *dashboard.Services) error) error {
	ctx := context.Background()
	rt, err := dashboard.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.Services)
}

func defaultOutput(name string) string {
	if renderOutput != "" {
		return renderOutput
	}
	return name
}

func renderTo(path string, render func(io.Writer) error) error {
	if err := charts.RenderToFile(path, render); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)

	if renderOpen {
		return charts.OpenInBrowser(path)
	}
	return nil
}

func init() {
	renderCmd.PersistentFlags().StringVarP(&renderOutput, "output", "o", "", "output file")
	renderCmd.PersistentFlags().BoolVar(&renderOpen, "open", false, "open the file in a browser")

	renderFlowCmd.Flags().StringVar(&flowLocation, "location", "", "only arguments at this location")
	renderFlowCmd.Flags().StringVar(&flowCounterpart, "counterpart", "", "only arguments with this character")
	renderFlowCmd.Flags().StringVar(&flowHover, "hover", "", "highlight a node or link")
	renderFlowCmd.Flags().IntVar(&flowHoverIndex, "index", 0, "index of the highlighted element")

	renderCmd.AddCommand(renderFlowCmd)
	renderCmd.AddCommand(renderCharacterCmd)
}
