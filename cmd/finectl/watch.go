package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/fine-dashboard/internal/ipc"
)

var (
	watchAddr      string
	watchReconnect bool
)

var watchCmd = &cobra.Command{
	Use:     "watch <session>",
	Short:   "Follow the live progress events of a dashboard session",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := watchAddr
		if addr == "" {
			addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}
		wsURL, err := ipc.StreamURL(addr, args[0])
		if err != nil {
			return err
		}

		client := ipc.NewClient(wsURL, ipc.WithReconnect(watchReconnect, 0))
		client.On(ipc.AnyEvent, func(e ipc.Event) {
			if jsonOutput {
				_ = printJSON(e)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatEvent(e))
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return client.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "", "dashboard address (default http://localhost:<server.port>)")
	watchCmd.Flags().BoolVar(&watchReconnect, "reconnect", true, "reconnect when the connection drops")
}
