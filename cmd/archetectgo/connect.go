package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/madstone-tech/archetect-go/internal/adapters/cli"
	"github.com/madstone-tech/archetect-go/internal/adapters/duplex"
)

var connectCmd = &cobra.Command{
	Use:     "connect <address>",
	Short:   "Attach a local terminal to a remote server's render session",
	GroupID: "remote",
	Long: `Connect dials address (host:port, as hosted by "server") and drives the
remote render's prompts and log output with the local terminal, exactly
as if the render were running in this process.`,
	Args:    cobra.ExactArgs(1),
	Example: `  archetectgo connect localhost:8722`,
	RunE:    runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	conn, err := grpc.NewClient(args[0], grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dialing %s: %w", args[0], err)
	}
	defer conn.Close()

	session, err := duplex.DialSession(cmd.Context(), conn)
	if err != nil {
		return fmt.Errorf("opening duplex session with %s: %w", args[0], err)
	}

	term := cli.NewTerminal(session)
	return term.Run(cmd.Context())
}
