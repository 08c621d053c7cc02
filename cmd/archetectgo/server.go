package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/madstone-tech/archetect-go/internal/adapters/duplex"
)

var serverCmd = &cobra.Command{
	Use:     "server <location>",
	Short:   "Host an archetype render session for a remote connect client",
	GroupID: "remote",
	Long: `Server resolves and renders location the same as "render", but drives
its prompts and log output over a gRPC duplex stream instead of the local
terminal, blocking until a single remote "connect" client attaches and
answers them.`,
	Args: cobra.ExactArgs(1),
	Example: `  archetectgo server ./my-archetype --listen :8722
  archetectgo connect localhost:8722`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	registerRenderFlags(serverCmd)
	serverCmd.Flags().String("listen", ":8722", "address to listen on")
}

func runServer(cmd *cobra.Command, args []string) error {
	opts, err := renderOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	listen, _ := cmd.Flags().GetString("listen")

	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}
	defer lis.Close()

	bridge := duplex.NewGRPCServer()
	grpcServer := grpc.NewServer()
	grpcServer.RegisterService(&duplex.ServiceDesc, bridge)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()

	fmt.Fprintf(cmd.OutOrStdout(), "waiting for a duplex client on %s\n", lis.Addr())

	renderErr := c.RenderArchetype(cmd.Context(), args[0], bridge.Driver(), opts)

	grpcServer.GracefulStop()
	<-serveErr

	return renderErr
}
