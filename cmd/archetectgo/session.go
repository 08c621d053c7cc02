package main

import (
	"context"

	"github.com/madstone-tech/archetect-go/internal/adapters/cli"
	"github.com/madstone-tech/archetect-go/internal/adapters/duplex"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// withTerminal runs fn against an in-process Driver whose other half is
// driven by a Terminal reading/writing the process's own stdio. fn's
// success or failure is reported to the terminal as a completion message
// before the session is torn down.
func withTerminal(ctx context.Context, fn func(ctx context.Context, driver usecases.Driver) error) error {
	pair := duplex.NewInProcess(1)
	defer pair.Close()

	term := cli.NewTerminal(pair.ClientSession())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx) }()

	err := fn(ctx, pair.Driver())

	complete := usecases.ScriptMessage{Kind: usecases.MsgCompleteSuccess}
	if err != nil {
		complete = usecases.ScriptMessage{Kind: usecases.MsgCompleteError, CompleteErrorMessage: err.Error()}
	}
	_ = pair.Driver().Notify(ctx, complete)
	<-done

	return err
}
