// Package duplex implements the bidirectional script/client transport: a
// script-side Driver and a client-side ClientSession, bridged either by a
// pair of bounded channels within a single process or by a gRPC bidi stream.
package duplex

import (
	"context"
	"sync"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// InProcess is a Driver/ClientSession pair connected by bounded channels,
// used when the script engine and the terminal client share a process.
type InProcess struct {
	toClient   chan usecases.ScriptMessage
	fromClient chan usecases.ClientMessage
	closeOnce  sync.Once
	done       chan struct{}
}

// NewInProcess builds a connected Driver/ClientSession pair. bufSize sizes
// the script→client channel (values below 1 become 1); 1 is sufficient for
// the strictly request/response protocol, but a larger buffer lets Notify
// calls (logs) queue ahead of a slow client. The client→script channel
// always holds one message.
func NewInProcess(bufSize int) *InProcess {
	if bufSize < 1 {
		bufSize = 1
	}
	return &InProcess{
		toClient:   make(chan usecases.ScriptMessage, bufSize),
		fromClient: make(chan usecases.ClientMessage, 1),
		done:       make(chan struct{}),
	}
}

// Driver returns the script-facing half of this pair.
func (p *InProcess) Driver() usecases.Driver { return (*driverSide)(p) }

// ClientSession returns the client-facing half of this pair.
func (p *InProcess) ClientSession() usecases.ClientSession { return (*clientSide)(p) }

// Close unblocks any pending Request/Receive calls with ErrClientDisconnected.
func (p *InProcess) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

type driverSide InProcess

func (d *driverSide) Request(ctx context.Context, msg usecases.ScriptMessage) (usecases.ClientMessage, error) {
	p := (*InProcess)(d)
	select {
	case p.toClient <- msg:
	case <-ctx.Done():
		return usecases.ClientMessage{}, ctx.Err()
	case <-p.done:
		return usecases.ClientMessage{}, entities.ErrClientDisconnected
	}

	select {
	case resp := <-p.fromClient:
		return resp, nil
	case <-ctx.Done():
		return usecases.ClientMessage{}, ctx.Err()
	case <-p.done:
		return usecases.ClientMessage{}, entities.ErrClientDisconnected
	}
}

func (d *driverSide) Notify(ctx context.Context, msg usecases.ScriptMessage) error {
	p := (*InProcess)(d)
	select {
	case p.toClient <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return entities.ErrClientDisconnected
	}
}

type clientSide InProcess

func (c *clientSide) Receive(ctx context.Context) (usecases.ScriptMessage, error) {
	p := (*InProcess)(c)
	select {
	case msg := <-p.toClient:
		return msg, nil
	case <-ctx.Done():
		return usecases.ScriptMessage{}, ctx.Err()
	case <-p.done:
		return usecases.ScriptMessage{}, entities.ErrScriptChannelClosed
	}
}

func (c *clientSide) Respond(ctx context.Context, msg usecases.ClientMessage) error {
	p := (*InProcess)(c)
	select {
	case p.fromClient <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return entities.ErrClientDisconnected
	}
}
