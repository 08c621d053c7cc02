package duplex

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"

	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

const (
	serviceName = "archetect.duplex.Duplex"
	methodName  = "Session"
)

// ServiceDesc is the hand-authored grpc.ServiceDesc for the duplex
// bidirectional-streaming service. Registering jsonCodec lets
// usecases.ScriptMessage and usecases.ClientMessage travel the wire as
// plain JSON frames, so no protoc-generated stub is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*sessionServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    methodName,
			Handler:       sessionHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "duplex.proto",
}

// sessionServer is the interface ServiceDesc dispatches to; GRPCServer is
// the sole implementation.
type sessionServer interface {
	Session(grpc.ServerStream) error
}

func sessionHandler(srv any, stream grpc.ServerStream) error {
	return srv.(sessionServer).Session(stream)
}

// GRPCServer bridges a usecases.Driver onto a single incoming duplex
// stream. Exactly one remote client may be connected at a time; Session
// blocks for the stream's lifetime, pumping queued ScriptMessages out and
// feeding each non-one-way reply back to whichever goroutine is blocked in
// Request.
type GRPCServer struct {
	toClient   chan usecases.ScriptMessage
	fromClient chan usecases.ClientMessage
}

// NewGRPCServer builds a duplex server bridge with a modestly buffered
// outbound queue so a burst of log Notify calls never stalls the script
// engine waiting on a slow network client.
func NewGRPCServer() *GRPCServer {
	return &GRPCServer{
		toClient:   make(chan usecases.ScriptMessage, 8),
		fromClient: make(chan usecases.ClientMessage, 1),
	}
}

// Driver returns the script-facing side of this bridge.
func (s *GRPCServer) Driver() usecases.Driver { return (*grpcDriverSide)(s) }

// Session implements sessionServer.
func (s *GRPCServer) Session(stream grpc.ServerStream) error {
	ctx := stream.Context()
	for {
		select {
		case msg := <-s.toClient:
			if err := stream.SendMsg(&msg); err != nil {
				return err
			}
			if msg.Kind.IsOneWay() {
				continue
			}
			var resp usecases.ClientMessage
			if err := stream.RecvMsg(&resp); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			select {
			case s.fromClient <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type grpcDriverSide GRPCServer

func (d *grpcDriverSide) Request(ctx context.Context, msg usecases.ScriptMessage) (usecases.ClientMessage, error) {
	s := (*GRPCServer)(d)
	select {
	case s.toClient <- msg:
	case <-ctx.Done():
		return usecases.ClientMessage{}, ctx.Err()
	}
	select {
	case resp := <-s.fromClient:
		return resp, nil
	case <-ctx.Done():
		return usecases.ClientMessage{}, ctx.Err()
	}
}

func (d *grpcDriverSide) Notify(ctx context.Context, msg usecases.ScriptMessage) error {
	s := (*GRPCServer)(d)
	select {
	case s.toClient <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GRPCClient dials a duplex server and implements usecases.ClientSession by
// translating Session stream frames to Receive/Respond calls.
type GRPCClient struct {
	stream grpc.ClientStream
}

// DialSession opens the duplex Session stream against an established
// connection, using the JSON codec registered in codec.go.
func DialSession(ctx context.Context, conn grpc.ClientConnInterface) (*GRPCClient, error) {
	desc := &grpc.StreamDesc{
		StreamName:    methodName,
		ServerStreams: true,
		ClientStreams: true,
	}
	fullMethod := fmt.Sprintf("/%s/%s", serviceName, methodName)
	stream, err := conn.NewStream(ctx, desc, fullMethod, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	return &GRPCClient{stream: stream}, nil
}

func (c *GRPCClient) Receive(ctx context.Context) (usecases.ScriptMessage, error) {
	var msg usecases.ScriptMessage
	if err := c.stream.RecvMsg(&msg); err != nil {
		return usecases.ScriptMessage{}, err
	}
	return msg, nil
}

func (c *GRPCClient) Respond(ctx context.Context, msg usecases.ClientMessage) error {
	return c.stream.SendMsg(&msg)
}
