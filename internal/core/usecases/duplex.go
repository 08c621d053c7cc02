package usecases

import "context"

// ScriptMessage is the engine→client half of the duplex protocol.
// Kind disambiguates which group of fields below is meaningful.
type ScriptMessage struct {
	Kind ScriptMessageKind

	// Prompt* fields populate the PromptFor* variants.
	PromptMessage string
	PromptKey     string
	PromptDefault any
	PromptHelp    string
	PromptPlaceholder string
	PromptOptional bool
	PromptMin      *int64
	PromptMax      *int64
	PromptMinItems int
	PromptMaxItems int
	PromptOptions  []string
	PromptPageSize int

	// LogMessage populates the Log* and Print/Display variants.
	LogMessage string

	// CompleteErrorMessage populates CompleteError.
	CompleteErrorMessage string
}

// ScriptMessageKind enumerates the ScriptMessage variants.
type ScriptMessageKind string

const (
	MsgPromptForText         ScriptMessageKind = "PromptForText"
	MsgPromptForInt          ScriptMessageKind = "PromptForInt"
	MsgPromptForBool         ScriptMessageKind = "PromptForBool"
	MsgPromptForList         ScriptMessageKind = "PromptForList"
	MsgPromptForSelect       ScriptMessageKind = "PromptForSelect"
	MsgPromptForMultiSelect  ScriptMessageKind = "PromptForMultiSelect"
	MsgPromptForEditor       ScriptMessageKind = "PromptForEditor"
	MsgLogTrace              ScriptMessageKind = "LogTrace"
	MsgLogDebug              ScriptMessageKind = "LogDebug"
	MsgLogInfo               ScriptMessageKind = "LogInfo"
	MsgLogWarn               ScriptMessageKind = "LogWarn"
	MsgLogError              ScriptMessageKind = "LogError"
	MsgPrint                 ScriptMessageKind = "Print"
	MsgDisplay               ScriptMessageKind = "Display"
	MsgCompleteSuccess       ScriptMessageKind = "CompleteSuccess"
	MsgCompleteError         ScriptMessageKind = "CompleteError"
)

// IsOneWay reports whether a ScriptMessageKind expects no ClientMessage
// response (log/print/display/completion variants).
func (k ScriptMessageKind) IsOneWay() bool {
	switch k {
	case MsgLogTrace, MsgLogDebug, MsgLogInfo, MsgLogWarn, MsgLogError, MsgPrint, MsgDisplay, MsgCompleteSuccess, MsgCompleteError:
		return true
	default:
		return false
	}
}

// ClientMessage is the client→engine half of the duplex protocol.
type ClientMessage struct {
	Kind ClientMessageKind

	StringValue  string
	IntegerValue int64
	BoolValue    bool
	ArrayValue   []string
	ErrorMessage string

	// Initialize-only fields. Neither the in-process pair nor the gRPC
	// transport sends or reads an Initialize message.
	InitAnswersYAML    string
	InitSwitches       []string
	InitUseDefaults    []string
	InitUseDefaultsAll bool
	InitDestination    string
}

// ClientMessageKind enumerates the ClientMessage variants.
type ClientMessageKind string

const (
	MsgInitialize ClientMessageKind = "Initialize"
	MsgString     ClientMessageKind = "String"
	MsgInteger    ClientMessageKind = "Integer"
	MsgBoolean    ClientMessageKind = "Boolean"
	MsgArray      ClientMessageKind = "Array"
	MsgNone       ClientMessageKind = "None"
	MsgError      ClientMessageKind = "Error"
	MsgAbort      ClientMessageKind = "Abort"
	MsgAck        ClientMessageKind = "Ack"
)

// Driver is the duplex I/O abstraction: the script side only gets
// send-request + receive-response + one-way log/print, never raw channels.
type Driver interface {
	// Request sends a ScriptMessage that expects a ClientMessage response
	// and blocks until it arrives. Calling Request with a one-way Kind is a
	// programming error.
	Request(ctx context.Context, msg ScriptMessage) (ClientMessage, error)

	// Notify sends a one-way ScriptMessage (log/print/display/completion);
	// it does not block for a response.
	Notify(ctx context.Context, msg ScriptMessage) error
}

// ClientSession is the client-side half of the duplex abstraction: receive a
// request, send a response. A terminal UI or RPC demuxer implements this.
type ClientSession interface {
	// Receive blocks until the next ScriptMessage is available, or returns
	// an error (including io.EOF-equivalent session end).
	Receive(ctx context.Context) (ScriptMessage, error)

	// Respond sends a ClientMessage in answer to the most recently received
	// request. Must not be called in response to a one-way message.
	Respond(ctx context.Context, msg ClientMessage) error
}
