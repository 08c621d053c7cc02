package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

type fakeSession struct {
	messages  []usecases.ScriptMessage
	idx       int
	responses []usecases.ClientMessage
}

func (f *fakeSession) Receive(ctx context.Context) (usecases.ScriptMessage, error) {
	if f.idx >= len(f.messages) {
		return usecases.ScriptMessage{}, io.EOF
	}
	m := f.messages[f.idx]
	f.idx++
	return m, nil
}

func (f *fakeSession) Respond(ctx context.Context, msg usecases.ClientMessage) error {
	f.responses = append(f.responses, msg)
	return nil
}

func newTestTerminal(session *fakeSession, input string) *Terminal {
	return &Terminal{
		Session: session,
		in:      bufio.NewScanner(strings.NewReader(input)),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
}

func TestTerminal_Run_PromptTextAndComplete(t *testing.T) {
	session := &fakeSession{messages: []usecases.ScriptMessage{
		{Kind: usecases.MsgPromptForText, PromptMessage: "Name?"},
		{Kind: usecases.MsgCompleteSuccess},
	}}
	term := newTestTerminal(session, "Ada\n")

	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(session.responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(session.responses))
	}
	if session.responses[0].Kind != usecases.MsgString || session.responses[0].StringValue != "Ada" {
		t.Errorf("got %+v", session.responses[0])
	}
}

func TestTerminal_Run_InvalidIntegerReturnsError(t *testing.T) {
	session := &fakeSession{messages: []usecases.ScriptMessage{
		{Kind: usecases.MsgPromptForInt, PromptMessage: "Age?"},
		{Kind: usecases.MsgCompleteSuccess},
	}}
	term := newTestTerminal(session, "notanumber\n")

	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.responses[0].Kind != usecases.MsgError {
		t.Errorf("got %+v, want MsgError", session.responses[0])
	}
}

func TestTerminal_Run_BlankLineWithDefaultReturnsNone(t *testing.T) {
	session := &fakeSession{messages: []usecases.ScriptMessage{
		{Kind: usecases.MsgPromptForText, PromptMessage: "Name?", PromptDefault: "Bob"},
		{Kind: usecases.MsgCompleteSuccess},
	}}
	term := newTestTerminal(session, "\n")

	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.responses[0].Kind != usecases.MsgNone {
		t.Errorf("got %+v, want MsgNone", session.responses[0])
	}
}

func TestTerminal_Run_MultiSelectSplitsOnComma(t *testing.T) {
	session := &fakeSession{messages: []usecases.ScriptMessage{
		{Kind: usecases.MsgPromptForMultiSelect, PromptMessage: "Pick:", PromptOptions: []string{"a", "b", "c"}},
		{Kind: usecases.MsgCompleteSuccess},
	}}
	term := newTestTerminal(session, "a, b\n")

	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := session.responses[0]
	if got.Kind != usecases.MsgArray || len(got.ArrayValue) != 2 || got.ArrayValue[0] != "a" || got.ArrayValue[1] != "b" {
		t.Errorf("got %+v", got)
	}
}

func TestTerminal_Run_ReceiveErrorPropagates(t *testing.T) {
	session := &fakeSession{}
	term := newTestTerminal(session, "")

	if err := term.Run(context.Background()); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}
