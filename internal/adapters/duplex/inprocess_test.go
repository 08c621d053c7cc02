package duplex

import (
	"context"
	"testing"
	"time"

	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

func TestInProcess_RequestResponse(t *testing.T) {
	p := NewInProcess(1)
	driver := p.Driver()
	client := p.ClientSession()

	go func() {
		ctx := context.Background()
		msg, err := client.Receive(ctx)
		if err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		if msg.Kind != usecases.MsgPromptForText {
			t.Errorf("Kind = %v, want MsgPromptForText", msg.Kind)
		}
		if err := client.Respond(ctx, usecases.ClientMessage{Kind: usecases.MsgString, StringValue: "hello"}); err != nil {
			t.Errorf("Respond: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := driver.Request(ctx, usecases.ScriptMessage{Kind: usecases.MsgPromptForText, PromptMessage: "name?"})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if resp.StringValue != "hello" {
		t.Errorf("StringValue = %q, want %q", resp.StringValue, "hello")
	}
}

func TestInProcess_NotifyDoesNotBlockOnResponse(t *testing.T) {
	p := NewInProcess(1)
	driver := p.Driver()
	client := p.ClientSession()

	ctx := context.Background()
	if err := driver.Notify(ctx, usecases.ScriptMessage{Kind: usecases.MsgLogInfo, LogMessage: "hi"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	msg, err := client.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if msg.Kind != usecases.MsgLogInfo || msg.LogMessage != "hi" {
		t.Errorf("got %+v", msg)
	}
}

func TestInProcess_CloseUnblocksPendingCalls(t *testing.T) {
	p := NewInProcess(1)
	driver := p.Driver()

	done := make(chan error, 1)
	go func() {
		_, err := driver.Request(context.Background(), usecases.ScriptMessage{Kind: usecases.MsgPromptForBool})
		done <- err
	}()

	// Give driver.Request time to queue its message and block awaiting a
	// response, then close the pair without a client ever responding.
	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error after Close, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("Request never unblocked after Close")
	}
}
