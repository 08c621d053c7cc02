// Package cli implements a terminal duplex client: it drives a
// usecases.ClientSession transport (in-process or gRPC), rendering prompts
// and log lines to the user's terminal with lipgloss styling and reading
// answers back from stdin.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

var (
	colorPrimary = lipgloss.Color("#2563eb")
	colorMuted   = lipgloss.Color("#6b7280")
	colorError   = lipgloss.Color("#ef4444")
	colorWarn    = lipgloss.Color("#f59e0b")

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
)

// Terminal drives a ClientSession transport against the process's own
// stdin/stdout: it receives each ScriptMessage, renders it, and for
// request-expecting kinds reads the user's answer and responds.
type Terminal struct {
	Session usecases.ClientSession

	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
}

// NewTerminal builds a Terminal bound to session and the process's own
// stdio.
func NewTerminal(session usecases.ClientSession) *Terminal {
	return &Terminal{
		Session: session,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// Run drives the session until it ends (a completion message, an aborted
// read, or a transport error).
func (t *Terminal) Run(ctx context.Context) error {
	for {
		msg, err := t.Session.Receive(ctx)
		if err != nil {
			return err
		}

		if msg.Kind.IsOneWay() {
			t.print(msg)
			if msg.Kind == usecases.MsgCompleteSuccess || msg.Kind == usecases.MsgCompleteError {
				return nil
			}
			continue
		}

		resp := t.respondTo(msg)
		if err := t.Session.Respond(ctx, resp); err != nil {
			return err
		}
	}
}

func (t *Terminal) print(msg usecases.ScriptMessage) {
	switch msg.Kind {
	case usecases.MsgLogTrace, usecases.MsgLogDebug:
		fmt.Fprintln(t.errOut, mutedStyle.Render("› "+msg.LogMessage))
	case usecases.MsgLogInfo:
		fmt.Fprintln(t.errOut, "ℹ "+msg.LogMessage)
	case usecases.MsgLogWarn:
		fmt.Fprintln(t.errOut, warnStyle.Render("⚠ "+msg.LogMessage))
	case usecases.MsgLogError:
		fmt.Fprintln(t.errOut, errorStyle.Render("✗ "+msg.LogMessage))
	case usecases.MsgPrint:
		fmt.Fprintln(t.out, msg.LogMessage)
	case usecases.MsgDisplay:
		fmt.Fprintln(t.out, promptStyle.Render(msg.LogMessage))
	case usecases.MsgCompleteSuccess:
		fmt.Fprintln(t.out, promptStyle.Render("✓ done"))
	case usecases.MsgCompleteError:
		fmt.Fprintln(t.errOut, errorStyle.Render("✗ "+msg.CompleteErrorMessage))
	}
}

func (t *Terminal) readLine(label string) (string, bool) {
	fmt.Fprint(t.out, promptStyle.Render(label)+" ")
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

// respondTo prompts the user for msg and returns the typed ClientMessage
// answer, treating a blank line as "accept the default" (or "none" when
// there is no default and the prompt is optional).
func (t *Terminal) respondTo(msg usecases.ScriptMessage) usecases.ClientMessage {
	if msg.PromptHelp != "" {
		fmt.Fprintln(t.out, mutedStyle.Render("  "+msg.PromptHelp))
	}
	if len(msg.PromptOptions) > 0 {
		fmt.Fprintln(t.out, mutedStyle.Render("  options: "+strings.Join(msg.PromptOptions, ", ")))
	}

	label := msg.PromptMessage
	if msg.PromptDefault != nil {
		label = fmt.Sprintf("%s [%v]", label, msg.PromptDefault)
	}

	line, ok := t.readLine(label)
	if !ok {
		return usecases.ClientMessage{Kind: usecases.MsgAbort}
	}
	if line == "" {
		if msg.PromptDefault != nil {
			return usecases.ClientMessage{Kind: usecases.MsgNone}
		}
		if msg.PromptOptional {
			return usecases.ClientMessage{Kind: usecases.MsgNone}
		}
	}

	switch msg.Kind {
	case usecases.MsgPromptForInt:
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return usecases.ClientMessage{Kind: usecases.MsgError, ErrorMessage: err.Error()}
		}
		return usecases.ClientMessage{Kind: usecases.MsgInteger, IntegerValue: n}
	case usecases.MsgPromptForBool:
		b, err := strconv.ParseBool(line)
		if err != nil {
			return usecases.ClientMessage{Kind: usecases.MsgError, ErrorMessage: err.Error()}
		}
		return usecases.ClientMessage{Kind: usecases.MsgBoolean, BoolValue: b}
	case usecases.MsgPromptForList, usecases.MsgPromptForMultiSelect:
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return usecases.ClientMessage{Kind: usecases.MsgArray, ArrayValue: parts}
	default:
		return usecases.ClientMessage{Kind: usecases.MsgString, StringValue: line}
	}
}
