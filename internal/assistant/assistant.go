// Package assistant orchestrates a chat turn: augment the query with
// retrieved evidence, call the chat model with the transcript, and record
// the exchange in conversation memory. One turn in flight at a time.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/llm"
	"github.com/ayamoughit/Tp4testMoughit/internal/memory"
	"github.com/ayamoughit/Tp4testMoughit/internal/retrieval"
)

var assistantTracer = otel.Tracer("ragchat.assistant")

var (
	// ErrInvalidConfig indicates invalid assistant configuration.
	ErrInvalidConfig = errors.New("invalid assistant configuration")

	// ErrBusy indicates a turn is already in flight.
	ErrBusy = errors.New("assistant is busy")

	// ErrClosed indicates the session has ended.
	ErrClosed = errors.New("assistant is closed")

	// ErrGenerationFailed indicates the chat model could not produce a reply.
	ErrGenerationFailed = errors.New("generation failed")
)

type state int

const (
	stateIdle state = iota
	stateAwaiting
	stateClosed
)

// Augmenter assembles evidence for a query. Satisfied by
// retrieval.Augmentor.
type Augmenter interface {
	Augment(ctx context.Context, query string) (retrieval.Augmentation, error)
}

// Assistant runs a retrieval-augmented chat session. Memory mutates only
// on a fully successful turn: a failed turn leaves the transcript exactly
// as it was.
type Assistant struct {
	mu    sync.Mutex
	state state

	augmenter Augmenter
	model     llm.ChatModel
	window    *memory.Window
	logger    *zap.Logger
}

// New creates an Assistant.
func New(augmenter Augmenter, model llm.ChatModel, window *memory.Window, logger *zap.Logger) (*Assistant, error) {
	if augmenter == nil {
		return nil, fmt.Errorf("%w: augmenter is required", ErrInvalidConfig)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if window == nil {
		return nil, fmt.Errorf("%w: memory window is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		augmenter: augmenter,
		model:     model,
		window:    window,
		logger:    logger,
	}, nil
}

// Chat runs one turn. Returns ErrBusy while another turn is in flight and
// ErrClosed after Close. On any failure the conversation memory is left
// untouched and the assistant returns to idle.
func (a *Assistant) Chat(ctx context.Context, text string) (string, error) {
	if err := a.begin(); err != nil {
		return "", err
	}
	defer a.end()

	ctx, span := assistantTracer.Start(ctx, "Assistant.Chat")
	defer span.End()

	aug, err := a.augmenter.Augment(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("evidence", len(aug.Results)))
	for _, f := range aug.Failures {
		a.logger.Warn("turn degraded by retriever failure",
			zap.String("route", f.ID),
			zap.Error(f.Err),
		)
	}

	messages := buildMessages(aug, a.window.Snapshot(), text)

	reply, err := a.model.Complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	a.window.Append(llm.RoleUser, text)
	a.window.Append(llm.RoleAssistant, reply)
	return reply, nil
}

// Close ends the session. Idempotent; an in-flight turn completes but
// later calls return ErrClosed.
func (a *Assistant) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = stateClosed
	return nil
}

func (a *Assistant) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case stateClosed:
		return ErrClosed
	case stateAwaiting:
		return ErrBusy
	}
	a.state = stateAwaiting
	return nil
}

func (a *Assistant) end() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateAwaiting {
		a.state = stateIdle
	}
}

// buildMessages assembles the model transcript: a system preamble carrying
// the evidence block, the retained conversation turns, then the new user
// message.
func buildMessages(aug retrieval.Augmentation, turns []memory.Turn, text string) []llm.Message {
	var b strings.Builder
	b.WriteString("You are a helpful assistant. Answer using the evidence below when it is relevant. ")
	b.WriteString("If the evidence does not cover the question, say so instead of guessing.\n\nEvidence:\n")
	if len(aug.Results) == 0 {
		b.WriteString("(none)\n")
	}
	for _, res := range aug.Results {
		fmt.Fprintf(&b, "- [%s] %s\n", res.Source, res.Text)
	}

	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Text: b.String()})
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: turn.Role, Text: turn.Text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Text: text})
	return messages
}
