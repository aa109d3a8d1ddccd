package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kittclouds/noteagent/internal/llm"
	"github.com/kittclouds/noteagent/internal/store"
	"github.com/kittclouds/noteagent/pkg/action"
	"github.com/kittclouds/noteagent/pkg/brief"
	"github.com/kittclouds/noteagent/pkg/lexical"
	"github.com/kittclouds/noteagent/pkg/tags"
)

// degradedReply is returned to the UI when the reply channel is gone.
// Channel failure is a degraded textual reply, never a crash.
const degradedReply = "Failed to receive reply"

// ChatContext carries the document state for one turn. Cursor indexes the
// root's top-level children and may equal their count (cursor past the end).
type ChatContext struct {
	Note   *lexical.Note
	Cursor int
}

// Turn is one UI request: the current document state plus the user message.
type Turn struct {
	Context ChatContext
	Message string
}

// TurnResult is the agent's answer: the decoded action and the raw reply it
// was decoded from. Consumed immediately by the caller; not retained.
type TurnResult struct {
	Action action.Action
	Raw    string
}

type turnResponse struct {
	result *TurnResult
	err    error
}

// Source is the agent-side end of the chat channel pair.
type Source struct {
	turns   chan Turn
	replies chan turnResponse
}

// Handler is the UI-side end of the chat channel pair.
type Handler struct {
	turns   chan Turn
	replies chan turnResponse
}

// NewChat creates a connected Source/Handler pair. Both channels have
// capacity one: the expected usage is a single turn in flight.
func NewChat() (*Source, *Handler) {
	turns := make(chan Turn, 1)
	replies := make(chan turnResponse, 1)
	return &Source{turns: turns, replies: replies},
		&Handler{turns: turns, replies: replies}
}

// Chat sends a turn to the agent and waits for its answer. A closed reply
// channel degrades to a textual reply rather than an error.
func (h *Handler) Chat(ctx context.Context, turn Turn) (*TurnResult, error) {
	select {
	case h.turns <- turn:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp, ok := <-h.replies:
		if !ok {
			return &TurnResult{Action: action.Reply{Content: degradedReply}, Raw: degradedReply}, nil
		}
		return resp.result, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Strategy decides how a turn is answered: project the document, assemble
// the prompt, complete, parse. It owns the rolling conversation history.
type Strategy struct {
	client        llm.Client
	store         store.Storer
	threadID      string
	history       []llm.Message
	historyBudget int

	// dictMu guards dict: the UI swaps the dictionary per document while
	// the agent goroutine may be mid-turn.
	dictMu sync.RWMutex
	dict   *tags.Dictionary
}

// NewStrategy creates a strategy around a completion client.
func NewStrategy(client llm.Client) *Strategy {
	return &Strategy{
		client:        client,
		historyBudget: DefaultHistoryBudget,
	}
}

// SetDictionary installs the tag dictionary used for related-tag context.
// Safe to call while a turn is in flight; the new dictionary applies from
// the next prompt assembly.
func (s *Strategy) SetDictionary(dict *tags.Dictionary) {
	s.dictMu.Lock()
	s.dict = dict
	s.dictMu.Unlock()
}

func (s *Strategy) dictionary() *tags.Dictionary {
	s.dictMu.RLock()
	defer s.dictMu.RUnlock()
	return s.dict
}

// SetStore enables persistence of conversation turns to a thread.
func (s *Strategy) SetStore(st store.Storer, threadID string) {
	s.store = st
	s.threadID = threadID
}

// SetHistoryBudget overrides the token budget for carried history.
func (s *Strategy) SetHistoryBudget(budget int) {
	s.historyBudget = budget
}

// Deliberate answers one turn. Parse failures propagate to the caller,
// which surfaces them back into the conversation as a correction request;
// nothing is retried here.
func (s *Strategy) Deliberate(ctx context.Context, turn Turn) (*TurnResult, error) {
	if turn.Context.Note == nil {
		return nil, errors.New("agent: turn has no document")
	}

	entries := brief.Project(&turn.Context.Note.LexicalState.Root)
	system := BuildSystemPrompt(entries, turn.Context.Cursor) + relatedTagsBlock(s.dictionary(), turn.Message)

	history := TrimToBudget(s.history, s.historyBudget)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: turn.Message})

	raw, err := s.client.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("agent: completion failed: %w", err)
	}

	act, err := action.Parse(raw)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: turn.Message},
		llm.Message{Role: llm.RoleAssistant, Content: raw},
	)
	s.recordTurn(turn.Message, raw)

	return &TurnResult{Action: act, Raw: raw}, nil
}

// recordTurn persists the exchange when a store is attached. Persistence
// failure does not fail the turn.
func (s *Strategy) recordTurn(userText, replyText string) {
	if s.store == nil {
		return
	}
	now := time.Now().Unix()
	if err := s.store.AddMessage(&store.ChatMessage{
		ThreadID:  s.threadID,
		Role:      llm.RoleUser,
		Content:   userText,
		CreatedAt: now,
	}); err != nil {
		println("[NoteAgent] failed to record user turn:", err.Error())
		return
	}
	if err := s.store.AddMessage(&store.ChatMessage{
		ThreadID:  s.threadID,
		Role:      llm.RoleAssistant,
		Content:   replyText,
		CreatedAt: now,
	}); err != nil {
		println("[NoteAgent] failed to record reply:", err.Error())
	}
}

// Agent consumes turns from its source until the context ends.
type Agent struct {
	strategy *Strategy
	source   *Source
}

// New wires a strategy to a fresh channel pair and returns the UI handler.
func New(strategy *Strategy) (*Agent, *Handler) {
	source, handler := NewChat()
	return &Agent{strategy: strategy, source: source}, handler
}

// Run processes turns one at a time. It returns when ctx is cancelled;
// per-turn errors are delivered to the handler, not fatal to the loop.
func (a *Agent) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(a.source.replies)
			return
		case turn := <-a.source.turns:
			result, err := a.strategy.Deliberate(ctx, turn)
			select {
			case a.source.replies <- turnResponse{result: result, err: err}:
			case <-ctx.Done():
				close(a.source.replies)
				return
			}
		}
	}
}
