//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/indexeddb"
	"github.com/kittclouds/noteagent/internal/agent"
	"github.com/kittclouds/noteagent/internal/llm"
	"github.com/kittclouds/noteagent/internal/store"
	"github.com/kittclouds/noteagent/pkg/action"
	"github.com/kittclouds/noteagent/pkg/brief"
	"github.com/kittclouds/noteagent/pkg/lexical"
	"github.com/kittclouds/noteagent/pkg/vector"
)

// Version info
const Version = "0.1.0"

// Global state
var (
	strategy    *agent.Strategy
	handler     *agent.Handler
	agentCancel context.CancelFunc
	noteStore   store.Storer
	vectorStore *vector.Store
)

func main() {
	println("[NoteAgent] WASM Ready v" + Version)

	js.Global().Set("NoteAgent", js.ValueOf(map[string]interface{}{
		"version":      js.FuncOf(getVersion),
		"start":        js.FuncOf(start),
		"stop":         js.FuncOf(stop),
		"sendChat":     js.FuncOf(sendChat),
		"projectBrief": js.FuncOf(projectBrief),
		"parseAction":  js.FuncOf(parseAction),
		// Note store API
		"initStore":  js.FuncOf(initStore),
		"upsertNote": js.FuncOf(upsertNote),
		"getNote":    js.FuncOf(getNote),
		"listNotes":  js.FuncOf(listNotes),
		"deleteNote": js.FuncOf(deleteNote),
		// Vector store API
		"initVectors":   js.FuncOf(initVectors),
		"addVector":     js.FuncOf(addVector),
		"searchVectors": js.FuncOf(searchVectors),
		"saveVectors":   js.FuncOf(saveVectors),
	}))

	select {}
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// start boots the agent loop with an API token.
// Args: [jwt string, baseURL string (optional)]
func start(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: jwt (string)")
	}

	if agentCancel != nil {
		agentCancel()
	}

	config := llm.DefaultConfig()
	if len(args) > 1 && args[1].String() != "" {
		config.BaseURL = args[1].String()
	}

	client := llm.NewAimoClient(args[0].String(), config)
	strategy = agent.NewStrategy(client)
	if noteStore != nil {
		strategy.SetStore(noteStore, "default")
	}

	var ag *agent.Agent
	ag, handler = agent.New(strategy)

	ctx, cancel := context.WithCancel(context.Background())
	agentCancel = cancel
	go ag.Run(ctx)

	println("[NoteAgent] agent started")
	return successResult("started")
}

// stop shuts the agent loop down.
func stop(this js.Value, args []js.Value) interface{} {
	if agentCancel != nil {
		agentCancel()
		agentCancel = nil
		handler = nil
	}
	return successResult("stopped")
}

// sendChat runs one conversation turn against the current document.
// Args: [documentJSON string, cursor int, message string]
// Returns: Promise resolving to a JSON result with the decoded action.
// The completion call round-trips through fetch, so the turn must run off
// the event loop; a synchronous export would deadlock the runtime.
func sendChat(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: documentJSON, cursor, message")
	}
	if handler == nil {
		return errorResult("agent not started")
	}

	documentJSON := args[0].String()
	cursor := args[1].Int()
	message := args[2].String()

	return newPromise(func() (interface{}, error) {
		note, err := lexical.ParseNote([]byte(documentJSON))
		if err != nil {
			return nil, err
		}

		dict, err := agent.BuildDictionary(&note.LexicalState.Root)
		if err != nil {
			return nil, err
		}
		strategy.SetDictionary(dict)

		result, err := handler.Chat(context.Background(), agent.Turn{
			Context: agent.ChatContext{Note: note, Cursor: cursor},
			Message: message,
		})
		if err != nil {
			return nil, err
		}

		return marshalTurnResult(result), nil
	})
}

// projectBrief flattens a document into its top-level brief.
// Args: [documentJSON string]
// Returns: JSON array of {id, nodeType, content}
func projectBrief(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: documentJSON")
	}

	note, err := lexical.ParseNote([]byte(args[0].String()))
	if err != nil {
		return errorResult("invalid document json: " + err.Error())
	}

	entries := brief.Project(&note.LexicalState.Root)
	jsonBytes, _ := json.Marshal(entries)
	return string(jsonBytes)
}

// parseAction decodes a raw model reply into a typed action.
// Args: [raw string]
func parseAction(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: raw reply text")
	}

	act, err := action.Parse(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"kind":   act.Kind(),
		"action": act,
	})
	return string(jsonBytes)
}

// initStore opens the note store.
// Args: [dsn string (optional)] - empty or absent means in-memory SQLite
func initStore(this js.Value, args []js.Value) interface{} {
	var (
		s   store.Storer
		err error
	)
	if len(args) > 0 && args[0].String() != "" {
		s, err = store.NewSQLiteStoreWithDSN(args[0].String())
	} else {
		s, err = store.NewSQLiteStore()
	}
	if err != nil {
		return errorResult("failed to open store: " + err.Error())
	}

	if noteStore != nil {
		noteStore.Close()
	}
	noteStore = s
	if strategy != nil {
		strategy.SetStore(noteStore, "default")
	}

	return successResult("store initialized")
}

// upsertNote: [noteJSON string]
func upsertNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: noteJSON")
	}
	if noteStore == nil {
		return errorResult("store not initialized")
	}

	var note store.Note
	if err := json.Unmarshal([]byte(args[0].String()), &note); err != nil {
		return errorResult("invalid note json: " + err.Error())
	}

	if err := noteStore.UpsertNote(&note); err != nil {
		return errorResult("upsert failed: " + err.Error())
	}
	return successResult("upserted " + note.NoteID)
}

// getNote: [noteID string]
func getNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: noteID")
	}
	if noteStore == nil {
		return errorResult("store not initialized")
	}

	note, err := noteStore.GetNote(args[0].String())
	if err != nil {
		return errorResult("get failed: " + err.Error())
	}
	if note == nil {
		return "null"
	}

	jsonBytes, _ := json.Marshal(note)
	return string(jsonBytes)
}

// listNotes returns all stored notes as a JSON array.
func listNotes(this js.Value, args []js.Value) interface{} {
	if noteStore == nil {
		return errorResult("store not initialized")
	}

	notes, err := noteStore.ListNotes()
	if err != nil {
		return errorResult("list failed: " + err.Error())
	}

	jsonBytes, _ := json.Marshal(notes)
	return string(jsonBytes)
}

// deleteNote: [noteID string]
func deleteNote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: noteID")
	}
	if noteStore == nil {
		return errorResult("store not initialized")
	}

	if err := noteStore.DeleteNote(args[0].String()); err != nil {
		return errorResult("delete failed: " + err.Error())
	}
	return successResult("deleted")
}

// initVectors opens the IndexedDB-backed HNSW store.
// Args: [] (uses the "noteagent" DB and "hnsw.bin" path)
func initVectors(this js.Value, args []js.Value) interface{} {
	fs, err := indexeddb.NewFS(context.Background(), "noteagent", indexeddb.Options{})
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}

	vectorStore, err = vector.NewStore(fs, "hnsw.bin")
	if err != nil {
		return errorResult("failed to load vector store: " + err.Error())
	}

	return successResult("vector store initialized")
}

// addVector: [noteID string, vectorJSON string]
func addVector(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: noteID (string), vectorJSON (string)")
	}
	if vectorStore == nil {
		return errorResult("vector store not initialized")
	}

	var vec []float32
	if err := json.Unmarshal([]byte(args[1].String()), &vec); err != nil {
		return errorResult("invalid vector json: " + err.Error())
	}

	if err := vectorStore.Add(args[0].String(), vec); err != nil {
		return errorResult("add failed: " + err.Error())
	}

	return successResult("added")
}

// searchVectors: [vectorJSON string, k int]
// Returns: JSON array of note IDs
func searchVectors(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: vectorJSON (string), k (int)")
	}
	if vectorStore == nil {
		return errorResult("vector store not initialized")
	}

	var vec []float32
	if err := json.Unmarshal([]byte(args[0].String()), &vec); err != nil {
		return errorResult("invalid vector json: " + err.Error())
	}

	ids, err := vectorStore.Search(vec, args[1].Int())
	if err != nil {
		return errorResult("search failed: " + err.Error())
	}

	jsonBytes, _ := json.Marshal(ids)
	return string(jsonBytes)
}

// saveVectors persists the index to IndexedDB
func saveVectors(this js.Value, args []js.Value) interface{} {
	if vectorStore == nil {
		return errorResult("vector store not initialized")
	}

	if err := vectorStore.Save(); err != nil {
		return errorResult("save failed: " + err.Error())
	}
	return successResult("saved")
}

// marshalTurnResult renders a turn result as a JSON string.
func marshalTurnResult(result *agent.TurnResult) string {
	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"kind":   result.Action.Kind(),
		"action": result.Action,
		"raw":    result.Raw,
	})
	return string(jsonBytes)
}

// newPromise runs fn in a goroutine and bridges its result to a JS Promise.
func newPromise(fn func() (interface{}, error)) js.Value {
	executor := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve := args[0]
		reject := args[1]
		go func() {
			result, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(result))
		}()
		return nil
	})
	promise := js.Global().Get("Promise").New(executor)
	executor.Release()
	return promise
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
