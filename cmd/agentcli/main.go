// Command agentcli is a native smoke harness for the note agent: it runs a
// chat turn against a sample document from the terminal, no browser needed.
//
// Usage:
//
//	AIMO_JWT=... agentcli "add a packing checklist"
//	agentcli -doc note.json -cursor 2 "rewrite the second paragraph"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kittclouds/noteagent/internal/agent"
	"github.com/kittclouds/noteagent/internal/llm"
	"github.com/kittclouds/noteagent/internal/store"
	"github.com/kittclouds/noteagent/pkg/brief"
	"github.com/kittclouds/noteagent/pkg/lexical"
)

const sampleDocument = `{
  "noteId": "sample",
  "lexicalState": {
    "root": {
      "type": "root",
      "version": 1,
      "children": [
        {"type": "heading", "version": 1, "tag": "h1", "children": [
          {"type": "text", "version": 1, "text": "Trip to Lisbon", "format": 0}
        ]},
        {"type": "paragraph", "version": 1, "children": [
          {"type": "text", "version": 1, "text": "Need to sort out flights and a place to stay. ", "format": 0},
          {"type": "hashtag", "version": 1, "text": "#travel", "format": 0}
        ]}
      ]
    }
  }
}`

func main() {
	docPath := flag.String("doc", "", "path to a note JSON file (default: built-in sample)")
	cursor := flag.Int("cursor", 0, "cursor position among top-level blocks")
	baseURL := flag.String("base-url", "", "override the completion API base URL")
	dsn := flag.String("dsn", "", "SQLite DSN for persisting the conversation (default: none)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: agentcli [flags] <message>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	message := flag.Arg(0)

	jwt := os.Getenv("AIMO_JWT")
	if jwt == "" {
		log.Fatal("AIMO_JWT environment variable is required")
	}

	documentJSON := []byte(sampleDocument)
	if *docPath != "" {
		var err error
		documentJSON, err = os.ReadFile(*docPath)
		if err != nil {
			log.Fatalf("read document: %v", err)
		}
	}

	note, err := lexical.ParseNote(documentJSON)
	if err != nil {
		log.Fatalf("parse document: %v", err)
	}

	entries := brief.Project(&note.LexicalState.Root)
	if len(entries) == 0 {
		log.Fatal("document projected to an empty brief; nothing to send")
	}
	fmt.Println("Document brief:")
	for _, e := range entries {
		fmt.Printf("  [%d] %-12s %s\n", e.ID, e.NodeType, e.Content)
	}

	config := llm.DefaultConfig()
	if *baseURL != "" {
		config.BaseURL = *baseURL
	}

	strategy := agent.NewStrategy(llm.NewAimoClient(jwt, config))

	dict, err := agent.BuildDictionary(&note.LexicalState.Root)
	if err != nil {
		log.Fatalf("build dictionary: %v", err)
	}
	strategy.SetDictionary(dict)

	if *dsn != "" {
		st, err := store.NewSQLiteStoreWithDSN(*dsn)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		strategy.SetStore(st, "agentcli")
	}

	ag, handler := agent.New(strategy)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ag.Run(ctx)

	result, err := handler.Chat(ctx, agent.Turn{
		Context: agent.ChatContext{Note: note, Cursor: *cursor},
		Message: message,
	})
	if err != nil {
		log.Fatalf("chat turn: %v", err)
	}

	fmt.Printf("\nAction kind: %s\n", result.Action.Kind())
	actionJSON, _ := json.MarshalIndent(result.Action, "", "  ")
	fmt.Println(string(actionJSON))
}
