// Copyright 2025 The Recall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/guilhermexp/recall"
	"github.com/guilhermexp/recall/ai"
	"github.com/guilhermexp/recall/core"
	"github.com/guilhermexp/recall/ingestion"
	"github.com/guilhermexp/recall/search"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "knowledge-base document ingestion and search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "database directory",
				Value:   defaultDBPath(),
				EnvVars: []string{"RECALL_DB"},
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible API base URL for embeddings and summaries",
				EnvVars: []string{"RECALL_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "embedding model identifier",
				EnvVars: []string{"RECALL_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "tenant",
				Usage:   "tenant scope for submissions and lookups",
				Value:   "default",
				EnvVars: []string{"RECALL_TENANT"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogger(c.String("log-level"))
		},
		Commands: []*cli.Command{
			addCommand(),
			statusCommand(),
			getCommand(),
			listCommand(),
			searchCommand(),
			deleteCommand(),
			reembedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recall"
	}
	return home + "/.recall"
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

func openDatabase(c *cli.Context) (*recall.Database, error) {
	var opts []recall.Option
	var aiOpts []ai.ConfigOption
	if host := c.String("ai-host"); host != "" {
		aiOpts = append(aiOpts, ai.WithHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(model))
	}
	if len(aiOpts) > 0 {
		opts = append(opts, recall.WithAIOptions(aiOpts...))
	}
	return recall.Open(c.String("db"), opts...)
}

func parseID(arg string) (core.ID, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return core.ID(n), nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "submit text or a URL for ingestion",
		ArgsUsage: "<text or url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "document title"},
			&cli.StringFlag{Name: "url", Usage: "submit a URL instead of inline text"},
			&cli.StringSliceFlag{Name: "container", Usage: "container tags to attach"},
			&cli.BoolFlag{Name: "wait", Usage: "block until processing finishes"},
		},
		Action: func(c *cli.Context) error {
			req := ingestion.SubmitRequest{
				TenantID:      c.String("tenant"),
				Title:         c.String("title"),
				URL:           c.String("url"),
				ContainerTags: c.StringSlice("container"),
			}
			if req.URL == "" {
				if c.NArg() < 1 {
					return fmt.Errorf("text argument or --url required")
				}
				req.Content = c.Args().First()
			}

			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := db.Submit(c.Context, req)
			if err != nil {
				return err
			}
			if result.Duplicate {
				fmt.Printf("duplicate of document %d\n", result.DocumentID)
				return nil
			}
			fmt.Printf("document %d queued\n", result.DocumentID)

			if c.Bool("wait") {
				ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
				defer cancel()
				report, err := db.WaitForTerminal(ctx, result.DocumentID)
				if err != nil {
					return err
				}
				printReport(report)
			}
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show a document's processing status",
		ArgsUsage: "<document-id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := db.Status(c.Context, id)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
}

func printReport(report *ingestion.StatusReport) {
	fmt.Printf("document %d: %s\n", report.DocumentID, report.Status)
	if report.ErrorMessage != "" {
		fmt.Printf("  error: %s\n", report.ErrorMessage)
	}
	if report.RollbackIncomplete {
		fmt.Println("  warning: rollback incomplete, stale chunks may remain")
	}
	if !report.CompletedAt.IsZero() {
		fmt.Printf("  finished: %s\n", report.CompletedAt.Format(time.RFC3339))
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "show a document with its summary and chunk count",
		ArgsUsage: "<document-id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			doc, err := db.Document(c.Context, id)
			if err != nil {
				return err
			}
			chunks, err := db.Chunks(c.Context, id)
			if err != nil {
				return err
			}

			fmt.Printf("document %d [%s] %s\n", doc.Id, doc.Status, doc.Title)
			if doc.URL != "" {
				fmt.Printf("  url: %s\n", doc.URL)
			}
			if doc.Summary != "" {
				fmt.Printf("  summary: %s\n", doc.Summary)
			}
			if len(doc.Tags) > 0 {
				fmt.Printf("  tags: %v\n", doc.Tags)
			}
			fmt.Printf("  chunks: %d\n", len(chunks))
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list all documents",
		Action: func(c *cli.Context) error {
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			docs, err := db.Documents(c.Context)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				title := doc.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Printf("%d\t%s\t%s\n", doc.Id, doc.Status, title)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "similarity search over ingested documents",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "maximum results"},
			&cli.Float64Flag{Name: "min-score", Usage: "minimum similarity score"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("query argument required")
			}
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := db.Search(c.Context, c.Args().First(), search.Options{
				Limit:         c.Int("limit"),
				MinSimilarity: float32(c.Float64("min-score")),
			})
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%.4f  doc %d chunk %d  %s\n", r.Score, r.Document.Id, r.Chunk.ChunkIndex, r.Document.Title)
			}
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a document with its chunks, job and memory",
		ArgsUsage: "<document-id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Delete(c.Context, id); err != nil {
				return err
			}
			fmt.Printf("document %d deleted\n", id)
			return nil
		},
	}
}

func reembedCommand() *cli.Command {
	return &cli.Command{
		Name:  "reembed",
		Usage: "re-embed all chunks with the current embedding model",
		Action: func(c *cli.Context) error {
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.Reembed(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("re-embedded %d chunks across %d documents (%d scanned)\n",
				stats.ChunksUpdated, stats.DocumentsUpdated, stats.DocumentsScanned)
			return nil
		},
	}
}
