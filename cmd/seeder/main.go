// Seeder loads sample documents into a database for local development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/guilhermexp/recall"
	"github.com/guilhermexp/recall/ai/mock"
	"github.com/guilhermexp/recall/ingestion"
)

var samples = []ingestion.SubmitRequest{
	{
		TenantID: "dev",
		Title:    "Go concurrency patterns",
		Content: `Goroutines are lightweight threads managed by the Go runtime. Channels
connect goroutines and let them communicate by passing values instead of
sharing memory. Select waits on multiple channel operations at once, which
makes timeouts and cancellation straightforward to express.`,
		ContainerTags: []string{"samples", "go"},
	},
	{
		TenantID: "dev",
		Title:    "Vector search basics",
		Content: `Vector search finds items whose embeddings lie close to a query
embedding. Text is mapped into a high-dimensional space where semantic
similarity corresponds to geometric proximity, usually measured by cosine
similarity or dot product over normalized vectors.`,
		ContainerTags: []string{"samples", "search"},
	},
	{
		TenantID: "dev",
		Title:    "Write-ahead logging",
		Content: `A write-ahead log records every mutation before it is applied to the
main data structure. After a crash, replaying the log restores the state
that was acknowledged to clients. Log-structured storage engines take the
idea further and treat the log itself as the primary store.`,
		ContainerTags: []string{"samples", "storage"},
	},
}

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "populate a database with sample documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "database directory",
				Value:   ".recall-dev",
				EnvVars: []string{"RECALL_DB"},
			},
			&cli.BoolFlag{
				Name:  "mock-ai",
				Usage: "use deterministic in-process embeddings instead of a live service",
				Value: true,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	opts := []recall.Option{}
	if c.Bool("mock-ai") {
		opts = append(opts, recall.WithProvider(mock.NewMockProvider()))
	}

	db, err := recall.Open(c.String("db"), opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
	defer cancel()

	for _, req := range samples {
		result, err := db.Submit(ctx, req)
		if err != nil {
			return fmt.Errorf("submitting %q: %w", req.Title, err)
		}
		if result.Duplicate {
			fmt.Printf("skipped %q: already present as document %d\n", req.Title, result.DocumentID)
			continue
		}

		report, err := db.WaitForTerminal(ctx, result.DocumentID)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %q as document %d (%s)\n", req.Title, result.DocumentID, report.Status)
	}
	return nil
}
