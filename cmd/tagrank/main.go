// Copyright 2025 Veridex Labs
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
	"encoding/csv"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/veridex/tagrank"
	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/encode"
	"github.com/veridex/tagrank/encode/openai"
	"github.com/veridex/tagrank/hashing"
	"github.com/veridex/tagrank/ingest"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tagrank",
		Usage: "Attribute-hashed retrieval over tagged records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Index a CSV file; each row becomes a tagged record",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the CSV file to index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "id-column",
						Usage: "Column to use as the record identifier (content-derived if unset)",
					},
					&cli.StringFlag{
						Name:  "text-column",
						Usage: "Column to treat as record text instead of a tag",
					},
					&cli.IntFlag{
						Name:  "dims",
						Usage: "Hashed embedding width",
						Value: hashing.DefaultDims,
					},
					&cli.IntFlag{
						Name:  "max-val",
						Usage: "Per-attribute magnitude bound",
						Value: hashing.DefaultMaxVal,
					},
					&cli.StringFlag{
						Name:  "embed-host",
						Usage: "OpenAI-compatible embedding service URL for text columns",
					},
					&cli.StringFlag{
						Name:  "embed-model",
						Usage: "Embedding model identifier for text columns",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Search indexed records by attribute overlap",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "where",
						Aliases: []string{"w"},
						Usage:   "Attribute constraint as key=value (repeatable)",
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "Free-text query (requires an embedding service)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.IntFlag{
						Name:  "dims",
						Usage: "Hashed embedding width (must match index time)",
						Value: hashing.DefaultDims,
					},
					&cli.IntFlag{
						Name:  "max-val",
						Usage: "Per-attribute magnitude bound (must match index time)",
						Value: hashing.DefaultMaxVal,
					},
					&cli.StringFlag{
						Name:  "embed-host",
						Usage: "OpenAI-compatible embedding service URL for text queries",
					},
					&cli.StringFlag{
						Name:  "embed-model",
						Usage: "Embedding model identifier for text queries",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rehash all indexed chunks with the configured hasher",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dims",
						Usage: "Hashed embedding width",
						Value: hashing.DefaultDims,
					},
					&cli.IntFlag{
						Name:  "max-val",
						Usage: "Per-attribute magnitude bound",
						Value: hashing.DefaultMaxVal,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

func openEngine(c *cli.Context) (*tagrank.Engine, error) {
	opts := []tagrank.EngineOption{
		tagrank.WithHasherOptions(
			hashing.WithDims(c.Int("dims")),
			hashing.WithMaxVal(c.Int("max-val")),
		),
	}

	embedder, err := newEmbedder(c.String("embed-host"), c.String("embed-model"))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if embedder != nil {
		opts = append(opts, tagrank.WithEmbedder(embedder))
	}

	return tagrank.Open(c.String("db"), opts...)
}

// newEmbedder builds an OpenAI-compatible embedding client when either flag
// is set; unset flags fall back to the encode defaults. Both flags empty
// means tagged-only operation with no embedder.
func newEmbedder(host, model string) (encode.Embedder, error) {
	if host == "" && model == "" {
		return nil, nil
	}

	var opts []encode.ConfigOption
	if host != "" {
		opts = append(opts, encode.WithHost(host))
	}
	if model != "" {
		opts = append(opts, encode.WithModel(model))
	}
	return openai.NewEmbedder(encode.NewConfig(opts...))
}

func indexCommand(c *cli.Context) error {
	records, err := recordsFromCSV(c.String("csv"), c.String("id-column"), c.String("text-column"))
	if err != nil {
		return fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No rows to index")
		return nil
	}

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	if err := engine.Index(c.Context, records...); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d records from %s\n", len(records), c.String("csv"))
	return nil
}

func queryCommand(c *cli.Context) error {
	if len(c.StringSlice("where")) == 0 && c.String("text") == "" {
		return fmt.Errorf("either --where or --text is required")
	}

	tags, err := parseWhere(c.StringSlice("where"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	query := &core.Record{Tags: tags, Text: c.String("text")}
	report, err := engine.Search(c.Context, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i, match := range query.Matches {
		line := fmt.Sprintf("%2d. %s  %s=%.4f", i+1, match.TargetId, match.Metric, match.Score)
		if match.Record != nil && len(match.Record.Tags) > 0 {
			line += "  " + formatTags(match.Record.Tags)
		}
		fmt.Println(line)
	}

	for _, failure := range report.Failed {
		fmt.Fprintf(os.Stderr, "warning: could not resolve %s: %v\n", failure.Id, failure.Err)
	}

	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &ingest.ReindexConfig{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	reindexer := engine.NewReindexer(config, os.Stderr)
	if err := reindexer.Run(c.Context); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	return nil
}

// recordsFromCSV reads a CSV file with a header row and converts each row
// into a tagged record, one tag per column. The text column, when named,
// becomes the record's text instead of a tag.
func recordsFromCSV(path, idColumn, textColumn string) ([]*core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	idIndex, err := columnIndex(header, idColumn, "id")
	if err != nil {
		return nil, err
	}
	textIndex, err := columnIndex(header, textColumn, "text")
	if err != nil {
		return nil, err
	}

	records := make([]*core.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := &core.Record{Tags: make(core.Tags, len(header))}
		for i, name := range header {
			if i >= len(row) {
				break
			}
			if i == textIndex {
				record.Text = row[i]
				continue
			}
			record.Tags[name] = parseValue(row[i])
		}

		if idIndex >= 0 && idIndex < len(row) {
			record.Id = core.ID(row[idIndex])
		} else {
			record.Id = core.IDFromContent(strings.Join(row, "\x1f"))
		}

		records = append(records, record)
	}

	return records, nil
}

// columnIndex resolves a named header column, -1 when no name was given.
func columnIndex(header []string, column, role string) (int, error) {
	if column == "" {
		return -1, nil
	}
	for i, name := range header {
		if name == column {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s column %q not found in header", role, column)
}

// parseWhere converts key=value constraints into a tag map.
func parseWhere(pairs []string) (core.Tags, error) {
	tags := make(core.Tags, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --where constraint %q: expected key=value", pair)
		}
		tags[key] = parseValue(value)
	}
	return tags, nil
}

// parseValue types a CSV cell or constraint value: integer, float, boolean,
// or string. Empty cells become null.
func parseValue(s string) core.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return core.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return core.Float(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return core.Bool(true)
	case "false":
		return core.Bool(false)
	}
	return core.String(s)
}

func formatTags(tags core.Tags) string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+valueString(tags[name]))
	}
	return strings.Join(parts, " ")
}

func valueString(v core.Value) string {
	switch v.Kind {
	case core.KindNull:
		return "null"
	case core.KindInt:
		return strconv.FormatInt(v.I64, 10)
	case core.KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case core.KindBool:
		return strconv.FormatBool(v.B)
	case core.KindString:
		return v.S
	default:
		return v.Key()
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
