// Copyright 2025 Poiesic Systems
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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lectio"
	"github.com/poiesic/lectio/approach"
	"github.com/poiesic/lectio/config"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/search"
	"github.com/urfave/cli/v2"
)

// openService is replaced in tests.
var openService = lectio.Open

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func retrievalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Retrieval mode (text, vectors, hybrid)",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Number of passages to retrieve",
		},
		&cli.StringFlag{
			Name:  "exclude-category",
			Usage: "Skip passages in this category",
		},
		&cli.BoolFlag{
			Name:  "semantic-ranker",
			Usage: "Rerank results by query term coverage",
		},
		&cli.BoolFlag{
			Name:  "semantic-captions",
			Usage: "Use extracted captions instead of full passages",
		},
		&cli.Float64Flag{
			Name:  "minimum-search-score",
			Usage: "Drop results scoring below this value",
		},
		&cli.Float64Flag{
			Name:  "minimum-reranker-score",
			Usage: "Drop reranked results scoring below this value",
		},
	}
}

func answerFlags(extra ...cli.Flag) []cli.Flag {
	flags := append(retrievalFlags(),
		&cli.Float64Flag{
			Name:  "temperature",
			Usage: "Sampling temperature for the answer",
		},
		&cli.StringFlag{
			Name:  "prompt-template",
			Usage: "Replace the system prompt, or inject into it when prefixed with >>>",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the full response as JSON",
		},
	)
	return append(flags, extra...)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lectio",
		Usage: "Grounded question answering over a passage index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to lectio.yaml (default: $" + config.EnvConfig + ")",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a single question from the index",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     answerFlags(),
			},
			{
				Name:   "chat",
				Usage:  "Hold a conversation answered from the index, reading questions from stdin",
				Action: chatCommand,
				Flags: answerFlags(
					&cli.BoolFlag{
						Name:  "followups",
						Usage: "Suggest follow-up questions",
						Value: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Show the passages retrieved for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(retrievalFlags(),
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Also show results dropped by the score thresholds",
					},
				),
			},
			{
				Name:   "batch",
				Usage:  "Answer JSON lines requests concurrently and print JSON lines responses",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "File of JSON requests, one per line (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "approach",
						Usage: "Approach used for every request (ask, chat)",
						Value: lectio.ApproachAsk,
					},
				},
			},
		},
	}
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required")
	}

	svc, err := open(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := svc.Ask(c.Context, approach.Request{
		Messages:  []core.Message{core.UserMessage(question)},
		Overrides: overridesFromFlags(c),
	})
	if err != nil {
		return err
	}
	return printResponse(c.App.Writer, resp, c.Bool("json"))
}

func chatCommand(c *cli.Context) error {
	svc, err := open(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	overrides := overridesFromFlags(c)
	overrides[core.OverrideSuggestFollowupQuestions] = c.Bool("followups")

	out := c.App.Writer
	var history []core.Message
	scanner := bufio.NewScanner(c.App.Reader)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			fmt.Fprint(out, "> ")
			continue
		}

		messages := append(append([]core.Message(nil), history...), core.UserMessage(question))
		resp, err := svc.Chat(c.Context, approach.Request{Messages: messages, Overrides: overrides})
		if err != nil {
			slog.Error("chat turn failed", "err", err)
			fmt.Fprintf(out, "error: %v\n> ", err)
			continue
		}
		if err := printResponse(out, resp, c.Bool("json")); err != nil {
			return err
		}
		history = append(messages, core.AssistantMessage(resp.Answer))
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	svc, err := open(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := c.App.Writer
	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = &explainMonitor{out: out}
	}
	results, err := svc.SearchWithMonitor(c.Context, query, overridesFromFlags(c), monitor)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	for i, result := range results {
		fmt.Fprintf(out, "%d. %s (score %.4f", i+1, result.SourcePage, result.Score)
		if result.RerankerScore != nil {
			fmt.Fprintf(out, ", reranker %.2f", *result.RerankerScore)
		}
		fmt.Fprintln(out, ")")
		fmt.Fprintf(out, "   %s\n", result.Content)
		for _, caption := range result.Captions {
			fmt.Fprintf(out, "   > %s\n", caption.Highlights)
		}
	}
	return nil
}

// explainMonitor prints what the score thresholds dropped.
type explainMonitor struct {
	out io.Writer
}

func (m *explainMonitor) Start(q search.Query) {
	fmt.Fprintf(m.out, "Thresholds: search score %.4f, reranker score %.2f\n", q.MinimumSearchScore, q.MinimumRerankerScore)
}

func (m *explainMonitor) AfterRetrieval(count int) {
	fmt.Fprintf(m.out, "Retrieved %d results.\n", count)
}

func (m *explainMonitor) Rejected(result core.SearchResult) {
	fmt.Fprintf(m.out, "Dropped %s (score %.4f", result.SourcePage, result.Score)
	if result.RerankerScore != nil {
		fmt.Fprintf(m.out, ", reranker %.2f", *result.RerankerScore)
	}
	fmt.Fprintln(m.out, ")")
}

func (m *explainMonitor) Finish(results []core.SearchResult) {
	fmt.Fprintf(m.out, "Kept %d results.\n\n", len(results))
}

// batchLine is one line of batch output.
type batchLine struct {
	Index    int                `json:"index"`
	Response *approach.Response `json:"response,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func batchCommand(c *cli.Context) error {
	in, closeInput, err := openInput(c.String("input"), c.App.Reader)
	if err != nil {
		return err
	}
	defer closeInput()

	requests, err := readRequests(in)
	if err != nil {
		return err
	}

	svc, err := open(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	results, err := svc.Batch(c.Context, c.String("approach"), requests)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(c.App.Writer)
	failed := 0
	for i, result := range results {
		line := batchLine{Index: i, Response: result.Response}
		if result.Err != nil {
			line.Error = result.Err.Error()
			failed++
		}
		if err := encoder.Encode(line); err != nil {
			return err
		}
	}
	slog.Info("batch complete", "requests", len(results), "failed", failed)
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// readRequests decodes one JSON request per non-blank line.
func readRequests(r io.Reader) ([]approach.Request, error) {
	var requests []approach.Request
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var req approach.Request
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		requests = append(requests, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// overridesFromFlags returns the request overrides for flags set on the
// command line. Unset flags leave the configured defaults in place.
func overridesFromFlags(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	set := func(flag, key string, value any) {
		if c.IsSet(flag) {
			overrides[key] = value
		}
	}
	set("mode", core.OverrideRetrievalMode, c.String("mode"))
	set("top", core.OverrideTop, c.Int("top"))
	set("exclude-category", core.OverrideExcludeCategory, c.String("exclude-category"))
	set("semantic-ranker", core.OverrideSemanticRanker, c.Bool("semantic-ranker"))
	set("semantic-captions", core.OverrideSemanticCaptions, c.Bool("semantic-captions"))
	set("minimum-search-score", core.OverrideMinimumSearchScore, c.Float64("minimum-search-score"))
	set("minimum-reranker-score", core.OverrideMinimumRerankerScore, c.Float64("minimum-reranker-score"))
	set("temperature", core.OverrideTemperature, c.Float64("temperature"))
	set("prompt-template", core.OverridePromptTemplate, c.String("prompt-template"))
	return overrides
}

func printResponse(out io.Writer, resp *approach.Response, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}

	fmt.Fprintln(out, resp.Answer)
	if len(resp.DataPoints.Text) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, source := range resp.DataPoints.Text {
			fmt.Fprintf(out, "  %s\n", source)
		}
	}
	if len(resp.FollowupQuestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Follow-up questions:")
		for _, question := range resp.FollowupQuestions {
			fmt.Fprintf(out, "  - %s\n", question)
		}
	}
	return nil
}

// loadConfig reads --config, then LECTIO_CONFIG, then falls back to the
// built-in defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvConfig) != "" {
		return config.Load()
	}
	return config.Parse(nil)
}

func open(c *cli.Context) (*lectio.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	svc, err := openService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open lectio: %w", err)
	}
	return svc, nil
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
