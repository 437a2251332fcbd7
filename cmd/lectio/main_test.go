package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lectio"
	"github.com/poiesic/lectio/ai/mock"
	"github.com/poiesic/lectio/approach"
	"github.com/poiesic/lectio/config"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findFlag(cmd *cli.Command, name string) cli.Flag {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	return nil
}

func TestCommandFlags(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
	app := newApp()

	t.Run("log-level defaults to info", func(t *testing.T) {
		var levelFlag *cli.StringFlag
		for _, f := range app.Flags {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "log-level" {
				levelFlag = sf
			}
		}
		require.NotNil(t, levelFlag)
		assert.Equal(t, "info", levelFlag.Value)
		assert.Equal(t, []string{"l"}, levelFlag.Aliases)
	})

	t.Run("ask and chat share answer flags", func(t *testing.T) {
		for _, name := range []string{"ask", "chat"} {
			cmd := findCommand(t, app, name)
			for _, flagName := range []string{"mode", "top", "exclude-category", "semantic-ranker", "semantic-captions", "temperature", "prompt-template", "json"} {
				assert.NotNil(t, findFlag(cmd, flagName), "%s --%s", name, flagName)
			}
		}
	})

	t.Run("followups only on chat", func(t *testing.T) {
		assert.Nil(t, findFlag(findCommand(t, app, "ask"), "followups"))
		followups, ok := findFlag(findCommand(t, app, "chat"), "followups").(*cli.BoolFlag)
		require.True(t, ok)
		assert.True(t, followups.Value)
	})

	t.Run("search has no answer flags", func(t *testing.T) {
		cmd := findCommand(t, app, "search")
		assert.NotNil(t, findFlag(cmd, "top"))
		assert.Nil(t, findFlag(cmd, "temperature"))
		assert.Nil(t, findFlag(cmd, "json"))
		assert.NotNil(t, findFlag(cmd, "explain"))
	})

	t.Run("batch input is required", func(t *testing.T) {
		cmd := findCommand(t, app, "batch")
		input, ok := findFlag(cmd, "input").(*cli.StringFlag)
		require.True(t, ok)
		assert.True(t, input.Required)

		approachFlag, ok := findFlag(cmd, "approach").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, lectio.ApproachAsk, approachFlag.Value)

		err := newApp().Run([]string{"lectio", "batch"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level   string
		want    slog.Level
		wantErr bool
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "INFO", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(&cli.App{}, set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.want))
			if tt.want > slog.LevelDebug {
				assert.False(t, slog.Default().Enabled(context.Background(), tt.want-1))
			}
		})
	}
}

func TestOverridesFromFlags(t *testing.T) {
	run := func(args ...string) map[string]any {
		var got map[string]any
		app := &cli.App{
			Name: "lectio",
			Commands: []*cli.Command{
				{
					Name:  "ask",
					Flags: answerFlags(),
					Action: func(c *cli.Context) error {
						got = overridesFromFlags(c)
						return nil
					},
				},
			},
		}
		require.NoError(t, app.Run(append([]string{"lectio", "ask"}, args...)))
		return got
	}

	t.Run("unset flags are omitted", func(t *testing.T) {
		assert.Empty(t, run("question"))
	})

	t.Run("set flags become overrides", func(t *testing.T) {
		got := run(
			"--mode", "text",
			"--top", "5",
			"--exclude-category", "internal",
			"--semantic-ranker",
			"--minimum-reranker-score", "2.5",
			"--temperature", "0",
			"--prompt-template", ">>>Be brief.",
			"question",
		)
		assert.Equal(t, map[string]any{
			core.OverrideRetrievalMode:        "text",
			core.OverrideTop:                  5,
			core.OverrideExcludeCategory:      "internal",
			core.OverrideSemanticRanker:       true,
			core.OverrideMinimumRerankerScore: 2.5,
			core.OverrideTemperature:          0.0,
			core.OverridePromptTemplate:       ">>>Be brief.",
		}, got)

		opts, err := core.ParseOverrides(core.DefaultRetrievalOptions(), got)
		require.NoError(t, err)
		assert.Equal(t, core.RetrievalModeText, opts.Mode)
		assert.Equal(t, 5, opts.Top)
	})
}

func TestReadRequests(t *testing.T) {
	input := `{"messages":[{"role":"user","content":"What is the payment method?"}]}

{"messages":[{"role":"user","content":"Dress code?"}],"overrides":{"top":1}}
`
	requests, err := readRequests(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "What is the payment method?", requests[0].Messages[0].Content)
	assert.Equal(t, 1.0, requests[1].Overrides["top"])

	_, err = readRequests(strings.NewReader("{\"messages\":[]}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadConfig(t *testing.T) {
	run := func(args ...string) (*config.Config, error) {
		var cfg *config.Config
		var loadErr error
		app := &cli.App{
			Name: "lectio",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config"},
			},
			Action: func(c *cli.Context) error {
				cfg, loadErr = loadConfig(c)
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"lectio"}, args...)))
		return cfg, loadErr
	}

	t.Run("defaults without a file", func(t *testing.T) {
		t.Setenv(config.EnvConfig, "")
		cfg, err := run()
		require.NoError(t, err)
		assert.Equal(t, config.Default().Batch, cfg.Batch)
	})

	t.Run("environment file", func(t *testing.T) {
		path := writeConfig(t, "batch:\n  pool_size: 2\n")
		t.Setenv(config.EnvConfig, path)
		cfg, err := run()
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Batch.PoolSize)
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(config.EnvConfig, writeConfig(t, "batch:\n  pool_size: 2\n"))
		cfg, err := run("--config", writeConfig(t, "batch:\n  pool_size: 6\n"))
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Batch.PoolSize)
	})

	t.Run("invalid file", func(t *testing.T) {
		_, err := run("--config", writeConfig(t, "batch:\n  pool_size: 0\n"))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lectio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

// stubService replaces openService with a memory index holding two
// passages and a mock provider.
func stubService(t *testing.T) *mock.MockProvider {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	original := openService
	t.Cleanup(func() { openService = original })

	openService = func(cfg *config.Config) (*lectio.Service, error) {
		repo, err := badger.NewMemoryRepository()
		if err != nil {
			return nil, err
		}
		_, err = repo.AddPassages(context.Background(),
			&core.Passage{
				Content:    "The payment will be made via deposit in bank account held by the supplier company.",
				SourcePage: "contract02.pdf#page=3",
				Category:   "contracts",
			},
			&core.Passage{
				Content:    "Employees must follow the dress code.",
				SourcePage: "handbook.pdf#page=7",
				Category:   "internal",
			},
		)
		if err != nil {
			return nil, err
		}
		return lectio.New(repo, provider, cfg)
	}
	return provider
}

const textModeConfig = "defaults:\n  retrieval_mode: text\n  minimum_search_score: 0\n"

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"lectio", "--log-level", "error", "--config", writeConfig(t, textModeConfig)}, args...))
	return out.String(), err
}

func TestAskCommand(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
	provider := stubService(t)

	out, err := runApp(t, "", "ask", "What", "is", "the", "payment", "method?")
	require.NoError(t, err)
	assert.Contains(t, out, "Mock answer for: What is the payment method?")
	assert.Contains(t, out, "Sources:\n")
	assert.Contains(t, out, "  contract02.pdf#page=3: The payment will be made")
	assert.Equal(t, 1, provider.GetMockChatModel().CallCount())

	out, err = runApp(t, "", "ask", "--json", "--exclude-category", "contracts", "dress code")
	require.NoError(t, err)
	var resp approach.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"handbook.pdf#page=7: Employees must follow the dress code."}, resp.DataPoints.Text)
	assert.Len(t, resp.Thoughts, 3)

	_, err = runApp(t, "", "ask", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestChatCommand(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
	provider := stubService(t)

	out, err := runApp(t, "What is the payment method?\n\nAnd the dress code?\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Mock answer for: What is the payment method?")
	assert.Contains(t, out, "Mock answer for: And the dress code?")
	// Two model calls per turn: search query then answer.
	assert.Equal(t, 4, provider.GetMockChatModel().CallCount())

	calls := provider.GetMockChatModel().Calls()
	lastAnswer := calls[3].Messages
	require.GreaterOrEqual(t, len(lastAnswer), 3)
	assert.Equal(t, core.RoleUser, lastAnswer[1].Role)
	assert.Equal(t, "What is the payment method?", lastAnswer[1].Content)
	assert.Equal(t, core.RoleAssistant, lastAnswer[2].Role)
}

func TestSearchCommand(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
	stubService(t)

	out, err := runApp(t, "", "search", "dress", "code")
	require.NoError(t, err)
	assert.Contains(t, out, "1. handbook.pdf#page=7 (score")
	assert.Contains(t, out, "Employees must follow the dress code.")

	out, err = runApp(t, "", "search", "--exclude-category", "internal", "dress", "code")
	require.NoError(t, err)
	assert.Equal(t, "No results.\n", out)

	out, err = runApp(t, "", "search", "--explain", "--minimum-search-score", "1000", "dress", "code")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved 1 results.")
	assert.Contains(t, out, "Dropped handbook.pdf#page=7 (score")
	assert.Contains(t, out, "Kept 0 results.")
	assert.Contains(t, out, "No results.")

	_, err = runApp(t, "", "search", "--top", "0", "dress")
	assert.ErrorIs(t, err, approach.ErrInvalidRequest)
}

func TestBatchCommand(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
	stubService(t)

	input := `{"messages":[{"role":"user","content":"What is the payment method?"}]}
{"messages":[{"role":"assistant","content":"hello"}]}
{"messages":[{"role":"user","content":"What is the dress code?"}]}
`
	out, err := runApp(t, input, "batch", "--input", "-", "--approach", "chat")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		var got batchLine
		require.NoError(t, json.Unmarshal([]byte(line), &got))
		assert.Equal(t, i, got.Index)
		if i == 1 {
			assert.Nil(t, got.Response)
			assert.Contains(t, got.Error, "invalid request")
			continue
		}
		require.NotNil(t, got.Response)
		assert.Empty(t, got.Error)
		assert.Len(t, got.Response.Thoughts, 4)
	}

	_, err = runApp(t, input, "batch", "--input", "-", "--approach", "summarize")
	assert.ErrorIs(t, err, lectio.ErrUnknownApproach)

	_, err = runApp(t, "", "batch", "--input", filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}
