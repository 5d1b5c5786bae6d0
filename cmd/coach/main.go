// Package main provides the CLI entry point for the coach conversation
// engine.
//
// Start an interactive session:
//
//	coach chat --config coach.yaml
//
// Configuration can also come from environment variables:
//
//   - COACH_CONFIG: path to the configuration file (default: coach.yaml)
//   - GEMINI_API_KEY: API key for the model backend
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pulsefit/coach/internal/config"
	"github.com/pulsefit/coach/internal/engine"
	"github.com/pulsefit/coach/internal/gemini"
	"github.com/pulsefit/coach/internal/observability"
	"github.com/pulsefit/coach/internal/prompt"
	"github.com/pulsefit/coach/internal/store"
	"github.com/pulsefit/coach/internal/tools/foodlog"
	"github.com/pulsefit/coach/internal/tools/memory"
	"github.com/pulsefit/coach/internal/tools/plan"
	"github.com/pulsefit/coach/internal/tools/reminders"
	"github.com/pulsefit/coach/internal/tools/workouts"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "coach",
		Short:         "Conversational fitness coach engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to configuration file")

	root.AddCommand(newChatCommand(&configPath))
	root.AddCommand(newVersionCommand())
	return root
}

func defaultConfigPath() string {
	if path := os.Getenv("COACH_CONFIG"); path != "" {
		return path
	}
	return "coach.yaml"
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "coach", version)
		},
	}
}

func newChatCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive coaching session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runChat(cmd, cfg)
		},
	}
}

func runChat(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := engine.NewRegistry()
	tools := []engine.Tool{
		foodlog.NewLogTool(db),
		foodlog.NewGetLogTool(db),
		foodlog.NewSuggestTool(),
		foodlog.NewEditTool(),
		workouts.NewSuggestTool(),
		workouts.NewStartTool(),
		workouts.NewLogTool(),
		plan.NewUpdateTool(),
		reminders.NewCreateTool(),
		memory.NewSaveFactTool(db),
	}
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}

	client, err := gemini.NewClient(gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		MaxRetries: cfg.Gemini.MaxRetries,
		RetryDelay: cfg.Gemini.RetryDelay,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	router := engine.NewRouter(registry, logger, metrics)
	orch := engine.NewOrchestrator(client, router,
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "coach ready (ctrl-d to quit)")

	var history []engine.Turn
	var pending string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		facts, err := db.ListFacts(ctx, 20)
		if err != nil {
			logger.Warn("list facts failed", slog.String("error", err.Error()))
		}

		printed := 0
		result, err := orch.Run(ctx, &engine.ExchangeRequest{
			History:     history,
			UserMessage: prompt.Build(prompt.Context{MemoryNotes: facts, PendingSuggestion: pending}, message),
			Sink: func(cumulative string) {
				fmt.Fprint(out, cumulative[printed:])
				printed = len(cumulative)
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "\nerror: %v\n", err)
			continue
		}
		fmt.Fprintln(out)
		printSuggestions(out, result)

		pending = ""
		beforeModel := append(history, engine.TextTurn(engine.RoleUser, message))
		history = append(beforeModel,
			engine.Turn{Role: engine.RoleModel, Fragments: result.LastModelTurn},
		)

		if !hasOpenSuggestions(result) {
			continue
		}
		fmt.Fprint(out, "accept? [y/N] ")
		if !scanner.Scan() {
			break
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			pending = pendingSummary(result)
			continue
		}

		followUp, results, err := confirmSuggestions(ctx, orch, db, beforeModel, result)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if followUp.Text != "" {
			fmt.Fprintln(out, followUp.Text)
		}
		history = append(history,
			engine.ResultsTurn(results),
			engine.Turn{Role: engine.RoleModel, Fragments: followUp.LastModelTurn},
		)
	}
	return scanner.Err()
}

func printSuggestions(out io.Writer, result *engine.ExchangeResult) {
	for _, food := range result.FoodSuggestions {
		fmt.Fprintf(out, "[suggested food] %s (%.0f kcal)\n", food.Name, food.Calories)
	}
	if result.PlanUpdate != nil {
		fmt.Fprintln(out, "[suggested plan update]")
	}
	if result.FoodEdit != nil {
		fmt.Fprintf(out, "[suggested edit] entry %s\n", result.FoodEdit.EntryID)
	}
	if result.Workout != nil {
		fmt.Fprintf(out, "[suggested workout] %s\n", result.Workout.Name)
	}
	if result.WorkoutStart != nil {
		fmt.Fprintf(out, "[suggested workout start] %s\n", result.WorkoutStart.Name)
	}
	if result.WorkoutLog != nil {
		fmt.Fprintf(out, "[suggested workout log] %s\n", result.WorkoutLog.Name)
	}
	if result.Reminder != nil {
		fmt.Fprintf(out, "[suggested reminder] %s\n", result.Reminder.Message)
	}
	for _, fact := range result.SavedFacts {
		fmt.Fprintf(out, "[saved fact] %s\n", fact)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
