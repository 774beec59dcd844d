package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphchat/cmd/graphchat/chat"
	"graphchat/internal/api"
	"graphchat/internal/config"
	"graphchat/internal/conversation"
	"graphchat/internal/logging"
	"graphchat/internal/query"
	"graphchat/internal/stats"
)

const version = "0.1.0"

var (
	// Global flags
	verbose    bool
	serverURL  string
	topK       int
	timeout    time.Duration
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd launches the interactive chat session.
var rootCmd *cobra.Command

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graphchat",
		Short: "GraphChat - conversational front end for a Graph RAG backend",
		Long: `GraphChat is a terminal chat client for a knowledge-graph RAG service.

Questions are answered from a knowledge graph of entities and facts;
each answer shows which entities were retrieved and how many facts
backed it.

Run without arguments to start the interactive chat interface.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags()
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The TUI owns the terminal, so its logs go to a file. Other
			// subcommands log to stderr.
			if cmd == rootCmd {
				logger, err = logging.NewTUI(config.Dir(), cfg.Log.File, cfg.Log.Debug)
			} else {
				logger, err = logging.NewCLI(cfg.Log.Debug)
			}
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, logger)
			return chat.RunChat(cfg, client, logger)
		},
	}
}

// queryCmd runs queries without the TUI.
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask the knowledge graph a single question",
	Long: `Submits one question and prints the answer with its supporting
entities and fact count.

With --interactive, reads questions from stdin in a loop until "exit"
or "quit".

Example:
  graphchat query "Who is Barack Obama?"`,
	RunE: runQuery,
}

var interactive bool

// statsCmd prints the backend's counters and component readiness.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge graph counters and backend health",
	RunE:  runStats,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the GraphChat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graphchat %s\n", version)
	},
}

func init() {
	rootCmd = newRootCmd()
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (e.g. http://localhost:8000/api/v1)")
	rootCmd.PersistentFlags().IntVar(&topK, "top-k", 0, "Entities retrieved per query (1-50)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Round-trip timeout")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.graphchat/config.yaml)")

	queryCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read questions from stdin in a loop")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// applyFlags overlays explicitly set flags on the loaded config. Flags
// outrank the file and environment.
func applyFlags() {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("server") {
		cfg.Server.BaseURL = serverURL
	}
	if flags.Changed("top-k") {
		cfg.Query.TopK = topK
	}
	if flags.Changed("timeout") {
		cfg.Server.Timeout = timeout
	}
	if flags.Changed("verbose") {
		cfg.Log.Debug = verbose
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, logger)
	store := conversation.NewStore(cfg.UI.Greeting)
	controller := query.NewController(store, client, cfg.Query.TopK, logger)

	if interactive {
		return runQueryLoop(ctx, store, controller)
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a question or use --interactive")
	}
	question := strings.Join(args, " ")
	if !controller.Run(ctx, question) {
		return fmt.Errorf("empty question")
	}
	printTurn(store)
	if last, _ := store.Last(); last.IsError {
		os.Exit(1)
	}
	return nil
}

// runQueryLoop reads questions from stdin until exit/quit or EOF.
func runQueryLoop(ctx context.Context, store *conversation.Store, controller *query.Controller) error {
	fmt.Println("GraphChat interactive mode. Type a question, or \"exit\" to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}
		if !controller.Run(ctx, line) {
			continue
		}
		printTurn(store)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// printTurn writes the latest assistant turn to stdout.
func printTurn(store *conversation.Store) {
	last, ok := store.Last()
	if !ok || last.Role != conversation.RoleAssistant {
		return
	}
	fmt.Println(last.Text)
	if last.IsError {
		return
	}
	if len(last.Entities) > 0 {
		fmt.Printf("Entities: %s\n", strings.Join(last.Entities, ", "))
	}
	if last.FactCount > 0 {
		fmt.Printf("Facts used: %d\n", last.FactCount)
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, logger)

	snap := stats.Load(ctx, client, logger)
	if snap == (api.StatsSnapshot{}) {
		fmt.Println("Graph stats unavailable.")
	} else {
		fmt.Printf("Entities: %d\nFacts:    %d\n", snap.EntityCount, snap.FactCount)
	}

	health, err := client.GetHealth(ctx)
	if err != nil {
		fmt.Println("Health:   unreachable")
		return nil
	}
	fmt.Printf("Health:   %s\n", health.Status)

	names := make([]string, 0, len(health.Components))
	for name := range health.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := "down"
		if health.Components[name] {
			state = "ok"
		}
		fmt.Printf("  %-12s %s\n", name, state)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
