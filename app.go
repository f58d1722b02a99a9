package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sketch2story/audio"
	"sketch2story/backend"
	"sketch2story/config"
	"sketch2story/tui"
	"sketch2story/workflow"
)

// app holds what every command shares: resolved configuration, the session
// logger and the values of the persistent flags
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	sessionID string
	closeLog  func() error

	backendURL string
	debug      bool
	logPath    string
	outputDir  string
	overwrite  bool
	plain      bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "sketch2story [IMAGE]",
		Short: "Turn a child's drawing into a story with vocabulary and narration",
		Long: `sketch2story walks you through three steps: upload a drawing, add a theme,
and read (or listen to) the story the backend writes about it.

The story backend must be running; point at it with --backend or STORY_BACKEND_URL.`,
		Example: `  # Full-screen interactive session
  sketch2story

  # Start with a drawing already selected
  sketch2story ./drawings/sun.png

  # Step-by-step prompts instead of the full-screen UI
  sketch2story --plain`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial string
			if len(args) == 1 {
				initial = args[0]
			}
			if a.plain {
				return a.runPlain(cmd.Context(), initial)
			}
			return a.runTUI(initial)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.backendURL, "backend", "", "Story backend URL (env STORY_BACKEND_URL)")
	pf.BoolVar(&a.debug, "debug", false, "Write a debug log (env STORY_DEBUG)")
	pf.StringVar(&a.logPath, "log-file", "", "Debug log path (env STORY_LOG_FILE)")
	pf.StringVarP(&a.outputDir, "out", "o", "", "Directory for saved stories (env STORY_OUTPUT_DIR)")
	pf.BoolVar(&a.overwrite, "overwrite", false, "Replace existing story files when saving")
	cmd.Flags().BoolVar(&a.plain, "plain", false, "Use step-by-step prompts instead of the full-screen UI")

	cmd.AddCommand(
		newGenerateCmd(a),
		newVoicesCmd(a),
		newLevelsCmd(a),
		newHealthCmd(a),
		newUpdateCmd(a),
	)

	return cmd
}

// setup resolves configuration with flags taking precedence over the
// environment, then opens the session logger
func (a *app) setup() error {
	a.cfg = config.Load()
	if a.backendURL != "" {
		a.cfg.Backend.URL = strings.TrimSuffix(a.backendURL, "/")
	}
	if a.debug {
		a.cfg.Log.Debug = true
	}
	if a.logPath != "" {
		a.cfg.Log.File = a.logPath
	}
	if a.outputDir != "" {
		a.cfg.Output.Dir = a.outputDir
	}

	a.sessionID = uuid.NewString()
	logger, closeLog, err := newLogger(a.cfg.Log, a.sessionID)
	if err != nil {
		return err
	}
	a.logger = logger
	a.closeLog = closeLog

	a.logger.Info("sketch2story starting",
		"version", version,
		"backend", a.cfg.Backend.URL,
		"output", a.cfg.Output.Dir,
	)
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

func (a *app) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.logger
}

func (a *app) newClient() (*backend.Client, error) {
	client, err := backend.NewClient(a.cfg.Backend.URL, backend.WithLogger(a.log()))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	return client, nil
}

func (a *app) timeouts() workflow.Timeouts {
	return workflow.Timeouts{
		Analyze:  a.cfg.Backend.AnalyzeTimeout,
		Generate: a.cfg.Backend.GenerateTimeout,
		Catalog:  a.cfg.Backend.CatalogTimeout,
	}
}

// newOrchestrator wires a session to the backend. With narration enabled the
// ffplay player is attached when it is installed; cleanup releases it.
func (a *app) newOrchestrator(narration bool) (*workflow.Orchestrator, func(), error) {
	client, err := a.newClient()
	if err != nil {
		return nil, nil, err
	}

	var media workflow.MediaElement
	cleanup := func() {}
	if narration {
		if err := audio.CheckPlayer(a.cfg.Player.Command); err != nil {
			a.log().Warn("narration playback disabled", "error", err)
		} else {
			player := audio.NewPlayer(
				audio.WithCommand(a.cfg.Player.Command),
				audio.WithLogger(a.log()),
			)
			media = player
			cleanup = func() { _ = player.Close() }
		}
	}

	session := workflow.NewSession(client.BaseURL(), media)
	orch := workflow.NewOrchestrator(session, client,
		workflow.WithTimeouts(a.timeouts()),
		workflow.WithLogger(a.log()),
	)
	return orch, cleanup, nil
}

func (a *app) runTUI(initial string) error {
	orch, cleanup, err := a.newOrchestrator(true)
	if err != nil {
		return err
	}
	defer cleanup()

	a.log().Info("interactive session", "mode", "tui", "image", initial)
	return tui.Run(orch, tui.Options{
		OutputDir:   a.cfg.Output.Dir,
		Overwrite:   a.overwrite,
		InitialPath: initial,
	})
}
