package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nholt/taskdeck/internal/app"
	"github.com/nholt/taskdeck/internal/config"
	"github.com/nholt/taskdeck/internal/logging"
	"github.com/nholt/taskdeck/internal/store"
	"github.com/nholt/taskdeck/internal/ui"
	"github.com/nholt/taskdeck/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "version":
			fmt.Printf("taskdeck v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Parse flags for TUI mode
	serverFlag := flag.String("server", "", "Backend base URL (overrides config)")
	themeFlag := flag.String("theme", "", "Theme name (nord, dracula)")
	dataDirFlag := flag.String("data-dir", "", "Data directory (default: ~/.local/share/taskdeck)")
	logLevelFlag := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	if err := runTUI(*serverFlag, *themeFlag, *dataDirFlag, *logLevelFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `taskdeck - a terminal client for a shared task board

Usage:
  taskdeck                  Start the TUI
  taskdeck add <title...>   Quick add a task using the saved session
  taskdeck version          Show version
  taskdeck help             Show this help

TUI Options:
  --server <url>    Backend base URL (or TASKDECK_SERVER env var)
  --theme <name>    Theme (nord, dracula)
  --data-dir <dir>  Data directory
  --log-level <lv>  Log level (debug, info, warn, error)

Keybindings:
  Board:        h/l j/k       Navigate columns and cards
                enter         Advance status (todo → wip → done)
                a             Add task
                u             Assign user
                d             Delete (with confirm)
                r             Reload

  Views:        1             Board
                2             Users (admin only)
                ?             Help
                ctrl+l        Logout
                q             Quit`

	fmt.Println(help)
}

// handleAdd creates a task from the command line using the persisted
// session, without starting the TUI.
func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taskdeck add <title...>")
		os.Exit(1)
	}
	title := strings.Join(args, " ")

	dataDir := store.DefaultDataDir()
	cfg, err := config.Load(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Discard()

	application, err := app.New(cfg, dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if !application.Session.Active() {
		fmt.Fprintln(os.Stderr, "No session; start the TUI and sign in first.")
		os.Exit(1)
	}

	task, err := application.Board.CreateTask(context.Background(), title, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created: %s (%s)\n", task.Title, task.Status)
}

func runTUI(serverURL, themeName, dataDir, logLevel string) error {
	if dataDir == "" {
		dataDir = store.DefaultDataDir()
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Logs go to a file; stdout belongs to the TUI.
	logFile, err := logging.Setup(dataDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	if t, ok := theme.ByName(cfg.Theme); ok {
		theme.SetTheme(t)
	}

	application, err := app.New(cfg, dataDir)
	if err != nil {
		return err
	}
	defer application.Close()

	model := ui.NewRootModel(application)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
