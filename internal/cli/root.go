package cli

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"daygrid/internal/store"
	"daygrid/internal/tui"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Date       string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "daygrid",
		Short:        "daygrid personal task board CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  daygrid

  # Scriptable commands
  daygrid tasks add "water the plants"
  daygrid tasks list
  daygrid tasks move task-abc --before task-def
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
			log.SetLevel(log.DebugLevel)
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("DAYGRID_DIR", ""), "Path to store dir (default: ~/.daygrid)")
	cmd.PersistentFlags().StringVar(&app.Date, "date", "", "Board date (YYYY-MM-DD, default: today)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newTasksCmd(app))

	return cmd
}

func runTUI(app *App) error {
	st, err := openStore(app)
	if err != nil {
		return err
	}
	defer st.Close()
	return tui.Run(st, app.date())
}

func openStore(app *App) (*store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return store.Open(context.Background(), dir)
}

// date resolves the working date, defaulting to today.
func (a *App) date() string {
	if strings.TrimSpace(a.Date) != "" {
		return a.Date
	}
	return time.Now().Format("2006-01-02")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
