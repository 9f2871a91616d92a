package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daygrid/internal/engine"
	"daygrid/internal/model"
	"daygrid/internal/order"
	"daygrid/internal/store"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Create, list and move tasks",
	}
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksBuryCmd(app))
	cmd.AddCommand(newTasksReviveCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to the board date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			ctx := cmd.Context()

			cat, ok := model.ParseCategory(category)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown category %q", category))
			}
			id, err := store.NewTaskID()
			if err != nil {
				return writeErr(cmd, err)
			}

			// New tasks land at the tail of their container.
			snap, err := st.Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			last := ""
			if members := snap.TasksIn(model.DayID(app.date(), cat, model.StateActive)); len(members) > 0 {
				last = members[len(members)-1].Order
			}
			key, err := order.KeyAfter(last)
			if err != nil {
				return writeErr(cmd, err)
			}

			t := model.Task{
				ID:        id,
				Text:      args[0],
				Date:      app.date(),
				Category:  cat,
				State:     model.StateActive,
				Order:     key,
				CreatedAt: time.Now().UTC(),
			}
			if err := st.AddTask(ctx, t); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(model.CategoryLife), "Task category (life|work)")
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var graveyard bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for the board date, grouped by container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			snap, err := st.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if graveyard {
				return writeOut(cmd, app, map[string]any{"data": snap.Graveyard})
			}
			out := map[string][]model.Task{}
			for _, cat := range model.Categories() {
				for _, state := range []model.TaskState{model.StateActive, model.StateCompleted, model.StateFailed} {
					id := model.DayID(app.date(), cat, state)
					if members := snap.TasksIn(id); len(members) > 0 {
						out[id.String()] = members
					}
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&graveyard, "graveyard", false, "List graveyard tasks instead")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task, rendering its text as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			t, err := st.GetTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if raw {
				return writeOut(cmd, app, map[string]any{"data": t})
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
			if err != nil {
				return writeErr(cmd, err)
			}
			body, err := r.Render(t.Text)
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), body)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the task record as JSON instead")
	return cmd
}

// newTasksMoveCmd drives a whole drag gesture through the engine: pick the
// task up, drop it on a sibling (insert before) or a container (append).
func newTasksMoveCmd(app *App) *cobra.Command {
	var before string
	var onto string
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task before a sibling or onto a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (before == "" && onto == "") || (before != "" && onto != "") {
				return writeErr(cmd, errors.New("provide exactly one of --before or --onto"))
			}
			target := before
			if onto != "" {
				if _, ok := model.ParseContainerID(onto); !ok {
					return writeErr(cmd, fmt.Errorf("invalid container %q (want <date>/<category>/<state> or %q)", onto, model.GraveyardKey))
				}
				target = onto
			}
			return runGesture(cmd, app, args[0], target, false)
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Drop on this task, inserting before it")
	cmd.Flags().StringVar(&onto, "onto", "", "Drop on this container, appending")
	return cmd
}

func newTasksBuryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bury <task-id>",
		Short: "Move a task into the graveyard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGesture(cmd, app, args[0], model.GraveyardKey, false)
		},
	}
}

func newTasksReviveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revive <task-id>",
		Short: "Bring a graveyard task back onto the board date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := model.DayID(app.date(), model.CategoryLife, model.StateActive)
			return runGesture(cmd, app, args[0], target.String(), true)
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			if err := st.DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
}

// runGesture loads the board, performs drag-start + drag-end against the
// target id, and reports the task's stored record afterwards. Persistence is
// synchronous here so the write is confirmed before the process exits.
func runGesture(cmd *cobra.Command, app *App, taskID, targetID string, mustBeBuried bool) error {
	st, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := st.Load(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	_, at, ok := snap.Locate(taskID)
	if !ok {
		return writeErr(cmd, fmt.Errorf("task %q not found", taskID))
	}
	if mustBeBuried && !at.Graveyard {
		return writeErr(cmd, fmt.Errorf("task %q is not buried", taskID))
	}

	var persistErr error
	e := engine.New(snap, st,
		engine.WithSynchronousPersistence(),
		engine.WithRecovery(func() { persistErr = errors.New("persistence failed; run list to resync") }),
	)
	e.DragStart(taskID)
	e.DragEnd(ctx, strings.TrimSpace(targetID))
	if persistErr != nil {
		return writeErr(cmd, persistErr)
	}

	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": t})
}
