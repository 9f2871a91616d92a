package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func writeOut(cmd *cobra.Command, app *App, v any) error {
	var (
		b   []byte
		err error
	)
	if app.PrettyJSON {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func writeErr(cmd *cobra.Command, err error) error {
	payload := map[string]any{"error": err.Error()}
	b, merr := json.Marshal(payload)
	if merr != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), string(b))
	return err
}
