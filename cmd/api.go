package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/anirec/internal/shared"
	"github.com/desertthunder/anirec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("compact"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIDump fetches every read endpoint. Signed-in endpoints are included when a token is stored.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	token, err := r.storedToken()
	if err != nil {
		r.logger.Warn("failed to read stored token", "error", err)
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := r.drainProgress(progress)
	dump, err := r.engine.Dump(ctx, progress, token != "")
	close(progress)
	<-done
	if err != nil {
		return err
	}

	for _, e := range dump.Errors {
		r.logger.Warn("endpoint failed", "endpoint", e.Endpoint, "error", e.Error)
	}

	if cmd.Bool("save") {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		r.logger.Info("dump saved", "file", saveFile)
		r.writePlain("✓ Dump saved to %s\n", saveFile)
	}

	return r.writeJSON(dump, true)
}
