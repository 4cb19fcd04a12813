package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/checkmate/internal/client"
	"github.com/dgallion1/checkmate/internal/importer"
	"github.com/dgallion1/checkmate/internal/parser"
)

// remoteFlags select a running server instead of the local database.
type remoteFlags struct {
	server string
	token  string
}

func (r *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.server, "server", "", "base URL of a running checkmate server")
	cmd.Flags().StringVar(&r.token, "token", os.Getenv("CHECKMATE_TOKEN"), "API token (default $CHECKMATE_TOKEN)")
}

func parseProjectID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("project id must be a positive integer, got %q", s)
	}
	return id, nil
}

func (a *app) importCmd() *cobra.Command {
	var (
		remote remoteFlags
		userID int64
		title  string
		wait   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import <project-id> <file>",
		Short: "Import sections and test cases from a document",
		Long: `Parse a test plan document and create its sections and test cases.

Headings become nested sections and the paragraphs or list items under them
become test cases. With --server the file is uploaded to a running server and
the command waits for the import job to finish.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			path := args[1]
			if !parser.IsSupportedExtension(path) {
				return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			var snap importer.JobSnapshot
			if remote.server != "" {
				snap, err = a.importRemote(cmd.Context(), remote, projectID, filepath.Base(path), data, wait)
			} else {
				snap, err = a.importLocal(cmd.Context(), projectID, userID, filepath.Base(path), title, data)
			}
			if err != nil {
				return err
			}
			renderJob(cmd.OutOrStdout(), snap)
			if snap.Status == importer.StatusFailed {
				return fmt.Errorf("import failed")
			}
			return nil
		},
	}
	remote.register(cmd)
	cmd.Flags().Int64Var(&userID, "user-id", 0, "user recorded as creator (local mode)")
	cmd.Flags().StringVar(&title, "title", "", "document title override (local mode)")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Minute, "how long to wait for a remote import")
	return cmd
}

// importLocal runs the same pipeline as the server workers, in process.
func (a *app) importLocal(ctx context.Context, projectID, userID int64, filename, title string, data []byte) (importer.JobSnapshot, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return importer.JobSnapshot{}, err
	}
	defer st.Close()
	if _, err := st.GetProject(ctx, projectID); err != nil {
		return importer.JobSnapshot{}, fmt.Errorf("project %d: %w", projectID, err)
	}

	w := importer.NewWorker(st, a.log, parser.Options{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext}, nil)
	return w.Run(ctx, importer.NewJob(projectID, userID, filename, title, data)), nil
}

func (a *app) importRemote(ctx context.Context, remote remoteFlags, projectID int64, filename string, data []byte, wait time.Duration) (importer.JobSnapshot, error) {
	c := client.NewClient(remote.server, remote.token)
	acc, err := c.Import(ctx, projectID, filename, data)
	if err != nil {
		return importer.JobSnapshot{}, err
	}
	a.log.Info("import queued", "job_id", acc.JobID)

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	snap, err := c.WaitImport(ctx, acc.JobID, 500*time.Millisecond)
	if err != nil {
		return importer.JobSnapshot{}, err
	}
	return *snap, nil
}

func renderJob(w io.Writer, snap importer.JobSnapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Job", "Status", "Sections new", "Sections existing", "Tests created", "Tests dropped"})
	p := snap.Progress
	t.AppendRow(table.Row{snap.ID, snap.Status, p.SectionsCreated, p.SectionsExisting, p.TestsCreated, p.TestsDropped})
	t.Render()
	for _, e := range p.Errors {
		_, _ = fmt.Fprintf(w, "error: %s\n", e)
	}
}
