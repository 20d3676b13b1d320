package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/logger"
)

var (
	ingestID    string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index documents into the corpus",
	Long: `Validates, chunks, embeds and indexes documents. Supported file
types are plain text and markdown. With --watch, the given directories
are monitored and new or changed files are ingested as they appear.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID override (single file only)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch directories and ingest on change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestID != "" && len(args) > 1 {
		return errors.New("--id can only be used with a single file")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	for _, path := range args {
		if err := ingestPath(ctx, cmd, a, path); err != nil {
			return err
		}
	}

	if ingestWatch {
		return watchPaths(cmd, a, args)
	}
	return nil
}

// ingestPath indexes a file, or every supported file in a directory.
func ingestPath(ctx context.Context, cmd *cobra.Command, a *app, path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !stat.IsDir() {
		return ingestFile(ctx, cmd, a, path, ingestID)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", path, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ingestFile(ctx, cmd, a, filepath.Join(path, entry.Name()), ""); err != nil {
			return err
		}
	}
	return nil
}

// ingestFile indexes one file. Skippable outcomes (unsupported type,
// duplicate, empty) are reported and do not fail a batch.
func ingestFile(ctx context.Context, cmd *cobra.Command, a *app, path, docID string) error {
	info, err := a.ingestor.IngestFile(ctx, path, docID)
	if err != nil {
		if skippable(err) {
			cmd.Printf("Skipped %s: %v\n", path, err)
			return nil
		}
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	cmd.Printf("Ingested %s as %s (%d chunks)\n", path, info.ID, info.Chunks)
	return nil
}

// skippable reports whether an ingest error should not abort a batch.
func skippable(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedType) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrNoContent)
}

// watchPaths blocks, ingesting files as they are created or written
// under the given directories, until interrupted.
func watchPaths(cmd *cobra.Command, a *app, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		dir := path
		if !stat.IsDir() {
			dir = filepath.Dir(path)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		cmd.Printf("Watching %s\n", dir)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	ctx := context.Background()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supportedExt(event.Name) {
				continue
			}
			if err := ingestFile(ctx, cmd, a, event.Name, ""); err != nil {
				logger.Error("Ingest %s failed: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		case <-sig:
			cmd.Println("Stopping watch")
			return nil
		}
	}
}

func supportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".log", ".md", ".markdown":
		return true
	}
	return false
}
