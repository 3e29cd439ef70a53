package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vibecodec/internal/fileutil"
	"vibecodec/internal/library"
	"vibecodec/internal/textutil"
	"vibecodec/internal/vibe"
)

const shortIDLength = 8

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the local vibe library",
	}

	libraryCmd.AddCommand(newLibraryImportCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryExportCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))

	return libraryCmd
}

type importOutput struct {
	File    string   `json:"file"`
	State   string   `json:"state"`
	BatchID string   `json:"batch_id,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

func newLibraryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Extract vibes from files and store them in the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec(cmd)
			if err != nil {
				return err
			}
			return ctx.withLibrary(cmd, func(store *library.Store) error {
				out := cmd.OutOrStdout()
				results := make([]importOutput, 0, len(args))
				for _, path := range args {
					data, err := fileutil.ReadInput(path, cmd.InOrStdin())
					if err != nil {
						return err
					}
					result := codec.Extract(data)
					row := importOutput{File: path, State: result.State.String()}
					if result.Failed() {
						return fmt.Errorf("extract %s: %w", path, result.Err)
					}
					if !result.Found() {
						results = append(results, row)
						if !ctx.jsonOutput() {
							fmt.Fprintf(out, "No vibe found in %s\n", path)
						}
						continue
					}

					entries, err := store.Import(commandCtx(cmd), result.Container, path)
					if err != nil {
						return fmt.Errorf("import %s: %w", path, err)
					}
					row.BatchID = entries[0].BatchID
					for _, e := range entries {
						row.IDs = append(row.IDs, e.ID)
					}
					results = append(results, row)
					if !ctx.jsonOutput() {
						fmt.Fprintf(out, "Imported %d vibe(s) from %s (batch %s)\n", len(entries), path, shortID(row.BatchID))
					}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				return nil
			})
		},
	}
}

type entryOutput struct {
	ID         string   `json:"id"`
	BatchID    string   `json:"batch_id"`
	Position   int      `json:"position"`
	Name       string   `json:"name"`
	Kind       string   `json:"type"`
	Models     []string `json:"models"`
	Source     string   `json:"source"`
	Digest     string   `json:"digest"`
	ImportedAt string   `json:"imported_at"`
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored vibes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd, func(store *library.Store) error {
				entries, err := store.List(commandCtx(cmd), library.ListOptions{Model: model})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					rows := make([]entryOutput, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, entryOutput{
							ID:         e.ID,
							BatchID:    e.BatchID,
							Position:   e.Position,
							Name:       e.Name,
							Kind:       string(e.Kind),
							Models:     e.Models,
							Source:     e.Source,
							Digest:     e.Digest,
							ImportedAt: e.ImportedAt.Format("2006-01-02T15:04:05Z07:00"),
						})
					}
					return writeJSON(cmd, rows)
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						shortID(e.ID),
						e.Name,
						string(e.Kind),
						strings.Join(e.Models, ", "),
						shortID(e.BatchID),
						e.Source,
						e.ImportedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "ID"},
					{header: "Name", maxWidth: 32},
					{header: "Type"},
					{header: "Models", maxWidth: 32},
					{header: "Batch"},
					{header: "Source", maxWidth: 40},
					{header: "Imported"},
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Only list vibes with an encoding for this model")
	return cmd
}

func newLibraryExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var batchID string
	var dir string

	cmd := &cobra.Command{
		Use:   "export [id]...",
		Short: "Export stored vibes as a bundle",
		Long: "Export stored vibes as a bundle.\n\n" +
			"IDs may be given in full or as a unique prefix; members keep argument order.\n" +
			"--batch exports every member of one import in its original order.\n" +
			"--dir writes each vibe to its own file instead of building a bundle.",
		RunE: func(cmd *cobra.Command, args []string) error {
			batchID = strings.TrimSpace(batchID)
			if batchID == "" && len(args) == 0 {
				return errors.New("give at least one id or --batch")
			}
			return ctx.withLibrary(cmd, func(store *library.Store) error {
				ids := args
				if batchID != "" {
					members, err := store.Batch(commandCtx(cmd), batchID)
					if err != nil {
						return err
					}
					ids = make([]string, 0, len(members)+len(args))
					for _, m := range members {
						ids = append(ids, m.ID)
					}
					ids = append(ids, args...)
				}
				if dir = strings.TrimSpace(dir); dir != "" {
					return exportSingles(cmd, store, dir, ids)
				}
				bundle, err := store.ExportBundle(commandCtx(cmd), ids...)
				if err != nil {
					return err
				}
				return writeContainer(cmd, outPath, vibe.BundleContainer(bundle))
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", fileutil.StdioPath, "Destination JSON path (- for stdout)")
	cmd.Flags().StringVar(&batchID, "batch", "", "Export the members of this import batch")
	cmd.Flags().StringVar(&dir, "dir", "", "Write one single-vibe JSON file per entry into this directory")
	return cmd
}

// exportSingles writes each entry as <name>-<short id>.json under dir.
func exportSingles(cmd *cobra.Command, store *library.Store, dir string, ids []string) error {
	entries := make([]library.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := store.Get(commandCtx(cmd), id)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	for _, entry := range entries {
		doc, err := vibe.MarshalIndent(vibe.SingleContainer(entry.Record))
		if err != nil {
			return fmt.Errorf("encode %s: %w", entry.ID, err)
		}
		name := textutil.FileStem(entry.Name, "vibe")
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", name, shortID(entry.ID)))
		if err := fileutil.WriteFileAtomic(path, doc, 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d vibe file(s) to %s\n", len(entries), dir)
	return nil
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove vibes from the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd, func(store *library.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					entry, err := store.Remove(commandCtx(cmd), id)
					if err != nil {
						return fmt.Errorf("remove %s: %w", id, err)
					}
					fmt.Fprintf(out, "Removed %s (%s)\n", entry.Name, shortID(entry.ID))
				}
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
