package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vibecodec/internal/fileutil"
	"vibecodec/internal/vibe"
)

func newBundleCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "bundle <vibe-file>...",
		Short: "Combine vibes into an ordered bundle",
		Long: "Combine vibes into an ordered bundle.\n\n" +
			"Each input may be a JSON document or a PNG carrying one. Bundles given as\n" +
			"input contribute all of their members. Members keep argument order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec(cmd)
			if err != nil {
				return err
			}
			var records []vibe.Record
			for _, path := range args {
				container, err := loadContainer(codec, cmd, path)
				if err != nil {
					return err
				}
				records = append(records, container.Records()...)
			}
			bundle, err := vibe.NewBundle(records...)
			if err != nil {
				return fmt.Errorf("build bundle: %w", err)
			}
			return writeContainer(cmd, outPath, vibe.BundleContainer(bundle))
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", fileutil.StdioPath, "Destination JSON path (- for stdout)")
	return cmd
}

// writeContainer writes c as indented JSON to path, reporting the write on
// stdout when path is a file.
func writeContainer(cmd *cobra.Command, path string, c vibe.Container) error {
	doc, err := vibe.MarshalIndent(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Kind(), err)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = fileutil.StdioPath
	}
	if err := fileutil.WriteOutput(path, cmd.OutOrStdout(), doc, 0o644); err != nil {
		return err
	}
	if path != fileutil.StdioPath {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d vibe(s) to %s\n", c.Kind(), len(c.Records()), path)
	}
	return nil
}
