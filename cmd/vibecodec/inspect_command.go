package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vibecodec/internal/fileutil"
	"vibecodec/internal/vibecodec"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.png>",
		Short: "List the chunks of a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec(cmd)
			if err != nil {
				return err
			}
			data, err := fileutil.ReadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := codec.Inspect(data)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			renderInspectReport(cmd.OutOrStdout(), args[0], report, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
}

func renderInspectReport(w io.Writer, file string, report vibecodec.Report, colorize bool) {
	for _, line := range renderSectionHeader(file, colorize) {
		fmt.Fprintln(w, line)
	}
	if report.Width > 0 {
		fmt.Fprintln(w, renderField("Dimensions", fmt.Sprintf("%dx%d", report.Width, report.Height)))
		fmt.Fprintln(w, renderField("Stealth capacity", fmt.Sprintf("%d bytes", report.CapacityBytes)))
	}
	if report.ScanError != "" {
		fmt.Fprintln(w, renderStatusLine("Scan", statusError, report.ScanError, colorize))
	}

	rows := make([][]string, 0, len(report.Chunks))
	for i, ch := range report.Chunks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ch.Type,
			strconv.FormatInt(ch.Offset, 10),
			strconv.FormatUint(uint64(ch.Length), 10),
			yesNo(ch.CRCValid),
			ch.Keyword,
			chunkNotes(ch),
		})
	}
	fmt.Fprintln(w, renderTable([]column{
		{header: "#", align: alignRight},
		{header: "Type"},
		{header: "Offset", align: alignRight},
		{header: "Length", align: alignRight},
		{header: "CRC OK"},
		{header: "Keyword", maxWidth: 24},
		{header: "Notes", maxWidth: 40},
	}, rows))
}

func chunkNotes(ch vibecodec.ChunkSummary) string {
	var notes []string
	if ch.Sentinel {
		notes = append(notes, "vibe payload")
	}
	if ch.Compressed {
		notes = append(notes, "compressed")
	}
	if ch.Error != "" {
		notes = append(notes, "decode error: "+ch.Error)
	}
	return strings.Join(notes, ", ")
}
