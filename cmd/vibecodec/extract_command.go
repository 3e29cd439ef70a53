package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vibecodec/internal/codecerr"
	"vibecodec/internal/fileutil"
	"vibecodec/internal/vibe"
	"vibecodec/internal/vibecodec"
)

type vibeSummary struct {
	Name      string   `json:"name"`
	Kind      string   `json:"type"`
	Models    []string `json:"models,omitempty"`
	Thumbnail bool     `json:"thumbnail"`
	Image     bool     `json:"image"`
}

type extractOutput struct {
	File      string        `json:"file"`
	Input     string        `json:"input"`
	State     string        `json:"state"`
	Source    string        `json:"source,omitempty"`
	Chunk     string        `json:"chunk,omitempty"`
	Container string        `json:"container,omitempty"`
	Vibes     []vibeSummary `json:"vibes,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Path      []string      `json:"path"`

	state vibecodec.State
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var thumbnailPath string
	var raw bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Recover a vibe document from a PNG image or JSON file",
		Long: "Recover a vibe document from a PNG image or JSON file.\n\n" +
			"PNG text chunks are checked first, then alpha-channel stealth data.\n" +
			"Use - to read from stdin. Finding nothing is not an error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := ctx.codec(cmd)
			if err != nil {
				return err
			}
			data, err := fileutil.ReadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			result := codec.Extract(data)
			summaryOut := cmd.OutOrStdout()
			if out := strings.TrimSpace(outPath); out != "" && result.Found() {
				doc := result.Document
				if !raw {
					if doc, err = vibe.MarshalIndent(result.Container); err != nil {
						return fmt.Errorf("encode extracted vibe: %w", err)
					}
				}
				if err := fileutil.WriteOutput(out, cmd.OutOrStdout(), doc, 0o644); err != nil {
					return err
				}
				if out == fileutil.StdioPath {
					summaryOut = cmd.ErrOrStderr()
				}
			}

			if thumb := strings.TrimSpace(thumbnailPath); thumb != "" && result.Found() {
				if err := writeThumbnail(cmd, thumb, result.Container.Records()); err != nil {
					return err
				}
			}

			summary := summarizeExtraction(args[0], result)
			if ctx.jsonOutput() {
				if err := writeJSONTo(summaryOut, summary); err != nil {
					return err
				}
			} else {
				renderExtraction(summaryOut, summary, shouldColorize(summaryOut))
			}

			if result.Failed() {
				return fmt.Errorf("extract %s: %w", args[0], result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the recovered vibe JSON to this path (- for stdout)")
	cmd.Flags().BoolVar(&raw, "raw", false, "With --out, write the embedded document exactly as stored")
	cmd.Flags().StringVar(&thumbnailPath, "thumbnail", "", "Write the first embedded thumbnail image to this path")
	return cmd
}

// writeThumbnail decodes the first record thumbnail and writes it to path.
func writeThumbnail(cmd *cobra.Command, path string, records []vibe.Record) error {
	for _, r := range records {
		if !r.HasThumbnail() {
			continue
		}
		data, err := r.ThumbnailBytes()
		if err != nil {
			return fmt.Errorf("decode thumbnail of %q: %w", r.Name, err)
		}
		return fileutil.WriteFileAtomic(path, data, 0o644)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "No thumbnail present; %s not written\n", path)
	return nil
}

func summarizeExtraction(file string, result vibecodec.Result) extractOutput {
	out := extractOutput{
		File:   file,
		Input:  result.Input.String(),
		State:  result.State.String(),
		Source: string(result.Source),
		Chunk:  result.Chunk,
		Path:   make([]string, 0, len(result.Path)),
		state:  result.State,
	}
	for _, s := range result.Path {
		out.Path = append(out.Path, s.String())
	}
	if result.Found() {
		out.Container = result.Container.Kind().String()
		out.Vibes = summarizeRecords(result.Container.Records())
	}
	if result.Err != nil {
		out.ErrorKind = codecerr.KindName(result.Err)
		out.Error = result.Err.Error()
	}
	return out
}

func summarizeRecords(records []vibe.Record) []vibeSummary {
	out := make([]vibeSummary, 0, len(records))
	for _, r := range records {
		out = append(out, vibeSummary{
			Name:      r.Name,
			Kind:      string(r.Kind),
			Models:    r.Encodings.Models(),
			Thumbnail: r.HasThumbnail(),
			Image:     r.HasImage(),
		})
	}
	return out
}

func renderExtraction(w io.Writer, s extractOutput, colorize bool) {
	for _, line := range renderSectionHeader(s.File, colorize) {
		fmt.Fprintln(w, line)
	}
	message := s.State
	if s.Source != "" {
		message = fmt.Sprintf("%s via %s", s.State, s.Source)
	}
	if s.Chunk != "" {
		message += " (" + s.Chunk + ")"
	}
	fmt.Fprintln(w, renderStatusLine("Result", stateStatus(s.state), message, colorize))
	fmt.Fprintln(w, renderField("Input", s.Input))
	if s.Error != "" {
		fmt.Fprintln(w, renderField("Error", s.Error))
	}
	if s.Container != "" {
		fmt.Fprintln(w, renderField("Container", fmt.Sprintf("%s, %d vibe(s)", s.Container, len(s.Vibes))))
	}
	for i, v := range s.Vibes {
		models := strings.Join(v.Models, ", ")
		if models == "" {
			models = "none"
		}
		fmt.Fprintln(w, renderField(fmt.Sprintf("Vibe %d", i+1),
			fmt.Sprintf("%s [%s] models: %s, thumbnail: %s", v.Name, v.Kind, models, yesNo(v.Thumbnail))))
	}
}
