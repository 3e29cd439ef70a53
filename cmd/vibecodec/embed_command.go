package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vibecodec/internal/fileutil"
	"vibecodec/internal/vibe"
	"vibecodec/internal/vibecodec"
)

const (
	embedModeStealth = "stealth"
	embedModeChunk   = "chunk"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var mode string
	var chunkMode string

	cmd := &cobra.Command{
		Use:   "embed <image.png> <vibe-file>",
		Short: "Embed a vibe document into a PNG image",
		Long: "Embed a vibe document into a PNG image.\n\n" +
			"The vibe file may be a JSON document or an image that already carries one.\n" +
			"stealth mode hides the document in the alpha channel; chunk mode writes a\n" +
			"text chunk and leaves pixels untouched.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := strings.TrimSpace(outPath)
			if out == "" {
				return errors.New("--out is required")
			}
			mode = strings.ToLower(strings.TrimSpace(mode))
			if mode != embedModeStealth && mode != embedModeChunk {
				return fmt.Errorf("--mode: unsupported value %q (use stealth or chunk)", mode)
			}

			codec, err := ctx.codecWithChunkMode(cmd, chunkMode)
			if err != nil {
				return err
			}
			carrier, err := fileutil.ReadInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			container, err := loadContainer(codec, cmd, args[1])
			if err != nil {
				return err
			}
			payload, err := vibe.Marshal(container)
			if err != nil {
				return fmt.Errorf("encode vibe: %w", err)
			}

			var encoded []byte
			switch mode {
			case embedModeChunk:
				encoded, err = codec.EmbedChunk(carrier, payload)
			default:
				encoded, err = codec.EmbedPNG(carrier, payload)
			}
			if err != nil {
				return fmt.Errorf("embed into %s: %w", args[0], err)
			}
			if err := fileutil.WriteOutput(out, cmd.OutOrStdout(), encoded, 0o644); err != nil {
				return err
			}

			if out != fileutil.StdioPath {
				fmt.Fprintf(cmd.OutOrStdout(), "Embedded %s (%d bytes, %s) into %s\n",
					container.Kind(), len(payload), mode, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination PNG path (- for stdout)")
	cmd.Flags().StringVarP(&mode, "mode", "m", embedModeStealth, "Embedding mode: stealth or chunk")
	cmd.Flags().StringVar(&chunkMode, "chunk-mode", "", "Text chunk type for chunk mode: text, compressed, international, international-compressed")
	return cmd
}

// loadContainer reads a vibe container from a JSON document or a PNG that
// carries one.
func loadContainer(codec *vibecodec.Codec, cmd *cobra.Command, path string) (vibe.Container, error) {
	data, err := fileutil.ReadInput(path, cmd.InOrStdin())
	if err != nil {
		return vibe.Container{}, err
	}
	result := codec.Extract(data)
	switch {
	case result.Found():
		return result.Container, nil
	case result.Failed():
		return vibe.Container{}, fmt.Errorf("read vibe from %s: %w", path, result.Err)
	default:
		return vibe.Container{}, fmt.Errorf("no vibe found in %s", path)
	}
}
