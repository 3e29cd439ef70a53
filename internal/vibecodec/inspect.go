package vibecodec

import (
	"bytes"
	"image"
	"image/png"

	"vibecodec/internal/codecerr"
	"vibecodec/internal/pngchunk"
)

// ChunkSummary describes one chunk for diagnostics.
type ChunkSummary struct {
	Type     string `json:"type"`
	Offset   int64  `json:"offset"`
	Length   uint32 `json:"length"`
	CRCValid bool   `json:"crc_valid"`
	Keyword  string `json:"keyword,omitempty"`
	// Compressed is set for text chunks whose text is zlib compressed.
	Compressed bool   `json:"compressed,omitempty"`
	Sentinel   bool   `json:"sentinel,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report is the result of Inspect.
type Report struct {
	Chunks []ChunkSummary `json:"chunks"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	// CapacityBytes is the largest compressed payload Embed can hide.
	CapacityBytes int `json:"capacity_bytes"`
	// ScanError is set when the chunk stream ended abnormally; Chunks then
	// holds everything read before the fault.
	ScanError string `json:"scan_error,omitempty"`
}

// Inspect lists the chunks of a PNG stream. Text chunk decode failures are
// reported per chunk rather than returned.
func (c *Codec) Inspect(data []byte) (Report, error) {
	chunks, err := pngchunk.Scan(data)
	if err != nil && !pngchunk.HasSignature(data) {
		return Report{}, err
	}

	var report Report
	if err != nil {
		report.ScanError = err.Error()
	}
	for _, ch := range chunks {
		summary := ChunkSummary{
			Type:     ch.Type,
			Offset:   ch.Offset,
			Length:   ch.Length,
			CRCValid: ch.CRCValid(),
		}
		if kw, ok := pngchunk.Keyword(ch); ok {
			summary.Keyword = kw
		}
		if ch.IsText() {
			rec, _, derr := c.text.Decode(ch)
			switch {
			case derr != nil:
				summary.Error = codecerr.KindName(derr)
			default:
				summary.Compressed = rec.Compressed
				summary.Sentinel = rec.IsSentinel()
			}
		}
		report.Chunks = append(report.Chunks, summary)
	}

	if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
		report.Width = cfg.Width
		report.Height = cfg.Height
		report.CapacityBytes = c.stealth.Capacity(image.Rect(0, 0, cfg.Width, cfg.Height))
	}
	return report, nil
}
