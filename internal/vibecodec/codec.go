package vibecodec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"

	"vibecodec/internal/codecerr"
	"vibecodec/internal/config"
	"vibecodec/internal/logging"
	"vibecodec/internal/pngchunk"
	"vibecodec/internal/pngtext"
	"vibecodec/internal/stealth"
	"vibecodec/internal/vibe"
)

// Codec extracts and embeds vibe payloads. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	stealth   *stealth.Codec
	text      pngtext.Decoder
	chunkMode pngtext.Mode
	logger    *slog.Logger
}

// Option customizes a Codec.
type Option func(*Codec)

// WithLogger sets the logger transitions and warnings are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStealth replaces the alpha-channel codec.
func WithStealth(s *stealth.Codec) Option {
	return func(c *Codec) {
		if s != nil {
			c.stealth = s
		}
	}
}

// WithTextDecoder replaces the text chunk decoder.
func WithTextDecoder(d pngtext.Decoder) Option {
	return func(c *Codec) {
		c.text = d
	}
}

// WithChunkMode sets the chunk type EmbedChunk writes.
func WithChunkMode(mode pngtext.Mode) Option {
	return func(c *Codec) {
		c.chunkMode = mode
	}
}

// New returns a codec with default stealth markers and a tEXt chunk mode.
func New(opts ...Option) *Codec {
	c := &Codec{
		stealth:   stealth.New(),
		text:      pngtext.Decoder{MaxInflatedBytes: pngtext.DefaultMaxInflatedBytes},
		chunkMode: pngtext.ModeText,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "vibecodec")
	return c
}

// NewFromConfig builds a codec from the stealth and chunk sections of cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Codec, error) {
	if cfg == nil {
		return New(WithLogger(logger)), nil
	}
	mode, err := pngtext.ParseMode(cfg.Chunks.Mode)
	if err != nil {
		return nil, fmt.Errorf("chunks.mode: %w", err)
	}
	sc := stealth.New(
		stealth.WithMagic([]byte(cfg.Stealth.Magic)),
		stealth.WithAltMagics(cfg.StealthMagics()...),
		stealth.WithMaxInflatedBytes(cfg.Stealth.MaxInflatedBytes),
		stealth.WithCompressionLevel(cfg.Stealth.CompressionLevel),
	)
	return New(
		WithLogger(logger),
		WithStealth(sc),
		WithTextDecoder(pngtext.Decoder{MaxInflatedBytes: cfg.Chunks.MaxInflatedBytes}),
		WithChunkMode(mode),
	), nil
}

// Extract classifies data and recovers any vibe container it carries.
func (c *Codec) Extract(data []byte) Result {
	run := c.newRun()
	run.result.Input = Classify(data)

	switch run.result.Input {
	case InputPNG:
		run.fire(EventIsPNG)
		return c.extractPNG(run, data)
	case InputJSON:
		run.fire(EventIsJSON)
		run.result.Source = SourceJSON
		return c.parseDocument(run, data)
	default:
		return run.fail(EventUnknown, codecerr.Format(codecerr.ErrUnknownInput, "input is neither a PNG stream nor a JSON document"))
	}
}

func (c *Codec) extractPNG(run *extraction, data []byte) Result {
	chunks, err := pngchunk.Scan(data)
	if err != nil {
		return run.fail(EventError, err)
	}

	for _, ch := range chunks {
		if !ch.IsText() {
			continue
		}
		if !ch.CRCValid() {
			logging.WarnWithContext(c.logger, "text chunk CRC mismatch", "chunk_crc_mismatch",
				logging.String(logging.FieldChunk, ch.Type),
				logging.Int64("offset", ch.Offset),
				logging.String(logging.FieldErrorHint, "file may have been edited by a tool that did not update CRCs"),
				logging.String(logging.FieldImpact, "chunk decoded anyway"),
			)
		}
		rec, _, err := c.text.Decode(ch)
		if err != nil {
			if kw, ok := pngchunk.Keyword(ch); ok && kw == pngtext.SentinelKeyword {
				run.result.Chunk = ch.Type
				return run.fail(EventError, err)
			}
			logging.WarnWithContext(c.logger, "skipping undecodable text chunk", "text_chunk_skipped",
				logging.String(logging.FieldChunk, ch.Type),
				logging.Error(err),
				logging.String(logging.FieldErrorKind, codecerr.KindName(err)),
				logging.String(logging.FieldImpact, "chunk ignored, it does not carry the vibe keyword"),
			)
			continue
		}
		if rec.IsSentinel() {
			run.result.Source = SourceChunk
			run.result.Chunk = ch.Type
			run.fire(EventChunkMatched, logging.String(logging.FieldChunk, ch.Type))
			return c.parseDocument(run, rec.Metadata)
		}
	}
	run.fire(EventNoChunk)

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return run.fail(EventError, codecerr.Format(codecerr.ErrCorruptPayload, "decode raster").InChunk(pngchunk.TypeIDAT).Wrapping(err))
	}
	payload, ok, err := c.stealth.Decode(img)
	if err != nil {
		return run.fail(EventError, err)
	}
	if !ok {
		run.fire(EventStealthAbsent)
		return run.finish()
	}
	run.result.Source = SourceStealth
	run.fire(EventStealthFound, logging.Int("payload_bytes", len(payload)))
	return c.parseDocument(run, payload)
}

func (c *Codec) parseDocument(run *extraction, doc []byte) Result {
	container, err := vibe.Parse(doc)
	if err != nil {
		return run.fail(EventError, err)
	}
	run.result.Container = container
	run.result.Document = doc
	switch container.Kind() {
	case vibe.ContainerBundle:
		run.fire(EventBundle, logging.Int("vibes", len(container.Records())))
	default:
		rec, _ := container.Single()
		run.fire(EventSingle, logging.String(logging.FieldVibeName, rec.Name))
	}
	return run.finish()
}

// Embed hides payload in the alpha channel of a copy of img. The copy keeps
// the sample depth of img, 8 or 16 bits.
func (c *Codec) Embed(img image.Image, payload []byte) (draw.Image, error) {
	out, err := c.stealth.Encode(img, payload)
	if err != nil {
		c.logger.Debug("stealth embed failed", logging.Args(
			logging.Error(err),
			logging.Int("payload_bytes", len(payload)),
			logging.Int("capacity_bytes", c.stealth.Capacity(img.Bounds())),
		)...)
		return nil, err
	}
	c.logger.Debug("stealth payload embedded", logging.Args(
		logging.Int("payload_bytes", len(payload)),
		logging.Int("width", img.Bounds().Dx()),
		logging.Int("height", img.Bounds().Dy()),
	)...)
	return out, nil
}

// EmbedContainer serialises container and embeds it with Embed.
func (c *Codec) EmbedContainer(img image.Image, container vibe.Container) (draw.Image, error) {
	if err := container.Validate(); err != nil {
		return nil, err
	}
	doc, err := vibe.Marshal(container)
	if err != nil {
		return nil, err
	}
	return c.Embed(img, doc)
}

// EmbedPNG decodes a PNG stream, embeds payload in its alpha channel, and
// re-encodes it. Text chunks in the source are not carried over.
func (c *Codec) EmbedPNG(data []byte, payload []byte) ([]byte, error) {
	if !pngchunk.HasSignature(data) {
		return nil, codecerr.Format(codecerr.ErrInvalidSignature, "missing PNG signature")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, codecerr.Format(codecerr.ErrCorruptPayload, "decode raster").InChunk(pngchunk.TypeIDAT).Wrapping(err)
	}
	out, err := c.Embed(img, payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EmbedChunk writes payload into a sentinel text chunk placed before the
// first IDAT, replacing any existing sentinel chunk.
func (c *Codec) EmbedChunk(data []byte, payload []byte) ([]byte, error) {
	chunks, err := pngchunk.Scan(data)
	if err != nil {
		return nil, err
	}
	sentinel, err := pngtext.EncodeSentinel(payload, c.chunkMode)
	if err != nil {
		return nil, fmt.Errorf("encode sentinel chunk: %w", err)
	}
	before := len(chunks)
	chunks = pngchunk.RemoveText(chunks, pngtext.SentinelKeyword)
	chunks = pngchunk.InsertBeforeIDAT(chunks, sentinel)
	c.logger.Debug("sentinel chunk written", logging.Args(
		logging.String(logging.FieldChunk, sentinel.Type),
		logging.String("mode", c.chunkMode.String()),
		logging.Int("replaced", before-len(chunks)+1),
	)...)
	return pngchunk.Encode(chunks), nil
}

type extraction struct {
	logger *slog.Logger
	result Result
}

func (c *Codec) newRun() *extraction {
	return &extraction{
		logger: c.logger,
		result: Result{State: StateDetect, Path: []State{StateDetect}},
	}
}

func (e *extraction) fire(ev Event, attrs ...logging.Attr) {
	from := e.result.State
	to := Next(from, ev)
	e.result.State = to
	e.result.Path = append(e.result.Path, to)
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		attrs = append(attrs,
			logging.String("from", from.String()),
			logging.String(logging.FieldState, to.String()),
			logging.String(logging.FieldEventType, ev.String()),
		)
		e.logger.Debug("extractor transition", logging.Args(attrs...)...)
	}
}

func (e *extraction) fail(ev Event, err error) Result {
	e.fire(ev)
	e.result.State = StateFailed
	e.result.Err = err
	e.logger.Debug("extraction failed", logging.Args(
		logging.Error(err),
		logging.String(logging.FieldErrorKind, codecerr.KindName(err)),
		logging.String(logging.FieldInput, e.result.Input.String()),
	)...)
	return e.result
}

func (e *extraction) finish() Result {
	e.logger.Debug("extraction finished", logging.Args(
		logging.String(logging.FieldState, e.result.State.String()),
		logging.String(logging.FieldSource, string(e.result.Source)),
	)...)
	return e.result
}
