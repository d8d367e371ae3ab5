package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/meshview/pkg/scene"
)

// Loader fetches and decodes models.
type Loader struct {
	fetcher *Fetcher
	codecs  map[Format]Codec
	log     *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithFetcher replaces the default fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(ld *Loader) { ld.fetcher = f }
}

// WithCodec registers c for f, replacing any existing codec for it.
func WithCodec(f Format, c Codec) Option {
	return func(ld *Loader) { ld.codecs[f] = c }
}

// New creates a Loader with the default codec for every format.
func New(opts ...Option) *Loader {
	l := &Loader{
		fetcher: NewFetcher(),
		codecs:  DefaultCodecs(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches desc.URL and decodes it with the codec for desc.Format. An
// empty Format is inferred from the URL. Load blocks until the codec
// finishes or ctx is done; either way every error is a *LoadError.
func (l *Loader) Load(ctx context.Context, desc ModelDescriptor) (*scene.Scene, error) {
	if desc.Format == "" {
		f, err := FormatFromPath(desc.URL)
		if err != nil {
			return nil, &LoadError{URL: desc.URL, Err: err}
		}
		desc.Format = f
	}
	fail := func(err error) (*scene.Scene, error) {
		l.log.Warn("model load failed",
			zap.String("url", desc.URL),
			zap.String("format", string(desc.Format)),
			zap.Error(err))
		return nil, &LoadError{URL: desc.URL, Format: desc.Format, Err: err}
	}

	codec, ok := l.codecs[desc.Format]
	if !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnsupportedFormat, desc.Format))
	}

	start := time.Now()
	l.log.Debug("loading model", zap.String("url", desc.URL), zap.String("format", string(desc.Format)))

	res, err := l.fetcher.Fetch(ctx, desc.URL)
	if err != nil {
		return fail(err)
	}

	type result struct {
		s   *scene.Scene
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{nil, fmt.Errorf("codec panic: %v", r)}
			}
		}()
		s, err := codec.Decode(ctx, res)
		done <- result{s, err}
	}()

	select {
	case <-ctx.Done():
		return fail(ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				return fail(r.err)
			}
			return fail(fmt.Errorf("%w: %w", ErrMalformed, r.err))
		}
		if r.s == nil || r.s.Root == nil {
			return fail(fmt.Errorf("%w: codec returned no scene", ErrMalformed))
		}
		r.s.Format = string(desc.Format)
		st := r.s.Stats()
		l.log.Info("model loaded",
			zap.String("url", desc.URL),
			zap.Int("nodes", st.Nodes),
			zap.Int("meshes", st.Meshes),
			zap.Int("triangles", st.Triangles),
			zap.Int("clips", st.Clips),
			zap.Duration("elapsed", time.Since(start)))
		return r.s, nil
	}
}
