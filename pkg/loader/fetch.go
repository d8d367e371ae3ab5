package loader

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// SamplePrefix selects a model bundled with the binary, e.g. "res:bike.obj".
const SamplePrefix = "res:"

//go:embed samples
var samples embed.FS

// Samples lists the bundled sample model names.
func Samples() []string {
	entries, err := fs.ReadDir(samples, "samples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, SamplePrefix+e.Name())
	}
	return names
}

// Resource is the fetched content of a model.
type Resource struct {
	Name string // base name without extension
	Data []byte
	// Path is set when the model is a local file, so codecs can resolve
	// sibling files such as external glTF buffers.
	Path string
}

// Fetcher resolves model URLs to bytes.
type Fetcher struct {
	Client  *http.Client
	Samples fs.FS
}

// NewFetcher returns a fetcher using http.DefaultClient and the bundled samples.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: http.DefaultClient, Samples: samples}
}

// Fetch reads url. Every failure wraps ErrUnreachable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Resource, error) {
	res := Resource{Name: baseName(url)}
	var err error
	switch {
	case strings.HasPrefix(url, SamplePrefix):
		res.Data, err = fs.ReadFile(f.Samples, "samples/"+strings.TrimPrefix(url, SamplePrefix))
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		res.Data, err = f.fetchHTTP(ctx, url)
	default:
		res.Path = strings.TrimPrefix(url, "file://")
		res.Data, err = os.ReadFile(res.Path)
	}
	if err != nil {
		return Resource{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return res, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}
	return io.ReadAll(resp.Body)
}
