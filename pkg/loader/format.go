// Package loader turns a model descriptor into a scene graph: it fetches the
// bytes, picks the one codec registered for the format, and wraps every
// failure in a *LoadError.
package loader

import (
	"fmt"
	"path"
	"strings"
)

// Format is a model file format tag.
type Format string

const (
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
	FormatOBJ  Format = "obj"
	FormatFBX  Format = "fbx"
	FormatSTL  Format = "stl"
)

// Formats lists every supported tag.
var Formats = []Format{FormatGLB, FormatGLTF, FormatOBJ, FormatFBX, FormatSTL}

// ParseFormat accepts a tag in any case, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the format from a path or URL extension.
func FormatFromPath(p string) (Format, error) {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(p)
	if ext == "" {
		return "", fmt.Errorf("%w: no extension in %q", ErrUnsupportedFormat, p)
	}
	return ParseFormat(ext)
}

// ModelDescriptor identifies a model to load.
type ModelDescriptor struct {
	URL    string
	Format Format
}

// Describe builds a descriptor, inferring the format from the URL.
func Describe(url string) (ModelDescriptor, error) {
	f, err := FormatFromPath(url)
	if err != nil {
		return ModelDescriptor{}, err
	}
	return ModelDescriptor{URL: url, Format: f}, nil
}

// baseName strips directories and the extension.
func baseName(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimPrefix(p, SamplePrefix)
	b := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(b, path.Ext(b))
}
