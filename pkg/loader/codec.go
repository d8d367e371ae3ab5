package loader

import (
	"context"

	"github.com/taigrr/meshview/pkg/scene"
)

// Codec decodes one format into a scene. Implementations return plain
// errors; the Loader classifies them.
type Codec interface {
	Decode(ctx context.Context, res Resource) (*scene.Scene, error)
}

// CodecFunc adapts a function to Codec.
type CodecFunc func(ctx context.Context, res Resource) (*scene.Scene, error)

// Decode calls f.
func (f CodecFunc) Decode(ctx context.Context, res Resource) (*scene.Scene, error) {
	return f(ctx, res)
}

// DefaultCodecs maps every supported format to its codec.
func DefaultCodecs() map[Format]Codec {
	gl := &GLTFCodec{}
	return map[Format]Codec{
		FormatGLB:  gl,
		FormatGLTF: gl,
		FormatOBJ:  &OBJCodec{},
		FormatFBX:  &FBXCodec{},
		FormatSTL:  &STLCodec{},
	}
}
