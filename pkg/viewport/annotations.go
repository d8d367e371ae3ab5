package viewport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/taigrr/meshview/pkg/math3d"
)

var (
	// ErrEmptyQuery rejects a blank search.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrSearchNotFound means no annotation label matched.
	ErrSearchNotFound = errors.New("no annotation matches query")
)

// Annotation is a saved label on one mesh.
type Annotation struct {
	ID          string      `json:"id"`
	ModelID     string      `json:"modelId"`
	MeshName    string      `json:"meshName"`
	MeshID      string      `json:"meshId"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	BoundingBox math3d.Box3 `json:"boundingBox"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// UnmarshalJSON also accepts the older meshUUID and aabb keys.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	type plain Annotation
	var raw struct {
		plain
		MeshUUID string       `json:"meshUUID"`
		AABB     *math3d.Box3 `json:"aabb"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Annotation(raw.plain)
	if a.MeshID == "" {
		a.MeshID = raw.MeshUUID
	}
	if raw.AABB != nil && a.BoundingBox == (math3d.Box3{}) {
		a.BoundingBox = *raw.AABB
	}
	return nil
}

// Ref is the mesh the annotation is attached to.
func (a Annotation) Ref() MeshRef {
	return MeshRef{Name: a.MeshName, ID: a.MeshID}
}

// AnnotationStore keeps annotations in creation order.
type AnnotationStore struct {
	mu    sync.RWMutex
	items []Annotation
}

// NewAnnotationStore returns an empty store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{}
}

// Add appends a, assigning a creation time when it has none.
func (s *AnnotationStore) Add(a Annotation) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.items = append(s.items, a)
	s.mu.Unlock()
}

// All returns a copy of every annotation.
func (s *AnnotationStore) All() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// Len is the number of stored annotations.
func (s *AnnotationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Search returns the first annotation, in creation order, whose label
// contains query ignoring case. A blank query is rejected; any other query
// is matched as given, surrounding spaces included.
func (s *AnnotationStore) Search(query string) (Annotation, error) {
	if strings.TrimSpace(query) == "" {
		return Annotation{}, ErrEmptyQuery
	}
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if strings.Contains(strings.ToLower(a.Label), q) {
			return a, nil
		}
	}
	return Annotation{}, fmt.Errorf("%q: %w", query, ErrSearchNotFound)
}

// WriteJSON writes the store as a pretty-printed JSON array.
func (s *AnnotationStore) WriteJSON(w io.Writer) error {
	items := s.All()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// ReadJSON appends every annotation in a JSON array read from r.
func (s *AnnotationStore) ReadJSON(r io.Reader) error {
	var items []Annotation
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("decode annotations: %w", err)
	}
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
	return nil
}

// LoadSeed reads a seed file once. A missing file is not an error and
// reports zero annotations.
func (s *AnnotationStore) LoadSeed(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	before := s.Len()
	if err := s.ReadJSON(f); err != nil {
		return 0, err
	}
	return s.Len() - before, nil
}

// SaveFile writes the store to path.
func (s *AnnotationStore) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create annotations file: %w", err)
	}
	if err := s.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
