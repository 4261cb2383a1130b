package dummyblob

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/trezcool/shule/core"
)

type object struct {
	ContentType string
	Content     []byte
}

// Store is an in-memory core.BlobStore for tests. Uploaded paths are kept
// in upload order; FailOn injects an upload error for paths ending in the
// given filename.
type Store struct {
	mu      sync.Mutex
	objects map[string]object
	paths   []string

	FailOn map[string]error // filename -> error
}

var _ core.BlobStore = (*Store)(nil)

func New() *Store {
	return &Store{
		objects: make(map[string]object),
		FailOn:  make(map[string]error),
	}
}

func (s *Store) Upload(_ context.Context, path, contentType string, content io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, err := range s.FailOn {
		if strings.HasSuffix(path, "-"+name) {
			return err
		}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.objects[path] = object{ContentType: contentType, Content: data}
	s.paths = append(s.paths, path)
	return nil
}

func (s *Store) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

// Paths returns the uploaded paths in upload order.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, len(s.paths))
	copy(paths, s.paths)
	return paths
}

// Object returns the stored object and whether it exists.
func (s *Store) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[path]
	return obj.Content, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
