package converter

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// Session holds the state of one import run. It is passed down to every
// shape factory, so two runs never share an image table.
type Session struct {
	ID        string
	StartedAt time.Time
	Images    *ImageStore
}

// NewSession creates the session for importing doc.
func NewSession(doc *sketch.Document) *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Images:    NewImageStore(doc.Images),
	}
}

// ImageStore maps image reference ids to embedded image data. The store is
// used to locate images; shape factories still render placeholders.
type ImageStore struct {
	images map[string]sketch.Image
}

// NewImageStore copies images into a new store.
func NewImageStore(images map[string]sketch.Image) *ImageStore {
	s := &ImageStore{images: make(map[string]sketch.Image, len(images))}
	maps.Copy(s.images, images)
	return s
}

// Len returns the number of stored images.
func (s *ImageStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.images)
}

// Lookup returns the image stored under ref.
func (s *ImageStore) Lookup(ref sketch.ImageRef) (sketch.Image, bool) {
	if s == nil || ref == "" {
		return sketch.Image{}, false
	}
	img, ok := s.images[string(ref)]
	return img, ok
}

// FindForLayer locates the image of a bitmap layer, or else the image of
// the first pattern fill in the layer style that can be found.
func (s *ImageStore) FindForLayer(layer sketch.Layer) (sketch.Image, sketch.ImageRef, bool) {
	if bm, ok := layer.(*sketch.Bitmap); ok {
		if img, ok := s.Lookup(bm.Image); ok {
			return img, bm.Image, true
		}
	}

	if layer == nil || layer.Base().Style == nil {
		return sketch.Image{}, "", false
	}
	for _, f := range layer.Base().Style.Fills {
		if f.Type != sketch.FillPattern || f.Image == "" {
			continue
		}
		if img, ok := s.Lookup(f.Image); ok {
			return img, f.Image, true
		}
	}
	return sketch.Image{}, "", false
}
