package converter

import (
	"testing"

	"github.com/yuanying/sketch2penpot/internal/sketch"
)

func TestNewSession_CopiesImages(t *testing.T) {
	images := map[string]sketch.Image{"images/a.png": {DataURL: "data:a"}}
	s := NewSession(&sketch.Document{Images: images})

	if s.ID == "" || s.StartedAt.IsZero() {
		t.Fatalf("session = %+v", s)
	}
	delete(images, "images/a.png")
	if _, ok := s.Images.Lookup("images/a.png"); !ok {
		t.Fatal("store should not share the source map")
	}
}

func TestImageStore_FindForLayer(t *testing.T) {
	store := NewImageStore(map[string]sketch.Image{
		"images/bitmap.png":  {Name: "bitmap"},
		"images/pattern.png": {Name: "pattern"},
	})

	tests := []struct {
		name     string
		layer    sketch.Layer
		wantName string
		wantOK   bool
	}{
		{
			name:     "bitmap image",
			layer:    &sketch.Bitmap{Image: "images/bitmap.png"},
			wantName: "bitmap",
			wantOK:   true,
		},
		{
			name: "pattern fill",
			layer: &sketch.Rectangle{LayerBase: sketch.LayerBase{Style: &sketch.Style{Fills: []sketch.Fill{
				{Type: sketch.FillSolid, Image: "images/bitmap.png"},
				{Type: sketch.FillPattern, Image: "images/missing.png"},
				{Type: sketch.FillPattern, Image: "images/pattern.png"},
			}}}},
			wantName: "pattern",
			wantOK:   true,
		},
		{
			name:  "bitmap falls back to pattern",
			layer: &sketch.Bitmap{Image: "images/missing.png"},
		},
		{
			name:  "no style",
			layer: &sketch.Oval{},
		},
		{
			name:  "nil layer",
			layer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _, ok := store.FindForLayer(tt.layer)
			if ok != tt.wantOK || img.Name != tt.wantName {
				t.Fatalf("FindForLayer() = %+v, %v, want %q, %v", img, ok, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestImageStore_Nil(t *testing.T) {
	var s *ImageStore
	if s.Len() != 0 {
		t.Fatal("nil store should be empty")
	}
	if _, ok := s.Lookup("x"); ok {
		t.Fatal("nil store should find nothing")
	}
}

func TestTally(t *testing.T) {
	outcomes := []Outcome{
		{Class: "group", Children: []Outcome{{Class: "rectangle"}, {Err: ErrNoClass}}},
		{Class: "oval", Err: &LayerError{Class: "oval", Err: ErrNoClass}},
	}
	if created, skipped := Tally(outcomes); created != 2 || skipped != 2 {
		t.Fatalf("Tally() = %d, %d, want 2, 2", created, skipped)
	}
}
