// Test program for the Sketch archive reader
//
// Usage:
//
//	go run ./cmd/test/sketch_reader/main.go <sketch-file> (<archive-path> ...)
//
// Opens the archive, prints the page and layer tree that the importer
// will walk, and dumps any extra archive entries named on the command line.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/yuanying/sketch2penpot/internal/sketch"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/test/sketch_reader/main.go <sketch-file> (<archive-path> ...)")
		os.Exit(1)
	}

	sketchPath := os.Args[1]
	entries := os.Args[2:]

	fmt.Printf("Opening Sketch file: %s\n", sketchPath)
	reader, err := sketch.OpenArchive(sketchPath)
	if err != nil {
		log.Fatalf("Failed to open Sketch file: %v", err)
	}
	defer reader.Close()

	doc, err := reader.Document()
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}
	fmt.Printf("✓ Document read: %d pages, %d symbols, %d images\n", len(doc.Pages), len(doc.Symbols), len(doc.Images))

	for i, page := range doc.Pages {
		fmt.Printf("\nPage %d: %q (%d layers)\n", i+1, page.Name, len(page.Layers))
		printLayers(page.Layers, 1)
	}

	if len(doc.Symbols) > 0 {
		fmt.Println("\nSymbols:")
		for _, s := range doc.Symbols {
			fmt.Printf("  - %s\n", s.Name)
		}
	}

	if len(doc.Images) > 0 {
		names := make([]string, 0, len(doc.Images))
		for ref := range doc.Images {
			names = append(names, ref)
		}
		sort.Strings(names)
		fmt.Println("\nImages:")
		for _, ref := range names {
			fmt.Printf("  - %s (%d bytes as data URL)\n", ref, len(doc.Images[ref].DataURL))
		}
	}

	for _, name := range entries {
		fmt.Printf("\nReading archive entry: %s\n", name)
		content, err := reader.ReadFile(name)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", name, err)
		}
		fmt.Printf("✓ %s read successfully (%d bytes)\n", name, len(content))
		fmt.Printf("Content:\n%s\n", string(content))
	}
}

func printLayers(layers []sketch.Layer, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, l := range layers {
		if l == nil {
			fmt.Printf("%s- <missing>\n", indent)
			continue
		}
		base := l.Base()
		class := base.Class
		if class == "" {
			class = "<no class>"
		}
		frame := ""
		if base.Frame != nil {
			frame = fmt.Sprintf(" @(%g, %g) %gx%g", base.Frame.X, base.Frame.Y, base.Frame.Width, base.Frame.Height)
		}
		fmt.Printf("%s- [%s] %q%s\n", indent, class, base.Name, frame)

		if p, ok := l.(sketch.Parent); ok {
			printLayers(p.Children(), depth+1)
		}
	}
}
