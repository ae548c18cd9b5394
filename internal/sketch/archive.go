package sketch

import (
	"archive/zip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
)

var (
	ErrDocumentNotFound = errors.New("document.json not found")
	ErrPageNotFound     = errors.New("page file not found")
)

// ArchiveReader provides access to the contents of a .sketch file
type ArchiveReader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
}

// OpenArchive opens a .sketch file and checks that it carries a document
func OpenArchive(path string) (*ArchiveReader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sketch file: %w", err)
	}

	reader := &ArchiveReader{
		zipReader: zr,
		files:     make(map[string]*zip.File),
	}

	for _, f := range zr.File {
		reader.files[normalizePath(f.Name)] = f
	}

	if _, ok := reader.files["document.json"]; !ok {
		zr.Close()
		return nil, ErrDocumentNotFound
	}

	return reader, nil
}

// Close closes the archive
func (r *ArchiveReader) Close() error {
	return r.zipReader.Close()
}

// ReadFile reads the contents of a file from the archive
func (r *ArchiveReader) ReadFile(name string) ([]byte, error) {
	name = normalizePath(name)
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Document assembles the parsed document from document.json, meta.json,
// the referenced page files and the embedded images.
func (r *ArchiveReader) Document() (*Document, error) {
	data, err := r.ReadFile("document.json")
	if err != nil {
		return nil, err
	}
	root, err := parseObject(data)
	if err != nil {
		return nil, fmt.Errorf("document.json: %w", err)
	}

	doc := &Document{
		Pages:    []Page{},
		Images:   make(map[string]Image),
		Document: map[string]any(root),
	}

	if data, err := r.ReadFile("meta.json"); err == nil {
		if meta, err := parseObject(data); err == nil {
			doc.Meta = map[string]any(meta)
		}
	}

	refs, _ := root.array("pages")
	for _, v := range refs {
		ref := string(decodeImageRef(v))
		if ref == "" {
			continue
		}
		pageData, err := r.ReadFile(pageFileName(ref))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, ref)
		}
		pageRoot, err := parseObject(pageData)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pageFileName(ref), err)
		}
		page := decodePage(map[string]any(pageRoot))
		doc.Pages = append(doc.Pages, page)
		doc.Symbols = append(doc.Symbols, collectSymbols(page.Layers)...)
	}

	for _, name := range r.imageFiles() {
		data, err := r.ReadFile(name)
		if err != nil {
			return nil, err
		}
		doc.Images[name] = Image{
			DataURL: dataURL(name, data),
			Name:    path.Base(name),
		}
	}

	return doc, nil
}

// imageFiles returns the archive paths under images/ in sorted order.
func (r *ArchiveReader) imageFiles() []string {
	var names []string
	for name := range r.files {
		if strings.HasPrefix(name, "images/") && !strings.HasSuffix(name, "/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func pageFileName(ref string) string {
	if strings.HasSuffix(ref, ".json") {
		return ref
	}
	return ref + ".json"
}

func collectSymbols(layers []Layer) []Symbol {
	var symbols []Symbol
	for _, l := range layers {
		if Class(l) == ClassSymbolMaster {
			symbols = append(symbols, Symbol{Name: l.Base().Name})
		}
	}
	return symbols
}

func dataURL(name string, data []byte) string {
	mediaType := mime.TypeByExtension(path.Ext(name))
	if mediaType == "" {
		mediaType = "image/png"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// normalizePath normalizes file paths (removes ./ prefix)
func normalizePath(name string) string {
	return strings.TrimPrefix(name, "./")
}
