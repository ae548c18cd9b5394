// Package export renders a host document snapshot as JSON, msgpack, HTML
// or a PNG page preview.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/yuanying/sketch2penpot/internal/memhost"
)

// Format is an output format
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatHTML    Format = "html"
	FormatPNG     Format = "png"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatMsgpack, FormatHTML, FormatPNG}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, msgpack, html or png)", s)
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return "." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMsgpack:
		return "application/msgpack"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Write renders snap to w in format f. PNG renders the current page.
func Write(w io.Writer, snap memhost.Snapshot, f Format, opts PreviewOptions) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, snap)
	case FormatMsgpack:
		return WriteMsgpack(w, snap)
	case FormatHTML:
		html, err := BuildHTML(snap)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case FormatPNG:
		page, ok := snap.Page(snap.CurrentPageID)
		if !ok {
			if len(snap.Pages) == 0 {
				return fmt.Errorf("no page to preview")
			}
			page = snap.Pages[0]
		}
		return WritePreview(w, page, opts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteJSON writes snap as indented JSON.
func WriteJSON(w io.Writer, snap memhost.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// WriteMsgpack writes snap as msgpack, keyed by the JSON field names.
func WriteMsgpack(w io.Writer, snap memhost.Snapshot) error {
	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadMsgpack decodes a snapshot written by WriteMsgpack.
func ReadMsgpack(data []byte) (memhost.Snapshot, error) {
	var snap memhost.Snapshot
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return memhost.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
