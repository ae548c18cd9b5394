package plugin

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Inbound message types
const (
	TypeProcessSketchData = "process-sketch-data"
	TypeGetCurrentPage    = "get-current-page"
	TypeClosePlugin       = "close-plugin"
)

// Outbound message types
const (
	TypeCurrentPageInfo = "current-page-info"
	TypeImportProgress  = "import-progress"
	TypeImportComplete  = "import-complete"
	TypeImportError     = "import-error"
)

// CompletedMessage is the text of a successful import-complete message.
const CompletedMessage = "Sketch file imported successfully!"

// Texts of the import-error messages for documents without pages.
const (
	NoPagesMessage    = "Invalid Sketch data: No pages found"
	EmptyPagesMessage = "No pages found in Sketch file - the file may be empty or corrupted"
)

// Message is one message exchanged with the UI
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PageInfo is the payload of current-page-info
type PageInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Progress is the payload of import-progress
type Progress struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Complete is the payload of import-complete
type Complete struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Failure is the payload of import-error
type Failure struct {
	Error string `json:"error"`
}

// NewMessage builds a message with data encoded as JSON.
func NewMessage(typ string, data any) (Message, error) {
	msg := Message{Type: typ}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	msg.Data = raw
	return msg, nil
}

// DecodeMessage parses one JSON encoded message.
func DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// DecodeData decodes the payload of msg into v.
func DecodeData[T any](msg Message) (T, error) {
	var v T
	if len(msg.Data) == 0 {
		return v, fmt.Errorf("%s message has no data", msg.Type)
	}
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return v, nil
}
