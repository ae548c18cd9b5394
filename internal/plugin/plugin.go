// Package plugin is the message front end of the importer. It receives UI
// messages, runs imports against the host document and reports progress
// and results back to the UI.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yuanying/sketch2penpot/internal/converter"
	"github.com/yuanying/sketch2penpot/internal/host"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

// Sender delivers outbound messages to the UI.
type Sender interface {
	Send(msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg Message) error

// Send calls f(msg).
func (f SenderFunc) Send(msg Message) error { return f(msg) }

// Plugin dispatches UI messages.
type Plugin struct {
	doc      host.Document
	ui       Sender
	pipeline *converter.Pipeline
	log      *slog.Logger

	mu         sync.Mutex
	lastReport *converter.Report
}

// New creates a plugin bound to doc that answers through ui.
func New(doc host.Document, ui Sender, opts converter.ConvertOptions) *Plugin {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Plugin{
		doc:      doc,
		ui:       ui,
		pipeline: converter.NewPipeline(doc, opts),
		log:      opts.Logger,
	}
}

// LastReport returns the report of the most recent successful import.
func (p *Plugin) LastReport() *converter.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReport
}

// Handle processes one inbound message. Import failures are reported to
// the UI as import-error messages; the returned error is only set when
// the UI could not be reached or the host failed to close.
func (p *Plugin) Handle(ctx context.Context, msg Message) error {
	p.log.Debug("received message", "type", msg.Type)

	switch msg.Type {
	case TypeProcessSketchData:
		return p.processSketchData(ctx, msg)
	case TypeGetCurrentPage:
		return p.currentPageInfo()
	case TypeClosePlugin:
		if err := p.doc.Close(); err != nil {
			return fmt.Errorf("close plugin: %w", err)
		}
		return nil
	default:
		p.log.Warn("ignoring unknown message type", "type", msg.Type)
		return nil
	}
}

// processSketchData decodes the payload and imports it. A payload that is
// not an object imports as a nil document, which reports missing pages.
// Any other decode failure is reported with its own reason.
func (p *Plugin) processSketchData(ctx context.Context, msg Message) error {
	var doc *sketch.Document
	if len(msg.Data) > 0 {
		decoded, err := sketch.DecodeDocument(msg.Data)
		switch {
		case errors.Is(err, sketch.ErrNotObject):
			p.log.Warn("sketch data is not an object", "error", err)
		case err != nil:
			p.log.Error("failed to decode sketch data", "error", err)
			return p.send(TypeImportError, Failure{Error: err.Error()})
		default:
			doc = decoded
		}
	}
	return p.Import(ctx, doc)
}

// Import runs one import of doc and reports the outcome to the UI.
func (p *Plugin) Import(ctx context.Context, doc *sketch.Document) error {
	var sendErr error
	report, err := p.pipeline.Import(ctx, doc, func(progress int, message string) {
		if err := p.send(TypeImportProgress, Progress{Progress: progress, Message: message}); err != nil {
			sendErr = errors.Join(sendErr, err)
		}
	})
	if err != nil {
		p.log.Error("error processing sketch data", "error", err)
		return errors.Join(sendErr, p.send(TypeImportError, Failure{Error: failureMessage(err)}))
	}

	p.mu.Lock()
	p.lastReport = report
	p.mu.Unlock()

	return errors.Join(sendErr, p.send(TypeImportComplete, Complete{Success: true, Message: CompletedMessage}))
}

// failureMessage returns the import-error text shown to the user for err.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, converter.ErrNoPages):
		return NoPagesMessage
	case errors.Is(err, converter.ErrEmptyPages):
		return EmptyPagesMessage
	default:
		return err.Error()
	}
}

// currentPageInfo answers get-current-page. Nothing is sent when the host
// has no current page.
func (p *Plugin) currentPageInfo() error {
	page := p.doc.CurrentPage()
	if page == nil {
		p.log.Warn("no current page")
		return nil
	}
	return p.send(TypeCurrentPageInfo, PageInfo{ID: page.ID(), Name: page.Name()})
}

func (p *Plugin) send(typ string, data any) error {
	msg, err := NewMessage(typ, data)
	if err != nil {
		return err
	}
	if err := p.ui.Send(msg); err != nil {
		p.log.Warn("failed to send message", "type", typ, "error", err)
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}
