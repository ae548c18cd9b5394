// Package bridge exposes the plugin over HTTP and WebSocket so a browser UI
// can drive imports against an in-memory host document.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yuanying/sketch2penpot/internal/converter"
	"github.com/yuanying/sketch2penpot/internal/export"
	"github.com/yuanying/sketch2penpot/internal/memhost"
	"github.com/yuanying/sketch2penpot/internal/plugin"
)

const defaultBodyLimit = "256M"

// Options configures the bridge server
type Options struct {
	Addr        string
	ReadTimeout time.Duration
	Convert     converter.ConvertOptions
	Preview     export.PreviewOptions
	Logger      *slog.Logger
}

// Server serves one host document. Inbound messages are handled one at a
// time; outbound messages go back to the client that sent the message.
type Server struct {
	echo   *echo.Echo
	doc    *memhost.Document
	plugin *plugin.Plugin
	opts   Options
	log    *slog.Logger

	handleMu sync.Mutex
	sink     func(plugin.Message) error
}

// New creates a server for doc and registers its routes.
func New(doc *memhost.Document, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Convert.Logger == nil {
		opts.Convert.Logger = opts.Logger
	}

	s := &Server{
		echo: echo.New(),
		doc:  doc,
		opts: opts,
		log:  opts.Logger,
	}
	s.plugin = plugin.New(doc, s, opts.Convert)

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = opts.ReadTimeout
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(defaultBodyLimit))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/ws", s.handleWebSocket)

	api := e.Group("/api")
	api.POST("/messages", s.handleMessage)
	api.GET("/document", s.handleDocument(export.FormatJSON))
	api.GET("/document/msgpack", s.handleDocument(export.FormatMsgpack))
	api.GET("/document/html", s.handleDocument(export.FormatHTML))
	api.GET("/pages/:id/preview.png", s.handlePreview)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("bridge listening", "addr", s.opts.Addr)
	if err := s.echo.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Send implements plugin.Sender. It is only called while dispatch holds
// handleMu.
func (s *Server) Send(msg plugin.Message) error {
	if s.sink == nil {
		s.log.Warn("dropping message without receiver", "type", msg.Type)
		return nil
	}
	return s.sink(msg)
}

// dispatch hands msg to the plugin and routes its replies to sink.
func (s *Server) dispatch(ctx context.Context, msg plugin.Message, sink func(plugin.Message) error) error {
	s.handleMu.Lock()
	defer s.handleMu.Unlock()

	s.sink = sink
	defer func() { s.sink = nil }()
	return s.plugin.Handle(ctx, msg)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleMessage handles one inbound message and responds with the list of
// outbound messages it produced.
func (s *Server) handleMessage(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	msg, err := plugin.DecodeMessage(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	replies := []plugin.Message{}
	err = s.dispatch(c.Request().Context(), msg, func(m plugin.Message) error {
		replies = append(replies, m)
		return nil
	})
	if err != nil {
		s.log.Error("message handling failed", "type", msg.Type, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

func (s *Server) handleDocument(f export.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		var buf bytes.Buffer
		if err := export.Write(&buf, s.doc.Snapshot(), f, s.opts.Preview); err != nil {
			s.log.Error("export failed", "format", f, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to export document")
		}
		return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
	}
}

func (s *Server) handlePreview(c echo.Context) error {
	page, ok := s.doc.Snapshot().Page(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}
	var buf bytes.Buffer
	if err := export.WritePreview(&buf, page, s.opts.Preview); err != nil {
		s.log.Error("preview failed", "page", page.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render preview")
	}
	return c.Blob(http.StatusOK, export.FormatPNG.ContentType(), buf.Bytes())
}
