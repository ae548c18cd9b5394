package bridge

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/yuanying/sketch2penpot/internal/export"
	"github.com/yuanying/sketch2penpot/internal/memhost"
	"github.com/yuanying/sketch2penpot/internal/plugin"
)

const importPayload = `{"type":"process-sketch-data","data":{"pages":[
	{"name":"Home","layers":[
		{"_class":"rectangle","name":"Box","frame":{"x":0,"y":0,"width":20,"height":10},
		 "style":{"fills":[{"fillType":0,"color":{"red":1,"green":0,"blue":0,"alpha":1}}]}}
	]}
]}}`

func newTestServer() (*Server, *memhost.Document) {
	doc := memhost.New(memhost.Options{})
	return New(doc, Options{}), doc
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPostMessage_Import(t *testing.T) {
	s, doc := newTestServer()

	rec := do(s, http.MethodPost, "/api/messages", importPayload)
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		return
	}

	var replies []plugin.Message
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replies)) {
		return
	}
	if assert.NotEmpty(t, replies) {
		assert.Equal(t, plugin.TypeImportProgress, replies[0].Type)
		assert.Equal(t, plugin.TypeImportComplete, replies[len(replies)-1].Type)
	}
	assert.Equal(t, 1, doc.Snapshot().CountShapes())
	assert.Equal(t, "Home", doc.CurrentPage().Name())
}

func TestPostMessage_ImportError(t *testing.T) {
	s, doc := newTestServer()

	rec := do(s, http.MethodPost, "/api/messages", `{"type":"process-sketch-data","data":{"pages":[]}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"import-error"`)
	assert.Contains(t, rec.Body.String(), "No pages found in Sketch file")
	assert.Equal(t, 0, doc.Snapshot().CountShapes())
}

func TestPostMessage_CurrentPage(t *testing.T) {
	s, doc := newTestServer()

	rec := do(s, http.MethodPost, "/api/messages", `{"type":"get-current-page"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"current-page-info"`)
	assert.Contains(t, rec.Body.String(), doc.CurrentPage().ID())
}

func TestPostMessage_Invalid(t *testing.T) {
	s, _ := newTestServer()

	rec := do(s, http.MethodPost, "/api/messages", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/messages", `{"type":"unknown"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDocumentExports(t *testing.T) {
	s, _ := newTestServer()
	do(s, http.MethodPost, "/api/messages", importPayload)

	rec := do(s, http.MethodGet, "/api/document", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"name": "Box"`)

	rec = do(s, http.MethodGet, "/api/document/msgpack", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	snap, err := export.ReadMsgpack(rec.Body.Bytes())
	if assert.NoError(t, err) {
		assert.Equal(t, 1, snap.CountShapes())
	}

	rec = do(s, http.MethodGet, "/api/document/html", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `title="Box"`)
}

func TestPagePreview(t *testing.T) {
	s, doc := newTestServer()
	do(s, http.MethodPost, "/api/messages", importPayload)

	rec := do(s, http.MethodGet, "/api/pages/"+doc.CurrentPage().ID()+"/preview.png", "")
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		return
	}
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if assert.NoError(t, err) {
		assert.Equal(t, 20, img.Bounds().Dx())
		assert.Equal(t, 10, img.Bounds().Dy())
	}

	rec = do(s, http.MethodGet, "/api/pages/missing/preview.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocket(t *testing.T) {
	s, doc := newTestServer()
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	read := func() plugin.Message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		msg, err := plugin.DecodeMessage(data)
		if err != nil {
			t.Fatalf("DecodeMessage() error = %v", err)
		}
		return msg
	}

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, TypeBridgeError, read().Type)

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(importPayload)))
	var progress []int
	for {
		msg := read()
		if msg.Type != plugin.TypeImportProgress {
			assert.Equal(t, plugin.TypeImportComplete, msg.Type)
			break
		}
		p, err := plugin.DecodeData[plugin.Progress](msg)
		if assert.NoError(t, err) {
			progress = append(progress, p.Progress)
		}
	}
	assert.Equal(t, []int{5, 10, 20, 85, 95, 100}, progress)
	assert.Equal(t, 1, doc.Snapshot().CountShapes())

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"close-plugin"}`)))
	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"get-current-page"}`)))
	assert.Equal(t, plugin.TypeCurrentPageInfo, read().Type)
	assert.True(t, doc.Closed())
}
