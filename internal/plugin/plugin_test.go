package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yuanying/sketch2penpot/internal/converter"
	"github.com/yuanying/sketch2penpot/internal/memhost"
)

type recorder struct {
	messages []Message
	err      error
}

func (r *recorder) Send(msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func (r *recorder) ofType(typ string) []Message {
	var out []Message
	for _, m := range r.messages {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func mustMessage(t *testing.T, typ string, data string) Message {
	t.Helper()
	msg := Message{Type: typ}
	if data != "" {
		msg.Data = []byte(data)
	}
	return msg
}

func TestHandle_ProcessSketchData(t *testing.T) {
	d := memhost.New(memhost.Options{})
	ui := &recorder{}
	p := New(d, ui, converter.ConvertOptions{})

	err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, `{
		"pages": [
			{"name": "Home", "layers": [{"_class": "rectangle", "name": "Box"}]},
			{"name": "About", "layers": []}
		]
	}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var got []int
	for _, m := range ui.ofType(TypeImportProgress) {
		progress, err := DecodeData[Progress](m)
		if err != nil {
			t.Fatalf("DecodeData() error = %v", err)
		}
		got = append(got, progress.Progress)
	}
	want := []int{5, 10, 20, 50, 85, 95, 100}
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress = %v, want %v", got, want)
		}
	}

	last := ui.messages[len(ui.messages)-1]
	if last.Type != TypeImportComplete {
		t.Fatalf("last message = %s, want import-complete", last.Type)
	}
	complete, err := DecodeData[Complete](last)
	if err != nil {
		t.Fatalf("DecodeData() error = %v", err)
	}
	if !complete.Success || complete.Message != "Sketch file imported successfully!" {
		t.Fatalf("complete = %+v", complete)
	}

	if p.LastReport() == nil || len(p.LastReport().Pages) != 2 {
		t.Fatalf("LastReport() = %+v", p.LastReport())
	}
	if d.Snapshot().CountShapes() != 1 {
		t.Fatalf("shapes = %d, want 1", d.Snapshot().CountShapes())
	}
}

func TestHandle_ProcessSketchData_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"no data", "", NoPagesMessage},
		{"null", "null", NoPagesMessage},
		{"array", "[1]", NoPagesMessage},
		{"no pages", `{"document": {}}`, NoPagesMessage},
		{"empty pages", `{"pages": []}`, EmptyPagesMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := memhost.New(memhost.Options{})
			ui := &recorder{}
			p := New(d, ui, converter.ConvertOptions{})

			if err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, tt.data)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			failures := ui.ofType(TypeImportError)
			if len(failures) != 1 {
				t.Fatalf("import-error messages = %d, want 1", len(failures))
			}
			failure, err := DecodeData[Failure](failures[0])
			if err != nil {
				t.Fatalf("DecodeData() error = %v", err)
			}
			if failure.Error != tt.want {
				t.Fatalf("error = %q, want %q", failure.Error, tt.want)
			}
			if len(ui.ofType(TypeImportComplete)) != 0 {
				t.Fatal("import-complete should not be sent")
			}
			if d.Snapshot().CountShapes() != 0 {
				t.Fatal("no shapes should be created")
			}
			if p.LastReport() != nil {
				t.Fatal("LastReport() should be nil")
			}
		})
	}
}

// nestedGroups returns a one-page document holding depth nested groups
// with a rectangle at the bottom.
func nestedGroups(depth int) string {
	var b strings.Builder
	b.WriteString(`{"pages":[{"name":"Deep","layers":[`)
	for range depth {
		b.WriteString(`{"_class":"group","name":"g","layers":[`)
	}
	b.WriteString(`{"_class":"rectangle","name":"leaf","frame":{"x":0,"y":0,"width":1,"height":1}}`)
	for range depth {
		b.WriteString(`]}`)
	}
	b.WriteString(`]}]}`)
	return b.String()
}

func TestHandle_ProcessSketchData_DeepNesting(t *testing.T) {
	const depth = 2000
	d := memhost.New(memhost.Options{})
	ui := &recorder{}
	p := New(d, ui, converter.ConvertOptions{})

	if err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, nestedGroups(depth))); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ui.ofType(TypeImportComplete)) != 1 {
		t.Fatalf("messages = %+v, want import-complete", ui.messages)
	}
	if got := d.Snapshot().CountShapes(); got != depth+1 {
		t.Fatalf("shapes = %d, want %d", got, depth+1)
	}
}

func TestHandle_ProcessSketchData_NonStringClass(t *testing.T) {
	d := memhost.New(memhost.Options{})
	ui := &recorder{}
	p := New(d, ui, converter.ConvertOptions{})

	err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, `{"pages":[{"name":"Home","layers":[
		{"_class": 5, "name": "X"},
		{"_class": true},
		{"_class": 0, "name": "dropped"}
	]}]}`))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ui.ofType(TypeImportComplete)) != 1 {
		t.Fatalf("messages = %+v, want import-complete", ui.messages)
	}

	var names []string
	for _, page := range d.Snapshot().Pages {
		for _, s := range page.Shapes {
			names = append(names, s.Name)
		}
	}
	if len(names) != 2 || names[0] != "X (5)" || names[1] != "Unknown (true)" {
		t.Fatalf("shapes = %q, want [X (5) Unknown (true)]", names)
	}
}

func TestHandle_ProcessSketchData_DecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", `{"pages":[`, "not valid JSON"},
		{"nesting beyond the decoder limit", nestedGroups(6000), "exceeded max depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := memhost.New(memhost.Options{})
			ui := &recorder{}
			p := New(d, ui, converter.ConvertOptions{})

			if err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, tt.data)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if len(ui.messages) != 1 || ui.messages[0].Type != TypeImportError {
				t.Fatalf("messages = %+v, want a single import-error", ui.messages)
			}
			failure, err := DecodeData[Failure](ui.messages[0])
			if err != nil {
				t.Fatalf("DecodeData() error = %v", err)
			}
			if failure.Error == NoPagesMessage || !strings.Contains(failure.Error, tt.want) {
				t.Fatalf("error = %q, want it to contain %q", failure.Error, tt.want)
			}
			if d.Snapshot().CountShapes() != 0 {
				t.Fatal("no shapes should be created")
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{converter.ErrNoPages, "Invalid Sketch data: No pages found"},
		{fmt.Errorf("import: %w", converter.ErrEmptyPages), "No pages found in Sketch file - the file may be empty or corrupted"},
		{converter.ErrImportInProgress, converter.ErrImportInProgress.Error()},
	}
	for _, tt := range tests {
		if got := failureMessage(tt.err); got != tt.want {
			t.Errorf("failureMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandle_GetCurrentPage(t *testing.T) {
	d := memhost.New(memhost.Options{})
	ui := &recorder{}
	p := New(d, ui, converter.ConvertOptions{})

	if err := p.Handle(context.Background(), Message{Type: TypeGetCurrentPage}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ui.messages) != 1 || ui.messages[0].Type != TypeCurrentPageInfo {
		t.Fatalf("messages = %+v", ui.messages)
	}
	info, err := DecodeData[PageInfo](ui.messages[0])
	if err != nil {
		t.Fatalf("DecodeData() error = %v", err)
	}
	if info.ID != d.CurrentPage().ID() || info.Name != "Page 1" {
		t.Fatalf("info = %+v", info)
	}
}

func TestHandle_GetCurrentPage_None(t *testing.T) {
	ui := &recorder{}
	p := New(memhost.New(memhost.Options{NoCurrentPage: true}), ui, converter.ConvertOptions{})

	if err := p.Handle(context.Background(), Message{Type: TypeGetCurrentPage}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ui.messages) != 0 {
		t.Fatalf("messages = %+v, want none", ui.messages)
	}
}

func TestHandle_ClosePlugin(t *testing.T) {
	d := memhost.New(memhost.Options{})
	p := New(d, &recorder{}, converter.ConvertOptions{})

	if err := p.Handle(context.Background(), Message{Type: TypeClosePlugin}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !d.Closed() {
		t.Fatal("document should be closed")
	}
}

func TestHandle_UnknownType(t *testing.T) {
	ui := &recorder{}
	p := New(memhost.New(memhost.Options{}), ui, converter.ConvertOptions{})

	if err := p.Handle(context.Background(), Message{Type: "resize-ui"}); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(ui.messages) != 0 {
		t.Fatalf("messages = %+v, want none", ui.messages)
	}
}

func TestHandle_SendFailure(t *testing.T) {
	sendErr := errors.New("ui gone")
	ui := &recorder{err: sendErr}
	p := New(memhost.New(memhost.Options{}), ui, converter.ConvertOptions{})

	err := p.Handle(context.Background(), mustMessage(t, TypeProcessSketchData, `{"pages": [{}]}`))
	if !errors.Is(err, sendErr) {
		t.Fatalf("Handle() error = %v, want send error", err)
	}
	if p.LastReport() == nil {
		t.Fatal("import should still complete")
	}
}

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeImportProgress, Progress{Progress: 42, Message: "half"})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if string(msg.Data) != `{"progress":42,"message":"half"}` {
		t.Fatalf("Data = %s", msg.Data)
	}

	decoded, err := DecodeMessage([]byte(`{"type":"get-current-page"}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if decoded.Type != TypeGetCurrentPage || len(decoded.Data) != 0 {
		t.Fatalf("decoded = %+v", decoded)
	}

	if _, err := DecodeMessage([]byte(`{"type":`)); err == nil {
		t.Fatal("DecodeMessage() should fail on truncated input")
	}
	if _, err := DecodeData[Progress](decoded); err == nil {
		t.Fatal("DecodeData() should fail without data")
	}
}
