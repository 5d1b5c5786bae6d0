package gemini

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pulsefit/coach/internal/engine"
)

func drain(t *testing.T, input string) []engine.Fragment {
	t.Helper()
	dec := newDecoder(strings.NewReader(input))
	var frags []engine.Fragment
	for {
		frag, err := dec.next()
		if errors.Is(err, io.EOF) {
			return frags
		}
		if err != nil {
			t.Fatalf("next() error = %v", err)
		}
		frags = append(frags, frag)
	}
}

func TestDecodeTextAndCalls(t *testing.T) {
	input := strings.Join([]string{
		`data: {"candidates":[{"content":{"parts":[{"text":"Let me check. "}]}}]}`,
		``,
		`data: {"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_food_log","args":{"date":"today"}}}]}}]}`,
		`data: {"candidates":[{"content":{"parts":[{"text":"Done."}]}}]}`,
		`data: [DONE]`,
	}, "\n")

	frags := drain(t, input)
	if len(frags) != 3 {
		t.Fatalf("fragments = %d, want 3", len(frags))
	}
	if tf, ok := frags[0].(engine.TextFragment); !ok || tf.Text != "Let me check. " {
		t.Errorf("frags[0] = %+v", frags[0])
	}
	call, ok := frags[1].(engine.ToolCallRequest)
	if !ok {
		t.Fatalf("frags[1] = %T, want ToolCallRequest", frags[1])
	}
	if call.Name != "get_food_log" || call.Args["date"] != "today" {
		t.Errorf("call = %+v", call)
	}
	if tf, ok := frags[2].(engine.TextFragment); !ok || tf.Text != "Done." {
		t.Errorf("frags[2] = %+v", frags[2])
	}
}

func TestDecodeMultiPartEnvelope(t *testing.T) {
	input := `data: {"candidates":[{"content":{"parts":[` +
		`{"text":"Logging both. "},` +
		`{"functionCall":{"name":"suggest_food_log","args":{"name":"oatmeal"}}},` +
		`{"functionCall":{"name":"suggest_food_log","args":{"name":"banana"}}}` +
		`]}}]}`

	frags := drain(t, input)
	if len(frags) != 3 {
		t.Fatalf("fragments = %d, want 3", len(frags))
	}
	first, _ := frags[1].(engine.ToolCallRequest)
	second, _ := frags[2].(engine.ToolCallRequest)
	if first.Args["name"] != "oatmeal" || second.Args["name"] != "banana" {
		t.Errorf("call order = %v, %v", first.Args, second.Args)
	}
}

func TestDecodeSkipsNoise(t *testing.T) {
	input := strings.Join([]string{
		`: heartbeat`,
		`event: ping`,
		`data:`,
		`data: not json at all`,
		`data: {"candidates":[]}`,
		`data: {"candidates":[{"content":null}]}`,
		`data: {"unrelated":true}`,
		`data: {"candidates":[{"content":{"parts":[{"text":"survived"}]}}]}`,
	}, "\n")

	frags := drain(t, input)
	if len(frags) != 1 {
		t.Fatalf("fragments = %d, want 1", len(frags))
	}
	if tf, _ := frags[0].(engine.TextFragment); tf.Text != "survived" {
		t.Errorf("frags[0] = %+v", frags[0])
	}
}

func TestDecodeNilArgsNormalized(t *testing.T) {
	input := `data: {"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_food_log"}}]}}]}`

	frags := drain(t, input)
	if len(frags) != 1 {
		t.Fatalf("fragments = %d, want 1", len(frags))
	}
	call, _ := frags[0].(engine.ToolCallRequest)
	if call.Args == nil {
		t.Error("args not normalized to empty map")
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	if frags := drain(t, ""); len(frags) != 0 {
		t.Errorf("fragments = %v, want none", frags)
	}
}

// truncatedReader yields its content then a read error, simulating a
// connection cut mid-stream.
type truncatedReader struct {
	r   io.Reader
	err error
}

func (t *truncatedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if errors.Is(err, io.EOF) {
		return n, t.err
	}
	return n, err
}

func TestDecodeSourceErrorIsTransport(t *testing.T) {
	src := &truncatedReader{
		r:   strings.NewReader(`data: {"candidates":[{"content":{"parts":[{"text":"partial"}]}}]}` + "\n"),
		err: errors.New("connection reset"),
	}
	dec := newDecoder(src)

	frag, err := dec.next()
	if err != nil {
		t.Fatalf("first next() error = %v", err)
	}
	if tf, _ := frag.(engine.TextFragment); tf.Text != "partial" {
		t.Errorf("fragment = %+v", frag)
	}

	if _, err := dec.next(); !engine.IsTransportError(err) {
		t.Errorf("error = %v, want TransportError", err)
	}
}
