package gemini

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/pulsefit/coach/internal/engine"
)

// eventPrefix is the line marker for payload-bearing stream lines. Lines
// without it (heartbeats, comments, blank separators) are ignored.
const eventPrefix = "data:"

// decoder turns the raw line stream into engine fragments. It is lazy,
// finite, and non-restartable: each Next call consumes source lines until
// a fragment is available or the source ends.
type decoder struct {
	scanner *bufio.Scanner
	queue   []engine.Fragment
}

func newDecoder(r io.Reader) *decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &decoder{scanner: scanner}
}

// next returns the next decoded fragment, or io.EOF when the source is
// exhausted. Malformed lines and envelopes missing the expected path are
// skipped, not fatal: streaming sources emit heartbeat and partial lines.
func (d *decoder) next() (engine.Fragment, error) {
	for {
		if len(d.queue) > 0 {
			frag := d.queue[0]
			d.queue = d.queue[1:]
			return frag, nil
		}

		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, &engine.TransportError{Cause: err}
			}
			return nil, io.EOF
		}

		line := d.scanner.Text()
		if !strings.HasPrefix(line, eventPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var envelope streamEnvelope
		if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
			continue
		}
		d.queue = append(d.queue, fragmentsFromEnvelope(&envelope)...)
	}
}

// fragmentsFromEnvelope extracts fragments from candidates[0].content.parts
// in part order. Absent fields yield no fragments.
func fragmentsFromEnvelope(envelope *streamEnvelope) []engine.Fragment {
	if len(envelope.Candidates) == 0 {
		return nil
	}
	c := envelope.Candidates[0].Content
	if c == nil {
		return nil
	}

	var frags []engine.Fragment
	for _, p := range c.Parts {
		if p.Text != "" {
			frags = append(frags, engine.TextFragment{Text: p.Text})
		}
		if p.FunctionCall != nil && p.FunctionCall.Name != "" {
			args := p.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			frags = append(frags, engine.ToolCallRequest{
				Name: p.FunctionCall.Name,
				Args: args,
			})
		}
	}
	return frags
}
