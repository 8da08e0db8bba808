package render

import "encoding/json"

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	passID string
	width  float64
	height float64
	indent bool
}

// WithJSONPass records the render-pass ID in the JSON output so artifacts
// can be traced back to a specific pass.
func WithJSONPass(id string) JSONOption { return func(r *jsonRenderer) { r.passID = id } }

// WithJSONFrameSize records the target viewport size in the JSON output,
// enabling re-rendering at the original scale.
func WithJSONFrameSize(w, h float64) JSONOption {
	return func(r *jsonRenderer) { r.width, r.height = w, h }
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// jsonDocument is the JSON interchange form for rendered frames.
type jsonDocument struct {
	PassID string   `json:"pass_id,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	Frames []*Frame `json:"frames"`
}

// RenderJSON serializes frames to the JSON interchange format. The format
// round-trips through [DecodeJSON], which the artifact cache relies on.
func RenderJSON(frames []*Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	doc := jsonDocument{
		PassID: r.passID,
		Width:  r.width,
		Height: r.height,
		Frames: frames,
	}
	if r.indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// DecodeJSON parses the output of [RenderJSON] back into frames.
func DecodeJSON(data []byte) ([]*Frame, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Frames, nil
}
