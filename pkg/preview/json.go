package preview

import (
	"encoding/json"

	"github.com/matzehuels/mortar/pkg/geom"
	"github.com/matzehuels/mortar/pkg/visual"
	"github.com/matzehuels/mortar/pkg/wall"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	width     int
	sessionID string
	selection *geom.Rect
	hover     *geom.Rect
}

// WithJSONWidth records the converse budget the wall was laid out for.
func WithJSONWidth(w int) JSONOption { return func(r *jsonRenderer) { r.width = w } }

// WithJSONSession records the session's ID, width and highlight outlines.
func WithJSONSession(s *visual.Session) JSONOption {
	return func(r *jsonRenderer) {
		r.sessionID = s.ID
		r.width = s.Width()
		if rect, ok := s.SelectionRect(); ok {
			r.selection = &rect
		}
		if rect, ok := s.HoverRect(); ok {
			r.hover = &rect
		}
	}
}

type jsonOutput struct {
	Session     string       `json:"session,omitempty"`
	Width       int          `json:"width,omitempty"`
	State       string       `json:"state"`
	Cornerstone *jsonAt      `json:"cornerstone,omitempty"`
	Bedding     jsonBedding  `json:"bedding"`
	Selection   *jsonRect    `json:"selection,omitempty"`
	Hover       *jsonRect    `json:"hover,omitempty"`
	Courses     []jsonCourse `json:"courses"`
}

type jsonAt struct {
	Course int `json:"course"`
	Index  int `json:"index"`
}

type jsonBedding struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

type jsonRect struct {
	Converse      int `json:"converse"`
	Transverse    int `json:"transverse"`
	ConverseEnd   int `json:"converse_end"`
	TransverseEnd int `json:"transverse_end"`
}

type jsonCourse struct {
	Transverse int         `json:"transverse"`
	Ascent     int         `json:"ascent"`
	Descent    int         `json:"descent"`
	Edge       int         `json:"edge"`
	Pending    bool        `json:"pending,omitempty"`
	Bricks     []jsonBrick `json:"bricks"`
}

type jsonBrick struct {
	Label     string `json:"label"`
	Converse  int    `json:"converse"`
	Width     int    `json:"width"`
	Split     bool   `json:"split,omitempty"`
	Alignment string `json:"alignment,omitempty"`
}

// RenderJSON exports the wall's courses and bricks as pretty-printed JSON.
// Courses appear in order with their transverse position and extent;
// bricks carry their label, converse position and width.
func RenderJSON(w *wall.Wall, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	before, after := w.Bedding()
	out := jsonOutput{
		Session:   r.sessionID,
		Width:     r.width,
		State:     w.State().String(),
		Bedding:   jsonBedding{Before: before, After: after},
		Selection: toJSONRect(r.selection),
		Hover:     toJSONRect(r.hover),
		Courses:   make([]jsonCourse, 0, w.CourseCount()),
	}
	if cs := w.Cornerstone(); cs != nil && cs.Course() != nil {
		out.Cornerstone = &jsonAt{Course: cs.Course().Index(), Index: cs.Index()}
	}

	for _, c := range w.Courses() {
		span := c.Span()
		jc := jsonCourse{
			Transverse: c.Transverse(),
			Ascent:     span.Ascent,
			Descent:    span.Descent,
			Edge:       c.Edge(),
			Pending:    c.Pending(),
			Bricks:     make([]jsonBrick, 0, c.Len()),
		}
		for _, b := range c.Bricks() {
			jb := jsonBrick{
				Label:    b.Label(),
				Converse: b.Converse(),
				Width:    b.Span().Converse,
				Split:    b.Split(),
			}
			if a := b.Alignment(); a != nil {
				jb.Alignment = a.Name()
			}
			jc.Bricks = append(jc.Bricks, jb)
		}
		out.Courses = append(out.Courses, jc)
	}

	return json.MarshalIndent(out, "", "  ")
}

func toJSONRect(r *geom.Rect) *jsonRect {
	if r == nil {
		return nil
	}
	return &jsonRect{
		Converse:      r.Start.Converse,
		Transverse:    r.Start.Transverse,
		ConverseEnd:   r.End.Converse,
		TransverseEnd: r.End.Transverse,
	}
}
