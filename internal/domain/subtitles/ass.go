package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/viralcut/internal/types"
)

// Timeline tells how caption times are interpreted.
type Timeline string

const (
	// TimelineSource captions are placed on the source video and re-timed by
	// subtracting each segment's start.
	TimelineSource Timeline = "source"
	// TimelineSegment captions are already segment-local and repeat on every
	// segment.
	TimelineSegment Timeline = "segment"
)

// Localize returns the captions visible inside span, clamped to it and
// expressed in segment-local seconds. Input order is preserved.
func Localize(caps []types.Caption, span types.Span, tl Timeline) []types.Caption {
	offset := span.StartSec
	winStart, winEnd := span.StartSec, span.EndSec
	if tl == TimelineSegment {
		offset = 0
		winStart, winEnd = 0, span.Len()
	}

	var out []types.Caption
	for _, c := range caps {
		text := strings.TrimSpace(c.Text)
		if text == "" || c.EndSec <= winStart || c.StartSec >= winEnd {
			continue
		}
		s, e := c.StartSec, c.EndSec
		if s < winStart {
			s = winStart
		}
		if e > winEnd {
			e = winEnd
		}
		if e <= s {
			continue
		}
		out = append(out, types.Caption{Text: text, StartSec: s - offset, EndSec: e - offset})
	}
	return out
}

// Style controls the burned caption look.
type Style struct {
	FontName string
	FontSize int
	// Colors are ASS &HAABBGGRR values.
	PrimaryColour string
	OutlineColour string
	BackColour    string
	Outline       int
}

func DefaultStyle() Style {
	return Style{
		FontName:      "Inter",
		FontSize:      40,
		PrimaryColour: "&H00FFFFFF",
		OutlineColour: "&H00000000",
		BackColour:    "&H80000000",
		Outline:       3,
	}
}

// RenderASS renders caps as centered events on a frame of size g. Events are
// written in input order; overlapping events stack as the renderer resolves
// collisions.
func RenderASS(caps []types.Caption, g types.Geometry, st Style) string {
	var b strings.Builder
	b.WriteString(assHeader(g, st))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range caps {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(dur(c.StartSec)))
		b.WriteString(",")
		b.WriteString(assTime(dur(c.EndSec)))
		b.WriteString(",Caption,,0,0,0,,")
		b.WriteString(sanitizeASS(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader(g types.Geometry, st Style) string {
	if st.FontName == "" {
		st = DefaultStyle()
	}
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", g.Width)
	fmt.Fprintf(&b, "PlayResY: %d\n", g.Height)
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("Collisions: Normal\n\n")
	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	// Alignment 5 is middle-center.
	fmt.Fprintf(&b, "Style: Caption,%s,%d,%s,%s,%s,%s,1,0,0,0,100,100,0,0,1,%d,0,5,20,20,20,1",
		st.FontName, st.FontSize, st.PrimaryColour, st.PrimaryColour, st.OutlineColour, st.BackColour, st.Outline)
	return b.String()
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	// a backslash would start an override escape such as \N
	s = strings.ReplaceAll(s, "\\", "∖")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\r\n", "\\N")
	s = strings.ReplaceAll(s, "\n", "\\N")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
