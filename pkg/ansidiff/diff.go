package ansidiff

// Segment is a span of a line that must be rewritten. Text is the new
// characters prefixed with the escape state they are drawn in. A Segment
// with empty Text means "clear from Start to the end of the line".
type Segment struct {
	Start int
	Text  string
}

// FindDiffSegments returns the segments that turn oldText into newText,
// in ascending Start order. Identical inputs yield no segments.
//
// A column differs when its character or its active state differs. A
// segment carries the new state of the column it starts at and is split
// whenever that state changes. When a segment is open and reaches a run of
// matching columns, it rides through them only if the next differing
// column is drawn in the same state; otherwise it is closed and the cursor
// is repositioned for the next one.
func FindDiffSegments(oldText, newText string) []Segment {
	oldTokens := Tokenize(oldText)
	newTokens := Tokenize(newText)
	oldRanges := ExtractStateRanges(oldTokens)
	newRanges := ExtractStateRanges(newTokens)

	oldCols := columnsOf(oldTokens, oldRanges)
	newCols := columnsOf(newTokens, newRanges)
	width := max(len(oldCols.chars), len(newCols.chars))

	differs := make([]bool, width)
	for pos := range width {
		oc, os := oldCols.at(pos)
		nc, ns := newCols.at(pos)
		differs[pos] = oc != nc || os != ns
	}

	// next[pos] is the first differing column after pos, or -1.
	next := make([]int, width)
	following := -1
	for pos := width - 1; pos >= 0; pos-- {
		next[pos] = following
		if differs[pos] {
			following = pos
		}
	}

	var b segmentBuilder
	for pos := range width {
		char, state := newCols.at(pos)
		if differs[pos] {
			b.addDifference(pos, char, state)
			continue
		}
		if !b.isOpen() {
			continue
		}
		ride := false
		if n := next[pos]; n >= 0 && state == b.state {
			_, nextState := newCols.at(n)
			ride = nextState == b.state
		}
		if ride && char != "" {
			b.text += char
		} else {
			b.close()
		}
	}
	b.close()

	segments := b.segments
	if len(oldCols.chars) > len(newCols.chars) {
		segments = append(segments, Segment{Start: len(newCols.chars)})
	}

	oldTrailing := TrailingCodes(oldTokens)
	newTrailing := TrailingCodes(newTokens)
	if oldTrailing != newTrailing && newTrailing != "" {
		lastState := ""
		if len(newRanges) > 0 {
			lastState = newRanges[len(newRanges)-1].State
		}
		segments = setSegment(segments, Segment{
			Start: width,
			Text:  lastState + newTrailing,
		})
	}

	return segments
}

// setSegment replaces the segment starting at seg.Start, or appends seg if
// there is none.
func setSegment(segments []Segment, seg Segment) []Segment {
	for i := range segments {
		if segments[i].Start == seg.Start {
			segments[i].Text = seg.Text
			return segments
		}
	}
	return append(segments, seg)
}

// columns indexes a line's state ranges by visual column.
type columns struct {
	chars  []string
	states []string
}

// columnsOf takes each column's character from the token that drew it, so
// bytes that are not valid UTF-8 compare and replay unchanged.
func columnsOf(tokens []Token, ranges []StateRange) columns {
	var cols columns
	for _, tok := range tokens {
		if !tok.ANSI {
			cols.chars = append(cols.chars, tok.Value)
		}
	}
	cols.states = make([]string, len(cols.chars))
	for _, r := range ranges {
		for pos := r.Start; pos < min(r.End, len(cols.states)); pos++ {
			cols.states[pos] = r.State
		}
	}
	return cols
}

// at returns the character and state at pos. Past the end of the line the
// character is empty and the state is the empty state.
func (c columns) at(pos int) (string, string) {
	if pos < 0 || pos >= len(c.chars) {
		return "", ""
	}
	return c.chars[pos], c.states[pos]
}

type segmentBuilder struct {
	segments []Segment

	start int
	state string
	text  string
	open  bool
}

func (b *segmentBuilder) isOpen() bool {
	return b.open
}

func (b *segmentBuilder) addDifference(pos int, char, state string) {
	if !b.open {
		b.begin(pos, state)
	} else if b.state != state {
		b.close()
		b.begin(pos, state)
	}
	b.text += char
}

func (b *segmentBuilder) begin(pos int, state string) {
	b.start = pos
	b.state = state
	b.text = ""
	b.open = true
}

// close ends the open segment. Segments without characters are dropped.
func (b *segmentBuilder) close() {
	if b.open && b.text != "" {
		b.segments = append(b.segments, Segment{
			Start: b.start,
			Text:  b.state + b.text,
		})
	}
	b.start = 0
	b.state = ""
	b.text = ""
	b.open = false
}
