package ansidiff

import "strings"

// StateRange is a run of visible characters that share one active escape
// state.
type StateRange struct {
	// Start and End are the half-open visual interval covered by the range.
	Start, End int
	// State is the concatenation of escape sequences in effect.
	State string
	// Text is the visible characters of the range.
	Text string
	// FullText is Text with the escape sequences that opened the range.
	FullText string
}

// ExtractStateRanges groups tokens into state ranges. Escape sequences are
// held as pending until the next visible character. At that point they
// either start a new range (when the open range already has text) or are
// folded into the open range's state. A Reset closes the open range and
// clears the state.
//
// The ranges returned partition [0, VisualLength) without gaps.
func ExtractStateRanges(tokens []Token) []StateRange {
	var b rangeBuilder
	for _, tok := range tokens {
		if tok.ANSI {
			b.addCode(tok.Value)
		} else {
			b.addChar(tok.Value)
		}
	}
	b.flush()
	return b.ranges
}

type rangeBuilder struct {
	ranges []StateRange

	state    string
	text     strings.Builder
	fullText strings.Builder
	pending  string
	start    int
	pos      int
}

func (b *rangeBuilder) addCode(code string) {
	b.pending += code
	if code == Reset {
		b.flush()
		b.state = ""
		b.pending = ""
	}
}

func (b *rangeBuilder) addChar(char string) {
	if b.pending != "" {
		if b.text.Len() > 0 {
			b.flush()
			b.state = b.pending
		} else {
			b.state += b.pending
		}
		b.fullText.WriteString(b.pending)
		b.pending = ""
	}
	b.text.WriteString(char)
	b.fullText.WriteString(char)
	b.pos++
}

func (b *rangeBuilder) flush() {
	if b.text.Len() == 0 && b.fullText.Len() == 0 {
		return
	}
	b.ranges = append(b.ranges, StateRange{
		Start:    b.start,
		End:      b.pos,
		State:    b.state,
		Text:     b.text.String(),
		FullText: b.fullText.String(),
	})
	b.text.Reset()
	b.fullText.Reset()
	b.start = b.pos
}
