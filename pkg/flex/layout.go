package flex

import "sync/atomic"

// passes numbers layout passes so that per-node measurement caches from an
// earlier pass are never reused.
var passes atomic.Int64

// constraints are the inputs of one node layout.
type constraints struct {
	width  int
	wMode  MeasureMode
	height int
	hMode  MeasureMode
	ownerW int
	ownerH int
}

// CalculateLayout lays out the tree rooted at n within width x height.
// Either may be Undefined, in which case the root takes its content size
// on that axis. A size declared on the root's style wins over the given
// size.
func (n *Node) CalculateLayout(width, height int) {
	s := &solver{pass: int(passes.Add(1))}

	c := constraints{
		width:  width,
		wMode:  exactIfDefined(width),
		height: height,
		hMode:  exactIfDefined(height),
		ownerW: width,
		ownerH: height,
	}
	if w, ok := n.Style.Width.resolve(width); ok {
		c.width, c.wMode = w, MeasureExactly
	}
	if h, ok := n.Style.Height.resolve(height); ok {
		c.height, c.hMode = h, MeasureExactly
	}
	if c.wMode == MeasureExactly {
		c.width = max(0, c.width-n.Style.Margin.horizontal())
	}
	if c.hMode == MeasureExactly {
		c.height = max(0, c.height-n.Style.Margin.vertical())
	}

	s.layoutNode(n, c)
	n.layout.Left = n.Style.Margin.Left
	n.layout.Top = n.Style.Margin.Top
}

func exactIfDefined(v int) MeasureMode {
	if IsUndefined(v) {
		return MeasureUndefined
	}
	return MeasureExactly
}

type solver struct {
	pass int
}

// measure returns the size n takes under c, reusing an earlier result from
// the same pass when the constraints match.
func (s *solver) measure(n *Node, c constraints) Size {
	if n.pass != s.pass {
		n.pass = s.pass
		n.cache = nil
	}
	if sz, ok := n.cache[c]; ok {
		return sz
	}
	s.layoutNode(n, c)
	sz := Size{Width: n.layout.Width, Height: n.layout.Height}
	if n.cache == nil {
		n.cache = map[constraints]Size{}
	}
	n.cache[c] = sz
	return sz
}

// axisSize applies a node's declared size and min/max bounds to one axis of
// its constraints.
func axisSize(size int, mode MeasureMode, dim, minDim, maxDim Value, owner int) (int, MeasureMode) {
	if mode != MeasureExactly {
		if v, ok := dim.resolve(owner); ok {
			size, mode = v, MeasureExactly
		}
	}
	maxV, hasMax := maxDim.resolve(owner)
	minV, hasMin := minDim.resolve(owner)
	switch mode {
	case MeasureExactly:
		if hasMax {
			size = min(size, maxV)
		}
		if hasMin {
			size = max(size, minV)
		}
	case MeasureAtMost:
		if hasMax {
			size = min(size, maxV)
		}
	case MeasureUndefined:
		if hasMax {
			size, mode = maxV, MeasureAtMost
		}
	}
	return max(size, 0), mode
}

func bound(v int, minDim, maxDim Value, owner, floor int) int {
	if m, ok := maxDim.resolve(owner); ok && v > m {
		v = m
	}
	if m, ok := minDim.resolve(owner); ok && v < m {
		v = m
	}
	return max(v, floor)
}

func inner(size, edges int) int {
	if IsUndefined(size) {
		return Undefined
	}
	return max(0, size-edges)
}

// flexItem tracks one in-flow child through a container layout.
type flexItem struct {
	node    *Node
	base    int
	main    int
	cross   int
	align   Align
	stretch bool

	// physical margins along each axis
	mainStart, mainEnd   int
	crossStart, crossEnd int
}

func (it *flexItem) mainMargin() int  { return it.mainStart + it.mainEnd }
func (it *flexItem) crossMargin() int { return it.crossStart + it.crossEnd }

func (s *solver) layoutNode(n *Node, c constraints) {
	st := &n.Style
	pad := st.Padding
	brd := st.Border
	pb := Edges{
		Top:    pad.Top + brd.Top,
		Right:  pad.Right + brd.Right,
		Bottom: pad.Bottom + brd.Bottom,
		Left:   pad.Left + brd.Left,
	}

	w, wm := axisSize(c.width, c.wMode, st.Width, st.MinWidth, st.MaxWidth, c.ownerW)
	h, hm := axisSize(c.height, c.hMode, st.Height, st.MinHeight, st.MaxHeight, c.ownerH)
	if wm == MeasureUndefined {
		w = Undefined
	}
	if hm == MeasureUndefined {
		h = Undefined
	}

	if n.measure != nil && len(n.children) == 0 {
		s.layoutLeaf(n, w, wm, h, hm, pb, c)
		return
	}

	row := st.Direction.isRow()
	mainSize, mainMode, crossSize, crossMode := h, hm, w, wm
	pbMainStart, pbMainEnd, pbCrossStart, pbCrossEnd := pb.Top, pb.Bottom, pb.Left, pb.Right
	mainGap, crossGap := st.RowGap, st.ColumnGap
	if row {
		mainSize, mainMode, crossSize, crossMode = w, wm, h, hm
		pbMainStart, pbMainEnd, pbCrossStart, pbCrossEnd = pb.Left, pb.Right, pb.Top, pb.Bottom
		mainGap, crossGap = st.ColumnGap, st.RowGap
	}
	innerMain := inner(mainSize, pbMainStart+pbMainEnd)
	innerCross := inner(crossSize, pbCrossStart+pbCrossEnd)

	// sizes are expressed per axis; these map main/cross back to width/height
	toWH := func(main, cross int) (int, int) {
		if row {
			return main, cross
		}
		return cross, main
	}
	modesWH := func(main MeasureMode, cross MeasureMode) (MeasureMode, MeasureMode) {
		if row {
			return main, cross
		}
		return cross, main
	}
	mainOf := func(sz Size) int {
		if row {
			return sz.Width
		}
		return sz.Height
	}
	crossOf := func(sz Size) int {
		if row {
			return sz.Height
		}
		return sz.Width
	}
	mainDims := func(cs *Style) (Value, Value, Value) {
		if row {
			return cs.Width, cs.MinWidth, cs.MaxWidth
		}
		return cs.Height, cs.MinHeight, cs.MaxHeight
	}
	crossDims := func(cs *Style) (Value, Value, Value) {
		if row {
			return cs.Height, cs.MinHeight, cs.MaxHeight
		}
		return cs.Width, cs.MinWidth, cs.MaxWidth
	}
	childConstraints := func(main int, mm MeasureMode, cross int, cm MeasureMode) constraints {
		cw, ch := toWH(main, cross)
		cwm, chm := modesWH(mm, cm)
		ow, oh := toWH(innerMain, innerCross)
		return constraints{width: cw, wMode: cwm, height: ch, hMode: chm, ownerW: ow, ownerH: oh}
	}

	var items []*flexItem
	var absolutes []*Node
	for _, child := range n.children {
		cs := &child.Style
		switch {
		case cs.Display == DisplayNone:
			child.zero()
			continue
		case cs.Position == Absolute:
			absolutes = append(absolutes, child)
			continue
		}
		it := &flexItem{node: child}
		if row {
			it.mainStart, it.mainEnd = cs.Margin.Left, cs.Margin.Right
			it.crossStart, it.crossEnd = cs.Margin.Top, cs.Margin.Bottom
		} else {
			it.mainStart, it.mainEnd = cs.Margin.Top, cs.Margin.Bottom
			it.crossStart, it.crossEnd = cs.Margin.Left, cs.Margin.Right
		}
		it.align = cs.AlignSelf
		if it.align == AlignAuto {
			it.align = st.AlignItems
		}
		if it.align == AlignAuto {
			it.align = AlignStretch
		}
		crossDim, _, _ := crossDims(cs)
		_, crossDeclared := crossDim.resolve(innerCross)
		it.stretch = it.align == AlignStretch && !crossDeclared

		mainDim, minMain, maxMain := mainDims(cs)
		if b, ok := cs.Basis.resolve(innerMain); ok {
			it.base = b
		} else if b, ok := mainDim.resolve(innerMain); ok {
			it.base = b
		} else {
			mainAvail, mainAvailMode := Undefined, MeasureUndefined
			if !IsUndefined(innerMain) {
				mainAvail, mainAvailMode = max(0, innerMain-it.mainMargin()), MeasureAtMost
			}
			crossAvail, crossAvailMode := Undefined, MeasureUndefined
			if !IsUndefined(innerCross) {
				crossAvail, crossAvailMode = max(0, innerCross-it.crossMargin()), MeasureAtMost
				if it.stretch && crossMode == MeasureExactly {
					crossAvailMode = MeasureExactly
				}
			}
			it.base = mainOf(s.measure(child, childConstraints(mainAvail, mainAvailMode, crossAvail, crossAvailMode)))
		}
		it.base = bound(it.base, minMain, maxMain, innerMain, 0)
		it.main = it.base
		items = append(items, it)
	}

	lines := breakLines(items, st.Wrap != NoWrap && !IsUndefined(innerMain), innerMain, mainGap)

	if mainMode == MeasureExactly {
		for _, line := range lines {
			s.flexLine(line, innerMain, mainGap, mainDims)
		}
	}

	// cross sizes from content, given the resolved main sizes
	lineCross := make([]int, len(lines))
	for li, line := range lines {
		for _, it := range line {
			crossAvail, crossAvailMode := Undefined, MeasureUndefined
			if !IsUndefined(innerCross) {
				crossAvail, crossAvailMode = max(0, innerCross-it.crossMargin()), MeasureAtMost
			}
			sz := s.measure(it.node, childConstraints(it.main, MeasureExactly, crossAvail, crossAvailMode))
			it.cross = crossOf(sz)
			lineCross[li] = max(lineCross[li], it.cross+it.crossMargin())
		}
	}

	// container size
	contentMain, contentCross := 0, 0
	for li, line := range lines {
		contentMain = max(contentMain, lineLength(line, mainGap))
		contentCross += lineCross[li]
		if li > 0 {
			contentCross += crossGap
		}
	}
	_, minMain, maxMain := mainDims(st)
	_, minCross, maxCross := crossDims(st)
	ownerMain, ownerCross := c.ownerH, c.ownerW
	if row {
		ownerMain, ownerCross = c.ownerW, c.ownerH
	}
	switch mainMode {
	case MeasureExactly:
	case MeasureAtMost:
		mainSize = min(contentMain+pbMainStart+pbMainEnd, mainSize)
	default:
		mainSize = contentMain + pbMainStart + pbMainEnd
	}
	switch crossMode {
	case MeasureExactly:
	case MeasureAtMost:
		crossSize = min(contentCross+pbCrossStart+pbCrossEnd, crossSize)
	default:
		crossSize = contentCross + pbCrossStart + pbCrossEnd
	}
	mainSize = bound(mainSize, minMain, maxMain, ownerMain, pbMainStart+pbMainEnd)
	crossSize = bound(crossSize, minCross, maxCross, ownerCross, pbCrossStart+pbCrossEnd)
	innerMain = mainSize - pbMainStart - pbMainEnd
	innerCross = crossSize - pbCrossStart - pbCrossEnd

	if len(lines) == 1 {
		lineCross[0] = innerCross
	}

	// placement
	crossPos := 0
	for li, line := range lines {
		lead, between := justify(n.Style.Justify, innerMain-lineLength(line, mainGap), len(line))
		lineStart := pbCrossStart + crossPos
		if st.Wrap == WrapReverse {
			lineStart = pbCrossStart + innerCross - crossPos - lineCross[li]
		}

		pos := lead
		for i, it := range line {
			_, minC, maxC := crossDims(&it.node.Style)
			if it.stretch {
				it.cross = bound(lineCross[li]-it.crossMargin(), minC, maxC, innerCross, 0)
			}
			s.layoutNode(it.node, childConstraints(it.main, MeasureExactly, it.cross, MeasureExactly))

			var mainAt int
			if st.Direction.isReverse() {
				mainAt = pbMainStart + innerMain - pos - it.mainEnd - it.main
			} else {
				mainAt = pbMainStart + pos + it.mainStart
			}
			pos += it.mainMargin() + it.main + mainGap
			if i < len(between) {
				pos += between[i]
			}

			crossAt := lineStart + it.crossStart
			free := lineCross[li] - it.crossMargin() - it.cross
			switch it.align {
			case AlignCenter:
				crossAt += free / 2
			case AlignEnd:
				crossAt += free
			}

			if row {
				it.node.layout.Left, it.node.layout.Top = mainAt, crossAt
			} else {
				it.node.layout.Left, it.node.layout.Top = crossAt, mainAt
			}
			it.node.offsetRelative(toWH(innerMain, innerCross))
		}
		crossPos += lineCross[li] + crossGap
	}

	n.layout.Width, n.layout.Height = toWH(mainSize, crossSize)

	for _, child := range absolutes {
		s.layoutAbsolute(n, child, pb)
	}
}

func (s *solver) layoutLeaf(n *Node, w int, wm MeasureMode, h int, hm MeasureMode, pb Edges, c constraints) {
	st := &n.Style
	width, height := w, h
	if wm != MeasureExactly || hm != MeasureExactly {
		innerW := Undefined
		if wm != MeasureUndefined {
			innerW = max(0, w-pb.horizontal())
		}
		m := n.measure(innerW, wm)
		if wm != MeasureExactly {
			width = m.Width + pb.horizontal()
			if wm == MeasureAtMost {
				width = min(width, w)
			}
		}
		if hm != MeasureExactly {
			height = m.Height + pb.vertical()
			if hm == MeasureAtMost {
				height = min(height, h)
			}
		}
	}
	n.layout.Width = bound(width, st.MinWidth, st.MaxWidth, c.ownerW, pb.horizontal())
	n.layout.Height = bound(height, st.MinHeight, st.MaxHeight, c.ownerH, pb.vertical())
}

// flexLine grows or shrinks the items of one line to fill innerMain.
func (s *solver) flexLine(line []*flexItem, innerMain, gap int, mainDims func(*Style) (Value, Value, Value)) {
	free := innerMain - lineLength(line, gap)
	if free == 0 {
		return
	}
	weights := make([]float64, len(line))
	total := 0.0
	for i, it := range line {
		if free > 0 {
			weights[i] = it.node.Style.Grow
		} else {
			weights[i] = it.node.Style.Shrink * float64(it.base)
		}
		total += weights[i]
	}
	if total <= 0 {
		return
	}
	amount := free
	if amount < 0 {
		amount = -amount
	}
	shares := distribute(amount, weights)
	for i, it := range line {
		_, minMain, maxMain := mainDims(&it.node.Style)
		if free > 0 {
			it.main = it.base + shares[i]
		} else {
			it.main = it.base - shares[i]
		}
		it.main = bound(it.main, minMain, maxMain, innerMain, 0)
	}
}

func (s *solver) layoutAbsolute(parent, child *Node, pb Edges) {
	cs := &child.Style
	brd := parent.Style.Border
	pw := parent.layout.Width - brd.horizontal()
	ph := parent.layout.Height - brd.vertical()

	c := constraints{width: Undefined, height: Undefined, ownerW: pw, ownerH: ph}
	if v, ok := cs.Width.resolve(pw); ok {
		c.width, c.wMode = v, MeasureExactly
	} else if l, ok := cs.Left.resolve(pw); ok {
		if r, ok := cs.Right.resolve(pw); ok {
			c.width, c.wMode = max(0, pw-l-r-cs.Margin.horizontal()), MeasureExactly
		}
	}
	if c.wMode == MeasureUndefined {
		c.width, c.wMode = max(0, pw), MeasureAtMost
	}
	if v, ok := cs.Height.resolve(ph); ok {
		c.height, c.hMode = v, MeasureExactly
	} else if t, ok := cs.Top.resolve(ph); ok {
		if b, ok := cs.Bottom.resolve(ph); ok {
			c.height, c.hMode = max(0, ph-t-b-cs.Margin.vertical()), MeasureExactly
		}
	}

	sz := s.measure(child, c)
	s.layoutNode(child, constraints{
		width: sz.Width, wMode: MeasureExactly,
		height: sz.Height, hMode: MeasureExactly,
		ownerW: pw, ownerH: ph,
	})

	if l, ok := cs.Left.resolve(pw); ok {
		child.layout.Left = brd.Left + l + cs.Margin.Left
	} else if r, ok := cs.Right.resolve(pw); ok {
		child.layout.Left = parent.layout.Width - brd.Right - r - cs.Margin.Right - sz.Width
	} else {
		child.layout.Left = pb.Left + cs.Margin.Left
	}
	if t, ok := cs.Top.resolve(ph); ok {
		child.layout.Top = brd.Top + t + cs.Margin.Top
	} else if b, ok := cs.Bottom.resolve(ph); ok {
		child.layout.Top = parent.layout.Height - brd.Bottom - b - cs.Margin.Bottom - sz.Height
	} else {
		child.layout.Top = pb.Top + cs.Margin.Top
	}
}

// offsetRelative shifts a relatively positioned node by its insets.
func (n *Node) offsetRelative(ownerW, ownerH int) {
	st := &n.Style
	if l, ok := st.Left.resolve(ownerW); ok {
		n.layout.Left += l
	} else if r, ok := st.Right.resolve(ownerW); ok {
		n.layout.Left -= r
	}
	if t, ok := st.Top.resolve(ownerH); ok {
		n.layout.Top += t
	} else if b, ok := st.Bottom.resolve(ownerH); ok {
		n.layout.Top -= b
	}
}

// zero clears the layout of a subtree that is not displayed.
func (n *Node) zero() {
	n.layout = Layout{}
	for _, c := range n.children {
		c.zero()
	}
}

func lineLength(line []*flexItem, gap int) int {
	total := 0
	for i, it := range line {
		total += it.main + it.mainMargin()
		if i > 0 {
			total += gap
		}
	}
	return total
}

func breakLines(items []*flexItem, wrap bool, innerMain, gap int) [][]*flexItem {
	if len(items) == 0 {
		return nil
	}
	if !wrap {
		return [][]*flexItem{items}
	}
	var lines [][]*flexItem
	var cur []*flexItem
	used := 0
	for _, it := range items {
		size := it.base + it.mainMargin()
		if len(cur) > 0 && used+gap+size > innerMain {
			lines = append(lines, cur)
			cur, used = nil, 0
		}
		if len(cur) > 0 {
			used += gap
		}
		cur = append(cur, it)
		used += size
	}
	return append(lines, cur)
}

// distribute splits amount in proportion to weights. Rounding leftovers go
// one cell at a time to the earliest weighted entries, so the shares always
// sum to amount.
func distribute(amount int, weights []float64) []int {
	shares := make([]int, len(weights))
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return shares
	}
	given := 0
	for i, w := range weights {
		shares[i] = int(float64(amount) * w / total)
		given += shares[i]
	}
	for i := 0; given < amount; i = (i + 1) % len(weights) {
		if weights[i] > 0 {
			shares[i]++
			given++
		}
	}
	return shares
}

// justify returns the offset of the first item and the extra space after
// each item but the last.
func justify(j Justify, remaining, count int) (int, []int) {
	if count == 0 {
		return 0, nil
	}
	between := make([]int, count-1)
	switch j {
	case JustifyCenter:
		return remaining / 2, between
	case JustifyEnd:
		return remaining, between
	}
	if remaining <= 0 {
		return 0, between
	}
	switch j {
	case JustifySpaceBetween:
		if count == 1 {
			return 0, between
		}
		copy(between, distribute(remaining, ones(count-1)))
		return 0, between
	case JustifySpaceAround:
		shares := distribute(remaining, ones(count))
		for i := range between {
			between[i] = shares[i] - shares[i]/2 + shares[i+1]/2
		}
		return shares[0] / 2, between
	case JustifySpaceEvenly:
		shares := distribute(remaining, ones(count+1))
		copy(between, shares[1:])
		return shares[0], between
	}
	return 0, between
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
