package table

// allocateColumns fills the column arrays of p. Absolute widths win over
// fractions; without either the table width is split evenly.
func allocateColumns(p *Params, widths, fractions []float64) error {
	n := p.ColumnCount
	p.ColumnXs = make([]float64, n)
	p.ColumnWidths = make([]float64, n)
	p.ColumnTextWidths = make([]float64, n)

	switch {
	case widths != nil:
		copy(p.ColumnWidths, widths)
	case fractions != nil:
		for i, f := range fractions {
			p.ColumnWidths[i] = p.Width * f
		}
	default:
		for i := range p.ColumnWidths {
			p.ColumnWidths[i] = p.Width / float64(n)
		}
	}

	x := p.StartX
	for i, w := range p.ColumnWidths {
		if w <= 0 {
			return invalid("column %d has width %g", i, w)
		}
		p.ColumnXs[i] = x
		p.ColumnTextWidths[i] = w - 2*p.HorPadding
		if p.ColumnTextWidths[i] <= 0 {
			return invalid("column %d is narrower than its padding", i)
		}
		x += w
	}
	return nil
}
