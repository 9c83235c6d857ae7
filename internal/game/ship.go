package game

// Ship is a group of orthogonally connected occupied cells derived from a
// submitted layout. Positions are kept in row-major order.
type Ship struct {
	Positions []Position
	sunk      bool
}

// Len is the number of cells the ship covers.
func (s *Ship) Len() int { return len(s.Positions) }

// Sunk reports whether every position has been hit.
func (s *Ship) Sunk() bool { return s.sunk }

// Horizontal reports whether all positions share one row. A single-cell
// ship counts as horizontal.
func (s *Ship) Horizontal() bool {
	for _, p := range s.Positions[1:] {
		if p.Row != s.Positions[0].Row {
			return false
		}
	}
	return true
}

// Contains reports whether (row, col) belongs to the ship.
func (s *Ship) Contains(row, col int) bool {
	for _, p := range s.Positions {
		if p.Row == row && p.Col == col {
			return true
		}
	}
	return false
}

// refresh re-derives the sunk flag from b and reports whether the ship
// became sunk on this call.
func (s *Ship) refresh(b *Board) bool {
	if s.sunk {
		return false
	}
	for _, p := range s.Positions {
		if b.cells[p.Row][p.Col] != Hit {
			return false
		}
	}
	s.sunk = true
	return true
}

// straight reports whether the ship lies on a single row or a single column.
func (s *Ship) straight() bool {
	if s.Horizontal() {
		return true
	}
	for _, p := range s.Positions[1:] {
		if p.Col != s.Positions[0].Col {
			return false
		}
	}
	return true
}

func shipAt(ships []*Ship, row, col int) *Ship {
	for _, s := range ships {
		if s.Contains(row, col) {
			return s
		}
	}
	return nil
}
