// internal/game/builder.go
//
// Layout ingestion.
// Responsibilities:
//   - Validate the raw layout shape (10 rows of 10 chars over {'0','1'}).
//   - Populate a Board and derive its Ship list by grouping occupied cells
//     through orthogonal adjacency (diagonal contact never merges ships).
//   - Optionally enforce fleet shape rules (straight ships, no contact).
//
// Grouping is a flood fill over the indexed grid, discovering ships in
// row-major order of their first cell.

package game

import (
	"cmp"
	"fmt"
	"slices"
)

// MaxShipLength bounds ship length under strict fleet validation.
const MaxShipLength = 5

// BuildBoard parses rows into a Board and its Ships. Nothing shared is touched
// on failure; all errors wrap ErrMalformedLayout.
func BuildBoard(rows []string) (*Board, []*Ship, error) {
	if len(rows) != Size {
		return nil, nil, fmt.Errorf("%w: want %d rows, got %d", ErrMalformedLayout, Size, len(rows))
	}
	b := NewBoard()
	for r, line := range rows {
		if len(line) != Size {
			return nil, nil, fmt.Errorf("%w: row %d has %d cells", ErrMalformedLayout, r, len(line))
		}
		for c := 0; c < Size; c++ {
			switch line[c] {
			case '1':
				b.cells[r][c] = Occupied
			case '0':
			default:
				return nil, nil, fmt.Errorf("%w: invalid cell %q at (%d,%d)", ErrMalformedLayout, line[c], r, c)
			}
		}
	}
	return b, groupShips(b), nil
}

// groupShips partitions the board's occupied cells into connected components.
func groupShips(b *Board) []*Ship {
	var seen [Size][Size]bool
	var ships []*Ship
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] != Occupied || seen[r][c] {
				continue
			}
			ships = append(ships, floodFrom(b, &seen, Position{Row: r, Col: c}))
		}
	}
	return ships
}

var orthogonal = [4]Position{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func floodFrom(b *Board, seen *[Size][Size]bool, start Position) *Ship {
	seen[start.Row][start.Col] = true
	stack := []Position{start}
	var ps []Position
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ps = append(ps, p)
		for _, d := range orthogonal {
			r, c := p.Row+d.Row, p.Col+d.Col
			if !inBounds(r, c) || seen[r][c] || b.cells[r][c] != Occupied {
				continue
			}
			seen[r][c] = true
			stack = append(stack, Position{Row: r, Col: c})
		}
	}
	slices.SortFunc(ps, func(a, b Position) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return &Ship{Positions: ps}
}

// ValidateFleet enforces the stricter placement rules: every ship is a
// straight line of 1..MaxShipLength cells and no two ships touch, diagonals
// included.
func ValidateFleet(ships []*Ship) error {
	var owner [Size][Size]int // 1-based ship index, 0 = water
	for i, s := range ships {
		if !s.straight() {
			return fmt.Errorf("%w: ship at (%d,%d) is not a straight line",
				ErrMalformedLayout, s.Positions[0].Row, s.Positions[0].Col)
		}
		if s.Len() > MaxShipLength {
			return fmt.Errorf("%w: ship at (%d,%d) is %d long (max %d)",
				ErrMalformedLayout, s.Positions[0].Row, s.Positions[0].Col, s.Len(), MaxShipLength)
		}
		for _, p := range s.Positions {
			owner[p.Row][p.Col] = i + 1
		}
	}
	for i, s := range ships {
		for _, p := range s.Positions {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					r, c := p.Row+dr, p.Col+dc
					if !inBounds(r, c) {
						continue
					}
					if o := owner[r][c]; o != 0 && o != i+1 {
						return fmt.Errorf("%w: ships touch at (%d,%d)", ErrMalformedLayout, r, c)
					}
				}
			}
		}
	}
	return nil
}
