package game

import "fmt"

// Board is one player's fixed-size grid. It owns no game rules beyond cell
// access; the match decides what a shot does.
type Board struct {
	cells [Size][Size]CellState
}

// NewBoard returns an all-Empty board.
func NewBoard() *Board { return &Board{} }

// Get returns the state at (row, col) or ErrOutOfBounds.
func (b *Board) Get(row, col int) (CellState, error) {
	if !inBounds(row, col) {
		return Empty, fmt.Errorf("get (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return b.cells[row][col], nil
}

// Set overwrites the state at (row, col) or returns ErrOutOfBounds.
func (b *Board) Set(row, col int, s CellState) error {
	if !inBounds(row, col) {
		return fmt.Errorf("set (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	b.cells[row][col] = s
	return nil
}

// RemainingShipCells counts cells still Occupied.
func (b *Board) RemainingShipCells() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == Occupied {
				n++
			}
		}
	}
	return n
}

// Count returns how many cells are in state s.
func (b *Board) Count(s CellState) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == s {
				n++
			}
		}
	}
	return n
}

// blockAround marks every Empty cell in the 8-neighbourhood of the given
// positions as Blocked and returns the newly blocked cells in visit order.
func (b *Board) blockAround(ps []Position) []Position {
	var marked []Position
	for _, p := range ps {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := p.Row+dr, p.Col+dc
				if !inBounds(r, c) || b.cells[r][c] != Empty {
					continue
				}
				b.cells[r][c] = Blocked
				marked = append(marked, Position{Row: r, Col: c})
			}
		}
	}
	return marked
}
