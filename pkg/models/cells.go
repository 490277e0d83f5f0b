package models

// BoardCellCount is the number of squares on a chessboard.
const BoardCellCount = 64

// allCells is the canonical cell ordering: rank-major, files a-h within
// each rank ("a1", "b1", ... "h1", "a2", ... "h8").
var allCells = buildCells()

func buildCells() []string {
	cells := make([]string, 0, BoardCellCount)
	for rank := '1'; rank <= '8'; rank++ {
		for file := 'a'; file <= 'h'; file++ {
			cells = append(cells, string(file)+string(rank))
		}
	}
	return cells
}

// AllCells returns the 64 board cell labels in canonical order.
// The returned slice is a copy; callers may mutate it freely.
func AllCells() []string {
	cells := make([]string, BoardCellCount)
	copy(cells, allCells)
	return cells
}

// ValidCell reports whether label names a real board cell ("a1".."h8").
func ValidCell(label string) bool {
	if len(label) != 2 {
		return false
	}
	return label[0] >= 'a' && label[0] <= 'h' && label[1] >= '1' && label[1] <= '8'
}

// PieceClasses is the 13-symbol classifier alphabet: white pieces,
// black pieces, and "0" for an empty square.
var PieceClasses = []string{
	"K", "Q", "R", "B", "N", "P",
	"k", "q", "r", "b", "n", "p",
	"0",
}

// StartingFEN is the standard initial chess position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
