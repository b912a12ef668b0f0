package world

// Matrices describe multi-tile shapes. Row 0 is the northmost row, column 0
// the westmost column. An entry n >= 0 puts the tile at that position into
// slot n of the result; negative entries are holes.

// Hole marks an unused matrix cell.
const Hole = -1

// TilesFromMatrix resolves a matrix whose upper-left cell sits on corner.
func (g *Grid) TilesFromMatrix(matrix [][]int, corner Coord) []Coord {
	n := 0
	for _, row := range matrix {
		for _, entry := range row {
			if entry+1 > n {
				n = entry + 1
			}
		}
	}
	tiles := make([]Coord, n)
	for j, row := range matrix {
		for i, entry := range row {
			if entry >= 0 {
				tiles[entry] = g.Wrap(Coord{X: corner.X + i, Y: corner.Y - j})
			}
		}
	}
	return tiles
}

// NeighborsFromMatrix resolves a matrix around origin, where me is origin's
// (column, row) cell inside the matrix.
func (g *Grid) NeighborsFromMatrix(matrix [][]int, origin Coord, me Coord) []Coord {
	return g.TilesFromMatrix(matrix, Coord{X: origin.X - me.X, Y: origin.Y + me.Y})
}

// RotateMatrix turns a matrix a quarter turn clockwise.
func RotateMatrix(matrix [][]int) [][]int {
	if len(matrix) == 0 {
		return nil
	}
	rows, cols := len(matrix), len(matrix[0])
	out := make([][]int, cols)
	for i := 0; i < cols; i++ {
		out[i] = make([]int, rows)
		for j := 0; j < rows; j++ {
			out[i][j] = matrix[rows-j-1][i]
		}
	}
	return out
}

// RotateMatrixTimes applies RotateMatrix n times.
func RotateMatrixTimes(matrix [][]int, n int) [][]int {
	for i := 0; i < mod(n, 4); i++ {
		matrix = RotateMatrix(matrix)
	}
	return matrix
}
