package regions

import (
	"fmt"
	"slices"
)

// Field сеточное поле [ntime][nlat][nlon] на сетке Grid.
// Строки по широте хранятся с юга на север, как в Grid.
type Field struct {
	grid *Grid
	data [][][]float64
}

// NewField проверяет размеры и копирует данные [ntime][nlat][nlon].
// Для сетки с севера на юг переворачиваются только строки широт.
func NewField(data [][][]float64, lat, lon []float64) (*Field, error) {
	grid, err := NewGrid(lat, lon)
	if err != nil {
		return nil, err
	}
	return newFieldOnGrid(data, grid, grid.Flipped())
}

// NewSnapshot создает поле из одного среза [nlat][nlon] (ntime = 1)
func NewSnapshot(data [][]float64, lat, lon []float64) (*Field, error) {
	return NewField([][][]float64{data}, lat, lon)
}

// newFieldOnGrid создает поле на готовой сетке.
// flip указывает, что строки data идут с севера на юг.
func newFieldOnGrid(data [][][]float64, grid *Grid, flip bool) (*Field, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: нет ни одного временного среза", ErrShapeMismatch)
	}

	nlat, nlon := grid.NLat(), grid.NLon()
	out := make([][][]float64, len(data))
	for t, slice := range data {
		if len(slice) != nlat {
			return nil, fmt.Errorf("%w: срез %d содержит %d строк, ожидалось nlat=%d",
				ErrShapeMismatch, t, len(slice), nlat)
		}
		rows := make([][]float64, nlat)
		for i, row := range slice {
			if len(row) != nlon {
				return nil, fmt.Errorf("%w: срез %d, строка %d содержит %d значений, ожидалось nlon=%d",
					ErrShapeMismatch, t, i, len(row), nlon)
			}
			rows[i] = slices.Clone(row)
		}
		if flip {
			slices.Reverse(rows)
		}
		out[t] = rows
	}

	return &Field{grid: grid, data: out}, nil
}

// Grid возвращает сетку поля
func (f *Field) Grid() *Grid { return f.grid }

// NTime возвращает число временных срезов
func (f *Field) NTime() int { return len(f.data) }

// At возвращает значение в узле (t, i, j) при порядке широт с юга на север
func (f *Field) At(t, i, j int) float64 { return f.data[t][i][j] }
