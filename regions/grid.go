package regions

import (
	"fmt"
	"math"
	"slices"
)

// Grid координатная сетка с широтами, упорядоченными с юга на север.
// После создания не изменяется.
type Grid struct {
	lat     []float64
	lon     []float64
	flipped bool
	weights [][]float64
}

// NewGrid проверяет и копирует векторы координат.
// Сетка с севера на юг переворачивается, флаг сохраняется в Flipped.
func NewGrid(lat, lon []float64) (*Grid, error) {
	if len(lat) == 0 || len(lon) == 0 {
		return nil, ErrEmptyCoords
	}
	if err := checkFinite("lat", lat); err != nil {
		return nil, err
	}
	if err := checkFinite("lon", lon); err != nil {
		return nil, err
	}

	descending, err := latOrder(lat)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		lat:     slices.Clone(lat),
		lon:     slices.Clone(lon),
		flipped: descending,
	}
	if descending {
		slices.Reverse(g.lat)
	}
	g.weights = latWeights(g.lat, len(g.lon))

	return g, nil
}

// latOrder определяет направление широт. Возвращает true для убывающих.
func latOrder(lat []float64) (bool, error) {
	if len(lat) < 2 {
		return false, nil
	}
	descending := lat[1] < lat[0]
	for i := 1; i < len(lat); i++ {
		d := lat[i] - lat[i-1]
		if d == 0 || (d < 0) != descending {
			return false, fmt.Errorf("%w: lat[%d]=%g, lat[%d]=%g", ErrNonMonotonic, i-1, lat[i-1], i, lat[i])
		}
	}
	return descending, nil
}

func checkFinite(name string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d]=%g", ErrNonFiniteCoord, name, i, v)
		}
	}
	return nil
}

// latWeights строит сетку весов cos(широты), одинаковых по долготе
func latWeights(lat []float64, nlon int) [][]float64 {
	w := make([][]float64, len(lat))
	for i, phi := range lat {
		c := math.Cos(phi * math.Pi / 180)
		row := make([]float64, nlon)
		for j := range row {
			row[j] = c
		}
		w[i] = row
	}
	return w
}

func (g *Grid) NLat() int { return len(g.lat) }
func (g *Grid) NLon() int { return len(g.lon) }

// Lat возвращает копию широт (с юга на север)
func (g *Grid) Lat() []float64 { return slices.Clone(g.lat) }

// Lon возвращает копию долгот
func (g *Grid) Lon() []float64 { return slices.Clone(g.lon) }

// Flipped сообщает, была ли исходная сетка упорядочена с севера на юг
func (g *Grid) Flipped() bool { return g.flipped }

// Weights возвращает копию сетки весов cos(широты)
func (g *Grid) Weights() [][]float64 {
	out := make([][]float64, len(g.weights))
	for i, row := range g.weights {
		out[i] = slices.Clone(row)
	}
	return out
}

// Mask строит маску региона на этой сетке
func (g *Grid) Mask(r Region) [][]float64 {
	return buildMask(g.lat, g.lon, r)
}

// RegionWeights возвращает маску региона, умноженную на веса широт
func (g *Grid) RegionWeights(r Region) [][]float64 {
	w := g.Mask(r)
	for i, row := range w {
		for j := range row {
			row[j] *= g.weights[i][j]
		}
	}
	return w
}
