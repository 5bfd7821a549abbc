package regions

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Means вычисляет региональные средние для поля [ntime][nlat][nlon].
// Результат имеет размер [len(c)][ntime], строки в порядке каталога.
func Means(data [][][]float64, lat, lon []float64, c Catalog) ([][]float64, error) {
	f, err := NewField(data, lat, lon)
	if err != nil {
		return nil, err
	}
	return f.RegionalMeans(c)
}

// SnapshotMeans то же, что Means, для одного среза [nlat][nlon]
func SnapshotMeans(data [][]float64, lat, lon []float64, c Catalog) ([][]float64, error) {
	return Means([][][]float64{data}, lat, lon, c)
}

// RegionalMeans вычисляет средние по всем регионам каталога
func (f *Field) RegionalMeans(c Catalog) ([][]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rm := make([][]float64, len(c))
	for k, r := range c {
		rm[k] = f.weightedSeries(f.grid.RegionWeights(r))
	}
	return rm, nil
}

// RegionMean вычисляет ряд средних [ntime] для одного региона
func (f *Field) RegionMean(r Region) ([]float64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return f.weightedSeries(f.grid.RegionWeights(r)), nil
}

// GlobalHemisphericMeans вычисляет глобальное среднее и средние по
// полушариям. Северное - широты > 0, южное - широты < 0.
func (f *Field) GlobalHemisphericMeans() (global, north, south []float64) {
	lat := f.grid.lat
	w := f.grid.Weights()
	nh := f.grid.Weights()
	sh := f.grid.Weights()
	for i, phi := range lat {
		if phi <= 0 {
			zero(nh[i])
		}
		if phi >= 0 {
			zero(sh[i])
		}
	}
	return f.weightedSeries(w), f.weightedSeries(nh), f.weightedSeries(sh)
}

func zero(row []float64) {
	for j := range row {
		row[j] = 0
	}
}

// weightedSeries считает взвешенное среднее для каждого среза.
// Нулевой суммарный вес дает NaN.
func (f *Field) weightedSeries(w [][]float64) []float64 {
	series := make([]float64, len(f.data))

	if maxWeight(w) <= 0 {
		for t := range series {
			series[t] = math.NaN()
		}
		return series
	}

	n := f.grid.NLat() * f.grid.NLon()
	values := make([]float64, 0, n)
	weights := make([]float64, 0, n)
	for t, slice := range f.data {
		values, weights = values[:0], weights[:0]
		for i, row := range slice {
			for j, v := range row {
				if w[i][j] <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				values = append(values, v)
				weights = append(weights, w[i][j])
			}
		}
		series[t] = weightedMean(values, weights)
	}
	return series
}

func weightedMean(values, weights []float64) float64 {
	if len(values) == 0 || floats.Sum(weights) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, weights)
}

func maxWeight(w [][]float64) float64 {
	m := 0.0
	for _, row := range w {
		if len(row) == 0 {
			continue
		}
		if v := floats.Max(row); v > m {
			m = v
		}
	}
	return m
}
