package regions_test

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regional-means/regions"
)

func constant(ntime, nlat, nlon int, v float64) [][][]float64 {
	data := make([][][]float64, ntime)
	for t := range data {
		data[t] = make([][]float64, nlat)
		for i := range data[t] {
			row := make([]float64, nlon)
			for j := range row {
				row[j] = v
			}
			data[t][i] = row
		}
	}
	return data
}

// TestMeans_EndToEnd воспроизводит проверочную сетку 5x4 с выбросом -7.
func TestMeans_EndToEnd(t *testing.T) {
	lat := []float64{-90, -45, 0, 45, 90}
	lon := []float64{0, 90, 180, 270}
	field := constant(1, len(lat), len(lon), 1)[0]
	field[1][1] = -7

	r := regions.Region{Name: "test", South: 0, North: 90, West: 230, East: 90}
	rm, err := regions.SnapshotMeans(field, lat, lon, regions.Catalog{r})
	require.NoError(t, err)
	require.Len(t, rm, 1)
	require.Len(t, rm[0], 1)
	assert.Equal(t, 1.0, rm[0][0])

	// глобальное среднее учитывает выброс
	f, err := regions.NewSnapshot(field, lat, lon)
	require.NoError(t, err)
	global, _, south := f.GlobalHemisphericMeans()
	assert.Less(t, global[0], 1.0)
	assert.Less(t, south[0], 1.0)
}

// TestMeans_Constant проверяет, что среднее константы равно константе.
func TestMeans_Constant(t *testing.T) {
	lat := seq(-90, 90, 5)
	lon := seq(0, 355, 5)
	const v = 3.25
	data := constant(3, len(lat), len(lon), v)

	c := regions.DefaultCatalog()
	rm, err := regions.Means(data, lat, lon, c)
	require.NoError(t, err)
	require.Len(t, rm, len(c))
	for k, row := range rm {
		require.Len(t, row, 3)
		for _, got := range row {
			assert.InDelta(t, v, got, 1e-12, "region %s", c[k].Name)
		}
	}
}

// TestMeans_OrientationInvariant сравнивает сетки юг-север и север-юг.
func TestMeans_OrientationInvariant(t *testing.T) {
	lat := seq(-90, 90, 10)
	lon := seq(0, 350, 10)
	data := make([][][]float64, 2)
	for ti := range data {
		data[ti] = make([][]float64, len(lat))
		for i, phi := range lat {
			row := make([]float64, len(lon))
			for j, x := range lon {
				row[j] = float64(ti+1)*phi + math.Sin(x*math.Pi/180)
			}
			data[ti][i] = row
		}
	}

	flippedLat := slices.Clone(lat)
	slices.Reverse(flippedLat)
	flipped := make([][][]float64, len(data))
	for ti := range data {
		flipped[ti] = slices.Clone(data[ti])
		slices.Reverse(flipped[ti])
	}

	c := regions.DefaultCatalog()
	want, err := regions.Means(data, lat, lon, c)
	require.NoError(t, err)
	got, err := regions.Means(flipped, flippedLat, lon, c)
	require.NoError(t, err)

	for k := range want {
		assert.InDeltaSlice(t, want[k], got[k], 1e-12, "region %s", c[k].Name)
	}
}

// TestMeans_FlipKeepsTimeOrder проверяет, что переворот не трогает ось времени.
func TestMeans_FlipKeepsTimeOrder(t *testing.T) {
	lat := []float64{60, 0, -60}
	lon := []float64{0, 180}
	data := [][][]float64{
		constant(1, 3, 2, 1)[0],
		constant(1, 3, 2, 2)[0],
		constant(1, 3, 2, 3)[0],
	}
	f, err := regions.NewField(data, lat, lon)
	require.NoError(t, err)
	assert.True(t, f.Grid().Flipped())
	assert.Equal(t, []float64{-60, 0, 60}, f.Grid().Lat())

	row, err := f.RegionMean(regions.Region{South: -90, North: 90, West: 0, East: 360})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, row, 1e-12)
}

func TestField_At(t *testing.T) {
	lat := []float64{60, 0, -60}
	lon := []float64{0, 180}
	data := [][][]float64{
		{{1, 2}, {3, 4}, {5, 6}},
		{{7, 8}, {9, 10}, {11, 12}},
	}
	f, err := regions.NewField(data, lat, lon)
	require.NoError(t, err)
	require.Equal(t, 2, f.NTime())

	// строка 0 после переворота соответствует -60
	assert.Equal(t, 5.0, f.At(0, 0, 0))
	assert.Equal(t, 2.0, f.At(0, 2, 1))
	assert.Equal(t, 12.0, f.At(1, 0, 1))

	// исходный срез не связан с полем
	data[0][2][0] = 100
	assert.Equal(t, 5.0, f.At(0, 0, 0))
}

func TestMeans_NoOverlapIsNaN(t *testing.T) {
	lat := []float64{-90, -45, 0, 45, 90}
	lon := []float64{0, 90, 180, 270}
	data := constant(4, len(lat), len(lon), 1)

	rm, err := regions.Means(data, lat, lon, regions.Catalog{{Name: "gap", South: 10, North: 20, West: 0, East: 360}})
	require.NoError(t, err)
	require.Len(t, rm[0], 4)
	for _, v := range rm[0] {
		assert.True(t, math.IsNaN(v))
	}
}

func TestMeans_MissingValues(t *testing.T) {
	lat := []float64{0, 60}
	lon := []float64{0, 90}
	nan := math.NaN()
	data := [][][]float64{
		{{nan, 2}, {nan, nan}},
		{{nan, nan}, {nan, nan}},
		{{4, 4}, {math.Inf(1), 1}},
	}
	rm, err := regions.Means(data, lat, lon, regions.Catalog{{Name: "all", South: -90, North: 90, West: 0, East: 360}})
	require.NoError(t, err)

	row := rm[0]
	assert.Equal(t, 2.0, row[0])
	assert.True(t, math.IsNaN(row[1]))

	// веса: cos(0)=1 для двух ячеек по 4, cos(60)=0.5 для ячейки 1
	assert.InDelta(t, (4+4+0.5*1)/2.5, row[2], 1e-12)
}

func TestMeans_RegionWithOnlyMissingCells(t *testing.T) {
	lat := []float64{-45, 45}
	lon := []float64{0, 180}
	nan := math.NaN()
	data := [][][]float64{{{1, 1}, {nan, nan}}}

	rm, err := regions.Means(data, lat, lon, regions.Catalog{
		{Name: "north", South: 0, North: 90, West: 0, East: 360},
		{Name: "south", South: -90, North: 0, West: 0, East: 360},
	})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(rm[0][0]))
	assert.InDelta(t, 1.0, rm[1][0], 1e-12)
}

func TestNewField_Errors(t *testing.T) {
	lat := []float64{-45, 0, 45}
	lon := []float64{0, 120, 240}
	cases := []struct {
		name string
		data [][][]float64
		lat  []float64
		lon  []float64
		err  error
	}{
		{"NoTime", [][][]float64{}, lat, lon, regions.ErrShapeMismatch},
		{"RowCount", constant(1, 2, 3, 0), lat, lon, regions.ErrShapeMismatch},
		{"ColCount", constant(2, 3, 2, 0), lat, lon, regions.ErrShapeMismatch},
		{"EmptyLat", constant(1, 3, 3, 0), nil, lon, regions.ErrEmptyCoords},
		{"NonMonotonic", constant(1, 3, 3, 0), []float64{-45, 45, 0}, lon, regions.ErrNonMonotonic},
		{"Duplicate", constant(1, 3, 3, 0), []float64{0, 0, 45}, lon, regions.ErrNonMonotonic},
		{"NaNCoord", constant(1, 3, 3, 0), lat, []float64{0, math.NaN(), 240}, regions.ErrNonFiniteCoord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := regions.NewField(tc.data, tc.lat, tc.lon)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestRegionalMeans_InvalidRegion(t *testing.T) {
	f, err := regions.NewSnapshot(constant(1, 1, 1, 1)[0], []float64{0}, []float64{0})
	require.NoError(t, err)
	_, err = f.RegionalMeans(regions.Catalog{{Name: "bad", South: 5, North: -5}})
	assert.ErrorIs(t, err, regions.ErrInvalidBounds)
}

func TestGlobalHemisphericMeans(t *testing.T) {
	lat := []float64{-60, -30, 0, 30, 60}
	lon := []float64{0, 180}
	data := [][][]float64{make([][]float64, len(lat))}
	for i, phi := range lat {
		v := 0.0
		switch {
		case phi > 0:
			v = 2
		case phi < 0:
			v = -2
		}
		data[0][i] = []float64{v, v}
	}

	f, err := regions.NewField(data, lat, lon)
	require.NoError(t, err)
	global, north, south := f.GlobalHemisphericMeans()
	assert.InDelta(t, 0, global[0], 1e-12)
	assert.InDelta(t, 2, north[0], 1e-12)
	assert.InDelta(t, -2, south[0], 1e-12)
}

func TestCatalog(t *testing.T) {
	c := regions.DefaultCatalog()
	require.Len(t, c, 7)
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Arctic", "Europe", "Asia", "N. America", "S. America", "Australasia", "Antarctica"}, c.Names())

	eu, ok := c.Lookup("europe")
	require.True(t, ok)
	assert.True(t, eu.Wraps())

	sub, err := c.Select("Antarctica", " arctic ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Antarctica", "Arctic"}, sub.Names())

	all, err := c.Select()
	require.NoError(t, err)
	assert.Equal(t, c, all)

	_, err = c.Select("Atlantis")
	assert.ErrorIs(t, err, regions.ErrUnknownRegion)
}
