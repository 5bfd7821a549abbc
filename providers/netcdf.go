package providers

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ctessum/cdf"

	"regional-means/models"
)

// NetCDFProvider читает классические файлы NetCDF
type NetCDFProvider struct {
	latNames  []string
	lonNames  []string
	timeNames []string
}

// NewNetCDFProvider создает провайдер с заданными именами координат.
// latitude/longitude проверяются как запасные варианты.
func NewNetCDFProvider(latVar, lonVar string) *NetCDFProvider {
	return &NetCDFProvider{
		latNames:  uniqueNames(latVar, "lat", "latitude"),
		lonNames:  uniqueNames(lonVar, "lon", "longitude"),
		timeNames: []string{"time", "years", "year"},
	}
}

func uniqueNames(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func (p *NetCDFProvider) Name() string {
	return "netcdf"
}

func (p *NetCDFProvider) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".cdf", ".netcdf":
		return true
	}
	return false
}

func (p *NetCDFProvider) Load(ctx context.Context, path, variable string) (*models.GriddedData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия NetCDF: %w", err)
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заголовка NetCDF %s: %w", path, err)
	}

	// numrecs в заголовке может быть -1 (streaming), число записей
	// по неограниченному измерению считаем по размеру файла
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения NetCDF %s: %w", path, err)
	}
	nrec := int(nc.Header.NumRecs(fi.Size()))

	lat, err := p.readCoord(nc, p.latNames, 0, nrec)
	if err != nil {
		return nil, err
	}
	lon, err := p.readCoord(nc, p.lonNames, 1, nrec)
	if err != nil {
		return nil, err
	}
	NormalizeLongitudes(lon)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	field, err := readField(nc, variable, len(lat), len(lon), nrec)
	if err != nil {
		return nil, err
	}

	data := &models.GriddedData{
		Source:   path,
		Variable: variable,
		Units:    stringAttr(nc, variable, "units"),
		Lat:      lat,
		Lon:      lon,
		Data:     field,
	}

	// ось времени необязательна
	for _, name := range p.timeNames {
		if !hasVariable(nc, name) {
			continue
		}
		times, err := readFloats(nc, name, nrec)
		if err == nil && len(times) == len(field) {
			data.Times = times
		}
		break
	}

	return data, nil
}

// readCoord читает вектор координат. Для двумерной переменной
// [nlat][nlon] берется столбец 0 (axis=0) или строка 0 (axis=1).
func (p *NetCDFProvider) readCoord(nc *cdf.File, names []string, axis, nrec int) ([]float64, error) {
	for _, name := range names {
		if !hasVariable(nc, name) {
			continue
		}
		values, err := readFloats(nc, name, nrec)
		if err != nil {
			return nil, err
		}

		dims := nc.Header.Lengths(name)
		switch len(dims) {
		case 1:
			return values, nil
		case 2:
			nlat, nlon := dims[0], dims[1]
			if axis == 0 {
				out := make([]float64, nlat)
				for i := range out {
					out[i] = values[i*nlon]
				}
				return out, nil
			}
			return slices.Clone(values[:nlon]), nil
		default:
			return nil, fmt.Errorf("координата %s имеет %d измерений", name, len(dims))
		}
	}
	return nil, fmt.Errorf("в файле нет координаты (искали %s)", strings.Join(names, ", "))
}

// readField читает переменную [ntime][nlat][nlon] или [nlat][nlon]
func readField(nc *cdf.File, variable string, nlat, nlon, nrec int) ([][][]float64, error) {
	if !hasVariable(nc, variable) {
		return nil, fmt.Errorf("переменная %q отсутствует в файле", variable)
	}

	dims := nc.Header.Lengths(variable)
	if len(dims) != 2 && len(dims) != 3 {
		return nil, fmt.Errorf("переменная %q имеет %d измерений, ожидалось 2 или 3", variable, len(dims))
	}
	if dims[len(dims)-2] != nlat || dims[len(dims)-1] != nlon {
		return nil, fmt.Errorf("размеры %q %v не совпадают с сеткой %dx%d", variable, dims, nlat, nlon)
	}

	values, err := readFloats(nc, variable, nrec)
	if err != nil {
		return nil, err
	}
	applyPacking(nc, variable, values)

	size := nlat * nlon
	if len(values) == 0 {
		return nil, fmt.Errorf("переменная %q не содержит ни одной записи", variable)
	}
	if len(values)%size != 0 {
		return nil, fmt.Errorf("переменная %q: %d значений не делится на %d", variable, len(values), size)
	}

	ntime := len(values) / size
	field := make([][][]float64, ntime)
	for t := range field {
		slice := make([][]float64, nlat)
		for i := range slice {
			start := t*size + i*nlon
			slice[i] = values[start : start+nlon : start+nlon]
		}
		field[t] = slice
	}
	return field, nil
}

// readFloats читает переменную и приводит к float64.
// Переменная по неограниченному измерению читается окнами
// по одной записи, всего nrec записей.
func readFloats(nc *cdf.File, name string, nrec int) ([]float64, error) {
	if !nc.Header.IsRecordVariable(name) {
		r := nc.Reader(name, nil, nil)
		return readValues(name, r, r.Zero(-1))
	}

	dims := nc.Header.Lengths(name)
	nread := 1
	for _, dim := range dims[1:] {
		nread *= dim
	}

	out := make([]float64, 0, nrec*nread)
	begin, end := make([]int, len(dims)), make([]int, len(dims))
	for i := 1; i < len(dims); i++ {
		end[i] = dims[i] - 1
	}
	for rec := 0; rec < nrec; rec++ {
		begin[0], end[0] = rec, rec
		r := nc.Reader(name, begin, end)
		values, err := readValues(name, r, r.Zero(nread))
		if err != nil {
			return nil, fmt.Errorf("запись %d: %w", rec, err)
		}
		out = append(out, values...)
	}
	return out, nil
}

func readValues(name string, r cdf.Reader, buf interface{}) ([]float64, error) {
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменной %s: %w", name, err)
	}

	switch v := buf.(type) {
	case []float64:
		return v, nil
	case []float32:
		return convert(v), nil
	case []int32:
		return convert(v), nil
	case []int16:
		return convert(v), nil
	case []int8:
		return convert(v), nil
	case []uint8:
		return convert(v), nil
	default:
		return nil, fmt.Errorf("переменная %s: неподдерживаемый тип %T", name, buf)
	}
}

func convert[T float32 | int32 | int16 | int8 | uint8](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// applyPacking заменяет _FillValue/missing_value на NaN и
// применяет scale_factor/add_offset
func applyPacking(nc *cdf.File, variable string, values []float64) {
	var missing []float64
	for _, attr := range []string{"_FillValue", "missing_value"} {
		if v, ok := numericAttr(nc, variable, attr); ok {
			missing = append(missing, v)
		}
	}
	scale, hasScale := numericAttr(nc, variable, "scale_factor")
	offset, hasOffset := numericAttr(nc, variable, "add_offset")

	for i, v := range values {
		if slices.Contains(missing, v) {
			values[i] = math.NaN()
			continue
		}
		if hasScale {
			v *= scale
		}
		if hasOffset {
			v += offset
		}
		values[i] = v
	}
}

func hasVariable(nc *cdf.File, name string) bool {
	return slices.Contains(nc.Header.Variables(), name)
}

func numericAttr(nc *cdf.File, variable, attr string) (float64, bool) {
	switch v := nc.Header.GetAttribute(variable, attr).(type) {
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

func stringAttr(nc *cdf.File, variable, attr string) string {
	if s, ok := nc.Header.GetAttribute(variable, attr).(string); ok {
		return s
	}
	return ""
}
