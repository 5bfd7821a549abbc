package models

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// GriddedData содержит декодированное поле и его координаты
type GriddedData struct {
	Source   string        `json:"source" msgpack:"source"`
	Variable string        `json:"variable" msgpack:"variable"`
	Units    string        `json:"units,omitempty" msgpack:"units,omitempty"`
	Lat      []float64     `json:"lat" msgpack:"lat"`
	Lon      []float64     `json:"lon" msgpack:"lon"`
	Times    []float64     `json:"times,omitempty" msgpack:"times,omitempty"` // годы или значения оси времени
	Data     [][][]float64 `json:"data" msgpack:"data"`                       // [ntime][nlat][nlon]
}

// NTime возвращает число временных срезов
func (g *GriddedData) NTime() int {
	return len(g.Data)
}

// RegionSeries ряд средних для одного региона
type RegionSeries struct {
	Name   string   `json:"name"`
	Label  string   `json:"label"`
	South  float64  `json:"south"`
	North  float64  `json:"north"`
	West   float64  `json:"west"`
	East   float64  `json:"east"`
	Values NaNSlice `json:"values"`
}

// RegionalMeans результат усреднения по каталогу регионов
type RegionalMeans struct {
	Source      string         `json:"source"`
	Variable    string         `json:"variable"`
	Times       []float64      `json:"times,omitempty"`
	Regions     []RegionSeries `json:"regions"`
	Flipped     bool           `json:"flipped"` // исходная сетка шла с севера на юг
	LastUpdated time.Time      `json:"last_updated"`
}

// Clone возвращает глубокую копию результата
func (m *RegionalMeans) Clone() *RegionalMeans {
	out := *m
	out.Times = slices.Clone(m.Times)
	out.Regions = make([]RegionSeries, len(m.Regions))
	for i, r := range m.Regions {
		r.Values = slices.Clone(r.Values)
		out.Regions[i] = r
	}
	return &out
}

// HemisphericMeans глобальное среднее и средние по полушариям
type HemisphericMeans struct {
	Source      string    `json:"source"`
	Variable    string    `json:"variable"`
	Times       []float64 `json:"times,omitempty"`
	Global      NaNSlice  `json:"global"`
	North       NaNSlice  `json:"north"`
	South       NaNSlice  `json:"south"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone возвращает глубокую копию результата
func (m *HemisphericMeans) Clone() *HemisphericMeans {
	out := *m
	out.Times = slices.Clone(m.Times)
	out.Global = slices.Clone(m.Global)
	out.North = slices.Clone(m.North)
	out.South = slices.Clone(m.South)
	return &out
}

// NaNSlice кодируется в JSON с null вместо NaN
type NaNSlice []float64

func (s NaNSlice) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			continue
		}
		out[i] = &s[i]
	}
	return json.Marshal(out)
}

func (s *NaNSlice) UnmarshalJSON(b []byte) error {
	var in []*float64
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	out := make(NaNSlice, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
