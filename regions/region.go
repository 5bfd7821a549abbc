package regions

import (
	"fmt"
	"strings"
)

// Region прямоугольная область в градусах.
// East < West означает, что полоса долгот пересекает меридиан 0/360.
type Region struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Validate проверяет границы региона
func (r Region) Validate() error {
	if r.South > r.North {
		return fmt.Errorf("%w: %s (%g > %g)", ErrInvalidBounds, r.Name, r.South, r.North)
	}
	return nil
}

// Wraps сообщает, пересекает ли регион меридиан 0/360
func (r Region) Wraps() bool {
	return r.East < r.West
}

// ContainsLat проверяет попадание широты в полосу, границы включаются
func (r Region) ContainsLat(lat float64) bool {
	return lat >= r.South && lat <= r.North
}

// ContainsLon проверяет попадание долготы в полосу
func (r Region) ContainsLon(lon float64) bool {
	if r.Wraps() {
		return (lon >= r.West && lon <= 360) || (lon >= 0 && lon <= r.East)
	}
	return lon >= r.West && lon <= r.East
}

// Contains проверяет попадание точки в регион
func (r Region) Contains(lat, lon float64) bool {
	return r.ContainsLat(lat) && r.ContainsLon(lon)
}

func (r Region) String() string {
	return fmt.Sprintf("%s [%g..%g, %g..%g]", r.Name, r.South, r.North, r.West, r.East)
}

// Catalog упорядоченный список регионов
type Catalog []Region

// DefaultCatalog возвращает регионы PAGES2K Consortium (2013)
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Arctic", Label: "Arctic: north of 60N", South: 60, North: 90, West: 0, East: 360},
		{Name: "Europe", Label: "Europe: 35-70N, 10W-40E", South: 35, North: 70, West: 350, East: 40},
		{Name: "Asia", Label: "Asia: 23-55N", South: 23, North: 55, West: 60, East: 160},
		{Name: "N. America", Label: "North America (trees):30-55N,75-130W", South: 30, North: 55, West: 55, East: 230},
		{Name: "S. America", Label: "South America: 20S-65S, 30W-80W", South: -65, North: -20, West: 280, East: 330},
		{Name: "Australasia", Label: "Australasia: 0-50S, 110E-180E", South: -50, North: 0, West: 110, East: 180},
		{Name: "Antarctica", Label: "Antarctica: south of 60S", South: -90, North: -60, West: 0, East: 360},
	}
}

// Validate проверяет все регионы каталога
func (c Catalog) Validate() error {
	for _, r := range c {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Names возвращает имена регионов в порядке каталога
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name
	}
	return names
}

// Lookup ищет регион по имени без учета регистра
func (c Catalog) Lookup(name string) (Region, bool) {
	name = strings.TrimSpace(name)
	for _, r := range c {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Region{}, false
}

// Select возвращает подкаталог в порядке перечисления имен.
// Без имен возвращается копия всего каталога.
func (c Catalog) Select(names ...string) (Catalog, error) {
	if len(names) == 0 {
		return append(Catalog(nil), c...), nil
	}

	selected := make(Catalog, 0, len(names))
	for _, name := range names {
		r, ok := c.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
		}
		selected = append(selected, r)
	}
	return selected, nil
}
