package regions

// BuildMask возвращает маску [nlat][nlon] из 1 и 0 для региона.
// Порядок широт не меняется. Маска без единиц не является ошибкой.
func BuildMask(lat, lon []float64, r Region) ([][]float64, error) {
	if len(lat) == 0 || len(lon) == 0 {
		return nil, ErrEmptyCoords
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return buildMask(lat, lon, r), nil
}

func buildMask(lat, lon []float64, r Region) [][]float64 {
	// полоса долгот общая для всех широт
	inLon := make([]bool, len(lon))
	if r.Wraps() {
		for j, x := range lon {
			inLon[j] = (x >= r.West && x <= 360) || (x >= 0 && x <= r.East)
		}
	} else {
		for j, x := range lon {
			inLon[j] = x >= r.West && x <= r.East
		}
	}

	mask := make([][]float64, len(lat))
	for i, phi := range lat {
		row := make([]float64, len(lon))
		if r.ContainsLat(phi) {
			for j := range row {
				if inLon[j] {
					row[j] = 1
				}
			}
		}
		mask[i] = row
	}
	return mask
}
