package providers

import (
	"context"
	"errors"
	"math"

	"regional-means/models"
)

// ErrUnsupported ни один провайдер не поддерживает файл
var ErrUnsupported = errors.New("providers: формат файла не поддерживается")

// Provider интерфейс для всех источников сеточных полей
type Provider interface {
	Name() string
	Supports(path string) bool
	Load(ctx context.Context, path, variable string) (*models.GriddedData, error)
}

// NormalizeLongitudes приводит долготы к диапазону [0,360)
func NormalizeLongitudes(lon []float64) {
	for i, x := range lon {
		x = math.Mod(x, 360)
		if x < 0 {
			x += 360
		}
		lon[i] = x
	}
}
