package regions

import "errors"

var (
	// ErrEmptyCoords - пустой вектор широт или долгот
	ErrEmptyCoords = errors.New("regions: векторы координат не должны быть пустыми")
	// ErrNonFiniteCoord - NaN или Inf среди координат
	ErrNonFiniteCoord = errors.New("regions: координаты должны быть конечными числами")
	// ErrNonMonotonic - широты не упорядочены строго монотонно
	ErrNonMonotonic = errors.New("regions: широты должны быть строго монотонными")
	// ErrShapeMismatch - размеры поля не совпадают с длинами координат
	ErrShapeMismatch = errors.New("regions: размеры поля не совпадают с сеткой")
	// ErrInvalidBounds - южная граница региона севернее северной
	ErrInvalidBounds = errors.New("regions: южная граница больше северной")
	// ErrUnknownRegion - регион отсутствует в каталоге
	ErrUnknownRegion = errors.New("regions: неизвестный регион")
)
