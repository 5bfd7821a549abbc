// Package regions вычисляет региональные средние по сеточному полю.
//
// Каждый регион задается прямоугольником широт и долгот. Для региона
// строится маска 0/1 (с учетом перехода через меридиан 0/360), которая
// умножается на веса cos(широты). Среднее по региону считается для
// каждого момента времени только по конечным (не NaN) ячейкам.
//
// Каталог по умолчанию содержит семь регионов PAGES2K (2013):
// Arctic, Europe, Asia, N. America, S. America, Australasia, Antarctica.
//
// Ошибки:
//
//   - ErrEmptyCoords, ErrNonFiniteCoord, ErrNonMonotonic: некорректная сетка.
//   - ErrShapeMismatch: размеры поля не совпадают с сеткой.
//   - ErrInvalidBounds: South > North у региона.
//   - ErrUnknownRegion: имя отсутствует в каталоге.
//
// Регион без пересечения с валидными ячейками дает NaN, а не ошибку.
package regions
