package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"regional-means/models"
)

// ArchiveExt расширение архива ансамблевого среднего
const ArchiveExt = ".msgpack.zst"

// ArchiveProvider читает поля, сохраненные SaveArchive
type ArchiveProvider struct{}

func NewArchiveProvider() *ArchiveProvider {
	return &ArchiveProvider{}
}

func (p *ArchiveProvider) Name() string {
	return "archive"
}

func (p *ArchiveProvider) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ArchiveExt)
}

// Load читает архив. Пустой variable принимает любую переменную.
func (p *ArchiveProvider) Load(ctx context.Context, path, variable string) (*models.GriddedData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия архива: %w", err)
	}
	defer f.Close()

	data, err := LoadArchive(f)
	if err != nil {
		return nil, err
	}
	if variable != "" && data.Variable != "" && data.Variable != variable {
		return nil, fmt.Errorf("архив %s содержит переменную %q, запрошена %q", path, data.Variable, variable)
	}

	data.Source = path
	NormalizeLongitudes(data.Lon)
	return data, nil
}

// LoadArchive декодирует msgpack внутри потока zstd
func LoadArchive(r io.Reader) (*models.GriddedData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd reader: %w", err)
	}
	defer zr.Close()

	var data models.GriddedData
	if err := msgpack.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("ошибка декодирования архива: %w", err)
	}
	return &data, nil
}

// SaveArchive записывает поле в формате msgpack + zstd
func SaveArchive(w io.Writer, data *models.GriddedData) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("ошибка создания zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(data); err != nil {
		return fmt.Errorf("ошибка кодирования архива: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия zstd writer: %w", err)
	}
	return nil
}
