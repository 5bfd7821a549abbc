package output

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"regional-means/models"
)

// MeanRecord одна строка parquet: регион и момент времени
type MeanRecord struct {
	Region    string  `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	Label     string  `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	TimeIndex int32   `parquet:"name=time_index, type=INT32"`
	Time      float64 `parquet:"name=time, type=DOUBLE"`
	Mean      float64 `parquet:"name=mean, type=DOUBLE"`
}

// Records раскладывает результат в строки (регион, время)
func Records(rm *models.RegionalMeans) []MeanRecord {
	records := make([]MeanRecord, 0, len(rm.Regions)*ntime(rm))
	for _, r := range rm.Regions {
		for t, v := range r.Values {
			rec := MeanRecord{
				Region:    r.Name,
				Label:     r.Label,
				TimeIndex: int32(t),
				Time:      float64(t),
				Mean:      v,
			}
			if t < len(rm.Times) {
				rec.Time = rm.Times[t]
			}
			records = append(records, rec)
		}
	}
	return records
}

// WriteParquet сохраняет результат в файл parquet со сжатием ZSTD
func WriteParquet(path string, rm *models.RegionalMeans) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла parquet: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(MeanRecord), 4)
	if err != nil {
		return fmt.Errorf("ошибка инициализации parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, rec := range Records(rm) {
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("ошибка записи parquet: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("ошибка завершения parquet: %w", err)
	}
	return nil
}
