package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"regional-means/models"
)

// Форматы вывода
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Write выводит региональные средние в формате text, json или csv.
// Parquet пишется в файл через WriteParquet.
func Write(w io.Writer, format string, rm *models.RegionalMeans) error {
	switch format {
	case FormatText, "":
		return writeText(w, rm)
	case FormatJSON:
		return writeJSON(w, rm)
	case FormatCSV:
		return writeCSV(w, rm)
	}
	return fmt.Errorf("неизвестный формат вывода: %q", format)
}

// WriteHemispheric выводит глобальное и полушарные средние
func WriteHemispheric(w io.Writer, format string, hm *models.HemisphericMeans) error {
	switch format {
	case FormatText, "":
		fmt.Fprintf(w, "Глобальные средние: %s (%s)\n", hm.Variable, hm.Source)
		fmt.Fprintln(w, strings.Repeat("=", 40))
		fmt.Fprintf(w, "%-10s %14s %14s %14s\n", "time", "global", "NH", "SH")
		for t := range hm.Global {
			fmt.Fprintf(w, "%-10s %14s %14s %14s\n", timeLabel(hm.Times, t),
				formatValue(hm.Global[t]), formatValue(hm.North[t]), formatValue(hm.South[t]))
		}
		return nil
	case FormatJSON:
		return writeJSON(w, hm)
	case FormatCSV:
		cw := csv.NewWriter(w)
		cw.Write([]string{"time", "global", "north", "south"})
		for t := range hm.Global {
			cw.Write([]string{timeLabel(hm.Times, t),
				formatValue(hm.Global[t]), formatValue(hm.North[t]), formatValue(hm.South[t])})
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("неизвестный формат вывода: %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeText печатает по одному блоку на регион
func writeText(w io.Writer, rm *models.RegionalMeans) error {
	fmt.Fprintf(w, "Региональные средние: %s (%s)\n", rm.Variable, rm.Source)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	for _, r := range rm.Regions {
		fmt.Fprintf(w, "%s\n", r.Label)
		fmt.Fprintln(w, strings.Repeat("-", 30))
		for t, v := range r.Values {
			fmt.Fprintf(w, "  %-10s %s\n", timeLabel(rm.Times, t), formatValue(v))
		}
	}
	_, err := fmt.Fprintf(w, "Обновлено: %s\n", rm.LastUpdated.Format("15:04:05"))
	return err
}

// writeCSV пишет таблицу time x region
func writeCSV(w io.Writer, rm *models.RegionalMeans) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(rm.Regions)+1)
	header = append(header, "time")
	for _, r := range rm.Regions {
		header = append(header, r.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for t := 0; t < ntime(rm); t++ {
		record := make([]string, 0, len(header))
		record = append(record, timeLabel(rm.Times, t))
		for _, r := range rm.Regions {
			record = append(record, formatValue(r.Values[t]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ntime(rm *models.RegionalMeans) int {
	if len(rm.Regions) == 0 {
		return 0
	}
	return len(rm.Regions[0].Values)
}

// timeLabel возвращает значение оси времени или индекс среза
func timeLabel(times []float64, t int) string {
	if t < len(times) {
		return strconv.FormatFloat(times[t], 'f', -1, 64)
	}
	return strconv.Itoa(t)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
