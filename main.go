package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"regional-means/aggregator"
	"regional-means/config"
	"regional-means/logging"
	"regional-means/output"
	"regional-means/providers"
	"regional-means/regions"
)

var (
	cfg    *config.Config
	agg    *aggregator.Aggregator
	logger *slog.Logger
)

func main() {
	// Загружаем конфигурацию
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger, err = logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка настройки логирования: %v\n", err)
		os.Exit(1)
	}

	agg = newAggregator(cfg, logger)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAggregator создает агрегатор со всеми провайдерами
func newAggregator(cfg *config.Config, logger *slog.Logger) *aggregator.Aggregator {
	a := aggregator.NewAggregator(regions.DefaultCatalog(), cfg.CacheDuration, cfg.Workers, logger)
	netcdf := providers.NewNetCDFProvider(cfg.LatVar, cfg.LonVar)
	archive := providers.NewArchiveProvider()

	// удаленный провайдер первым: URL с расширением .nc иначе заберет netcdf
	a.AddProvider(providers.NewRemoteProvider(2*time.Minute, netcdf, archive))
	a.AddProvider(netcdf)
	a.AddProvider(archive)
	logger.Debug("провайдеры добавлены", slog.Any("providers", a.GetProvidersInfo()))
	return a
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:          "regional-means",
		Short:        "Региональные средние сеточных полей",
		Long:         "Вычисляет средние по регионам PAGES2K с весами cos(широты) для сеточных климатических полей",
		SilenceUsage: true,
	}

	// Каталог регионов
	var regionsCmd = &cobra.Command{
		Use:   "regions",
		Short: "Показать каталог регионов",
		Run: func(cmd *cobra.Command, args []string) {
			showRegions(cmd)
		},
	}

	// Маска региона на сетке файла
	var maskCmd = &cobra.Command{
		Use:   "mask [регион] [файл]",
		Short: "Показать маску региона на сетке файла",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			variable, _ := cmd.Flags().GetString("var")
			return showMask(cmd, args[0], args[1], variable)
		},
	}
	maskCmd.Flags().StringP("var", "v", cfg.Variable, "Имя переменной")

	// Региональные средние
	var meansCmd = &cobra.Command{
		Use:   "means [файл]",
		Short: "Вычислить региональные средние",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variable, _ := cmd.Flags().GetString("var")
			names, _ := cmd.Flags().GetString("regions")
			format, _ := cmd.Flags().GetString("output")
			out, _ := cmd.Flags().GetString("out")
			return runMeans(cmd, args[0], variable, config.SplitList(names), format, out)
		},
	}
	meansCmd.Flags().StringP("var", "v", cfg.Variable, "Имя переменной")
	meansCmd.Flags().StringP("regions", "r", strings.Join(cfg.Regions, ","), "Регионы через запятую (по умолчанию все)")
	meansCmd.Flags().StringP("output", "o", output.FormatText, "Формат вывода (text, json, csv, parquet)")
	meansCmd.Flags().String("out", "", "Файл результата (обязателен для parquet)")

	// Глобальные и полушарные средние
	var globalCmd = &cobra.Command{
		Use:   "global [файл]",
		Short: "Вычислить глобальное среднее и средние по полушариям",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variable, _ := cmd.Flags().GetString("var")
			format, _ := cmd.Flags().GetString("output")
			return runGlobal(cmd, args[0], variable, format)
		},
	}
	globalCmd.Flags().StringP("var", "v", cfg.Variable, "Имя переменной")
	globalCmd.Flags().StringP("output", "o", output.FormatText, "Формат вывода (text, json, csv)")

	// Перекодирование в архив
	var convertCmd = &cobra.Command{
		Use:   "convert [вход] [выход" + providers.ArchiveExt + "]",
		Short: "Сохранить поле в архив msgpack+zstd",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			variable, _ := cmd.Flags().GetString("var")
			return runConvert(cmd, args[0], args[1], variable)
		},
	}
	convertCmd.Flags().StringP("var", "v", cfg.Variable, "Имя переменной")

	// Команда для запуска сервера
	var serverCmd = &cobra.Command{
		Use:   "serve",
		Short: "Запуск HTTP сервера",
		Run: func(cmd *cobra.Command, args []string) {
			startServer()
		},
	}

	rootCmd.AddCommand(regionsCmd, maskCmd, meansCmd, globalCmd, convertCmd, serverCmd)
	return rootCmd
}

// showRegions печатает каталог регионов
func showRegions(cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Регионы PAGES2K:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	for _, r := range agg.Catalog() {
		wrap := ""
		if r.Wraps() {
			wrap = " (через 0/360)"
		}
		fmt.Fprintf(w, "%-12s %6.1f..%5.1f  %5.1f..%5.1f%s  %s\n", r.Name, r.South, r.North, r.West, r.East, wrap, r.Label)
	}
}

// showMask печатает маску строками с севера на юг
func showMask(cmd *cobra.Command, name, path, variable string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lat, lon, mask, err := agg.Mask(ctx, path, variable, name)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Маска %s: %d x %d\n", name, len(lat), len(lon))
	cells := 0
	for i := len(lat) - 1; i >= 0; i-- {
		var sb strings.Builder
		for _, v := range mask[i] {
			if v > 0 {
				sb.WriteByte('#')
				cells++
			} else {
				sb.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "%7.2f %s\n", lat[i], sb.String())
	}
	fmt.Fprintf(w, "Ячеек в регионе: %d\n", cells)
	return nil
}

func runMeans(cmd *cobra.Command, path, variable string, names []string, format, out string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rm, err := agg.RegionalMeans(ctx, path, variable, names...)
	if err != nil {
		return err
	}

	if format == output.FormatParquet {
		if out == "" {
			return fmt.Errorf("для формата parquet нужен --out")
		}
		if err := output.WriteParquet(out, rm); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Результат сохранен в %s\n", out)
		return nil
	}

	if out == "" {
		return output.Write(cmd.OutOrStdout(), format, rm)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := output.Write(f, format, rm); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runGlobal(cmd *cobra.Command, path, variable, format string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	hm, err := agg.HemisphericMeans(ctx, path, variable)
	if err != nil {
		return err
	}
	return output.WriteHemispheric(cmd.OutOrStdout(), format, hm)
}

func runConvert(cmd *cobra.Command, in, out, variable string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	data, err := agg.Load(ctx, in, variable)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := providers.SaveArchive(f, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("архив сохранен", slog.String("in", in), slog.String("out", out))
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Архив сохранен: %s (%d срезов)\n", out, data.NTime())
	return nil
}
