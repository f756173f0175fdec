// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andres-erbsen/clock"
	"go.uber.org/zap"

	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/market"
	"github.com/KikiCoinQueen/zyxie-chillax-gaming-sub000/internal/portfolio"
)

// Format формат выгрузки
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat принимает "csv" или "json"
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or json)", s)
	}
}

// Exporter записывает трендовые списки и оценки портфеля в файлы
type Exporter struct {
	logger *zap.Logger
	clock  clock.Clock
}

// NewExporter создает экспортер. nil clock означает системное время.
func NewExporter(logger *zap.Logger, clk clock.Clock) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Exporter{logger: logger.Named("export"), clock: clk}
}

var trendingHeaders = []string{
	"rank", "address", "symbol", "name", "price_usd", "volume_24h",
	"price_change_24h", "liquidity_usd", "fdv", "source", "live",
}

var valuationHeaders = []string{
	"id", "symbol", "amount", "price_usd", "value_usd",
	"cost_basis_usd", "pnl_usd", "change_24h_pct", "priced",
}

// ExportTrending записывает res в dir и возвращает путь к файлу
func (e *Exporter) ExportTrending(res market.TrendingResult, format Format, dir string) (string, error) {
	path, err := e.path(dir, "trending", format)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatCSV:
		rows := make([][]string, 0, len(res.Tokens))
		for i, t := range res.Tokens {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				t.BaseToken.Address,
				t.BaseToken.Symbol,
				t.BaseToken.Name,
				t.PriceUSD.String(),
				t.Volume24h.String(),
				formatFloat(t.PriceChange24h),
				formatFloat(t.Liquidity.USD),
				formatFloat(t.FDV),
				string(res.Source),
				strconv.FormatBool(res.Live),
			})
		}
		err = writeCSV(path, trendingHeaders, rows)
	case FormatJSON:
		err = writeJSON(path, struct {
			ExportTime time.Time             `json:"export_time"`
			TokenCount int                   `json:"token_count"`
			Trending   market.TrendingResult `json:"trending"`
		}{
			ExportTime: e.clock.Now(),
			TokenCount: len(res.Tokens),
			Trending:   res,
		})
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Trending exported",
		zap.String("file", path),
		zap.Int("count", len(res.Tokens)),
		zap.String("format", string(format)))

	return path, nil
}

// ExportValuation записывает val в dir и возвращает путь к файлу.
// В CSV по строке на позицию и итоговая строка TOTAL.
func (e *Exporter) ExportValuation(val portfolio.Valuation, format Format, dir string) (string, error) {
	path, err := e.path(dir, "portfolio", format)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatCSV:
		rows := make([][]string, 0, len(val.Positions)+1)
		for _, p := range val.Positions {
			rows = append(rows, []string{
				p.Holding.ID,
				p.Holding.Symbol,
				p.Holding.Amount.String(),
				p.PriceUSD.String(),
				p.ValueUSD.String(),
				p.Holding.CostBasisUSD.String(),
				p.PnLUSD.String(),
				formatFloat(p.Change24hPct),
				strconv.FormatBool(p.Priced),
			})
		}
		rows = append(rows, []string{
			"TOTAL", "", "", "", val.TotalUSD.String(), val.TotalCostUSD.String(), val.PnLUSD.String(), "", "",
		})
		err = writeCSV(path, valuationHeaders, rows)
	case FormatJSON:
		err = writeJSON(path, struct {
			ExportTime time.Time           `json:"export_time"`
			Valuation  portfolio.Valuation `json:"valuation"`
		}{
			ExportTime: e.clock.Now(),
			Valuation:  val,
		})
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Valuation exported",
		zap.String("file", path),
		zap.Int("positions", len(val.Positions)),
		zap.String("format", string(format)))

	return path, nil
}

// path проверяет формат, создает dir и строит имя файла с меткой времени
func (e *Exporter) path(dir, prefix string, format Format) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", prefix, e.clock.Now().Format("20060102_150405"), format)
	return filepath.Join(dir, name), nil
}

func writeCSV(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
