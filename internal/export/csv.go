// Package export writes downloadable reports of a fetched bundle.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// WriteCSV writes the company metadata block followed by the full price history.
// Blocks are introduced by '#' comment lines; absent values are written as empty cells.
func WriteCSV(w io.Writer, b *model.StockBundle, generatedAt time.Time) error {
	if b == nil {
		return errors.New("export: nil bundle")
	}

	cw := csv.NewWriter(w)
	comment := func(lines ...string) error {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := io.WriteString(w, l+"\n"); err != nil {
				return err
			}
		}
		return nil
	}

	if err := comment(
		"# Stock Analysis Report",
		"# Generated on: "+generatedAt.Format(timestampLayout),
		"",
		"# Company Information",
	); err != nil {
		return fmt.Errorf("export header: %w", err)
	}

	info := b.Info
	rows := [][]string{
		{"Metric", "Value"},
		{"Symbol", b.Symbol},
		{"Company Name", nullString(info.LongName)},
		{"Sector", nullString(info.Sector)},
		{"Industry", nullString(info.Industry)},
		{"Market Cap", nullFloat(info.MarketCap)},
		{"P/E Ratio", nullFloat(info.TrailingPE)},
		{"Beta", nullFloat(info.Beta)},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}

	if err := comment("", "# Historical Price Data"); err != nil {
		return fmt.Errorf("export history header: %w", err)
	}

	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	for _, p := range b.History {
		rec := []string{
			p.Time.Format(dateLayout),
			num(p.Open),
			num(p.High),
			num(p.Low),
			num(p.Close),
			nullFloat(p.AdjClose),
			num(p.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export history: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename suggests a download name such as "AAPL_1y_20240601.csv".
func Filename(b *model.StockBundle, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", b.Symbol, b.Period, now.Format("20060102"))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nullFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return num(v.Float64)
}

func nullString(v null.String) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
