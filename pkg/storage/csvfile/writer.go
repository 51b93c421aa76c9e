// Package csvfile persists polled tickers to per-product CSV files and
// reads them back to warm up the in-memory history after a restart.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vcts/internal/market"
)

// timeLayout formats the capture time in the first CSV column.
const timeLayout = "2006-01-02 15:04:05"

var header = []string{
	"timestamp", "product",
	"best_bid", "best_ask",
	"best_bid_size", "best_ask_size",
	"total_bid_depth", "total_ask_depth",
	"last", "volume", "volume_by_product",
}

// Writer appends tickers to <dir>/<product>.csv. Each Append opens and
// closes the file, so a crash loses at most the row being written.
type Writer struct {
	path string
}

// New creates the directory and the file with its header row if needed.
func New(dir, product string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}

	path := filepath.Join(dir, product+".csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create csv file: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close csv file: %w", err)
		}
	}

	return &Writer{path: path}, nil
}

// Path returns the file this writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one ticker row.
func (w *Writer) Append(t market.Ticker) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(toRow(t)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ReadTail returns up to n most recent tickers from the file, oldest
// first, so they can be replayed into the history in order. A missing
// file yields no tickers and no error.
func ReadTail(path string, n int) ([]market.Ticker, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	rows = rows[1:] // drop header
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}

	tickers := make([]market.Ticker, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			// A torn row from an interrupted write is not fatal.
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

func toRow(t market.Ticker) []string {
	return []string{
		t.CapturedAt.Format(timeLayout),
		t.Product,
		formatFloat(t.BestBid),
		formatFloat(t.BestAsk),
		formatFloat(t.BestBidSize),
		formatFloat(t.BestAskSize),
		formatFloat(t.TotalBidDepth),
		formatFloat(t.TotalAskDepth),
		formatFloat(t.Last),
		formatFloat(t.Volume),
		formatFloat(t.VolumeByProduct),
	}
}

func fromRow(row []string) (market.Ticker, error) {
	if len(row) != len(header) {
		return market.Ticker{}, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	capturedAt, err := time.ParseInLocation(timeLayout, row[0], time.Local)
	if err != nil {
		return market.Ticker{}, fmt.Errorf("parse timestamp: %w", err)
	}

	vals := make([]float64, 9)
	for i, s := range row[2:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Ticker{}, fmt.Errorf("parse column %s: %w", header[i+2], err)
		}
		vals[i] = v
	}

	return market.Ticker{
		Product:         row[1],
		CapturedAt:      capturedAt,
		BestBid:         vals[0],
		BestAsk:         vals[1],
		BestBidSize:     vals[2],
		BestAskSize:     vals[3],
		TotalBidDepth:   vals[4],
		TotalAskDepth:   vals[5],
		Last:            vals[6],
		Volume:          vals[7],
		VolumeByProduct: vals[8],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
