package csvfile

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"vcts/internal/market"
)

func sampleTicker(capturedAt time.Time, last float64) market.Ticker {
	return market.Ticker{
		Product:    "btc_jpy",
		CapturedAt: capturedAt,
		BestBid:    last - 50,
		BestAsk:    last + 50,
		Last:       last,
	}
}

// go test -v --run TestWriterCreatesHeaderOnce
func TestWriterCreatesHeaderOnce(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Append(sampleTicker(time.Now(), 4200000)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Re-opening an existing file must not write a second header.
	w2, err := New(dir, "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error on reopen: %v", err)
	}
	if err := w2.Append(sampleTicker(time.Now(), 4200100)); err != nil {
		t.Fatalf("append after reopen failed: %v", err)
	}

	f, err := os.Open(w.Path())
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[1][0] == "timestamp" {
		t.Errorf("header misplaced: %v", rows[:2])
	}
}

// go test -v --run TestReadTailRoundTrip
func TestReadTailRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Date(2024, 5, 1, 2, 3, 4, 0, time.Local)
	for i := 0; i < 5; i++ {
		tick := sampleTicker(base.Add(time.Duration(i)*time.Second), 4200000+float64(i))
		if err := w.Append(tick); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	got, err := ReadTail(w.Path(), 3)
	if err != nil {
		t.Fatalf("read tail failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(got))
	}
	// Oldest of the tail first, newest last.
	if got[0].Last != 4200002 || got[2].Last != 4200004 {
		t.Errorf("unexpected tail order: %+v", got)
	}
	if !got[2].CapturedAt.Equal(base.Add(4 * time.Second)) {
		t.Errorf("capture time not preserved: %v", got[2].CapturedAt)
	}
	if got[0].Product != "btc_jpy" || got[0].BestBid != 4199952 {
		t.Errorf("fields not preserved: %+v", got[0])
	}
}

// go test -v --run TestReadTailMissingFile
func TestReadTailMissingFile(t *testing.T) {
	got, err := ReadTail(t.TempDir()+"/nothing.csv", 10)
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tickers, got %d", len(got))
	}
}

// go test -v --run TestReadTailSkipsTornRow
func TestReadTailSkipsTornRow(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, "btc_jpy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Append(sampleTicker(time.Now(), 4200000)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Simulate an interrupted write: a row with a mangled timestamp.
	f, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	f.WriteString("garbage,btc_jpy,1,2,3,4,5,6,7,8,9\n")
	f.Close()

	got, err := ReadTail(w.Path(), 10)
	if err != nil {
		t.Fatalf("read tail failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected torn row to be skipped, got %d tickers", len(got))
	}
	if got[0].Last != 4200000 {
		t.Errorf("unexpected survivor: %+v", got[0])
	}
}
