package postgres

import (
	"context"
	"fmt"
	"time"

	"vcts/internal/market"

	"gorm.io/gorm/clause"
)

func (p *PostgresClient) InsertTicker(ctx context.Context, record *TickerRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product"},
			{Name: "captured_at"},
		},
		DoNothing: true,
	}).Create(record)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return fmt.Errorf(
			"duplicate ticker skipped: product=%s captured_at=%s",
			record.Product,
			record.CapturedAt.Format(time.RFC3339),
		)
	}

	return nil
}

func (p *PostgresClient) GetTicker(ctx context.Context, product string, capturedAt time.Time) (*TickerRecord, error) {
	var ticker TickerRecord
	err := p.DB.WithContext(ctx).
		Where("product = ? AND captured_at = ?", product, capturedAt).
		First(&ticker).Error

	if err != nil {
		return nil, err
	}
	return &ticker, nil
}

func (p *PostgresClient) DeleteOldTickers(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("captured_at < ?", before).
		Delete(&TickerRecord{}).Error
}

// Append stores one polled ticker. It lets the polling loop treat the
// database like any other sink.
func (p *PostgresClient) Append(t market.Ticker) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.InsertTicker(ctx, ToTickerRecord(t))
}

// ToTickerRecord converts a polled ticker into a TickerRecord for DB insertion.
func ToTickerRecord(t market.Ticker) *TickerRecord {
	return &TickerRecord{
		Product:         t.Product,
		CapturedAt:      t.CapturedAt,
		Timestamp:       t.Timestamp,
		BestBid:         t.BestBid,
		BestAsk:         t.BestAsk,
		Last:            t.Last,
		BestBidSize:     t.BestBidSize,
		BestAskSize:     t.BestAskSize,
		TotalBidDepth:   t.TotalBidDepth,
		TotalAskDepth:   t.TotalAskDepth,
		Volume:          t.Volume,
		VolumeByProduct: t.VolumeByProduct,
	}
}
