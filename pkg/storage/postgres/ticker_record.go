package postgres

import "time"

// TickerRecord represents one polled ticker observation stored in the database.
type TickerRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Product    string    `gorm:"type:text;not null;index:idx_ticker_product;index:idx_product_captured,unique"`
	CapturedAt time.Time `gorm:"not null;index:idx_product_captured,unique"`

	// exchange-reported timestamp, kept verbatim
	Timestamp string `gorm:"type:text"`

	BestBid float64 `gorm:"type:numeric;not null"`
	BestAsk float64 `gorm:"type:numeric;not null"`
	Last    float64 `gorm:"type:numeric;not null"`

	BestBidSize   float64 `gorm:"type:numeric"`
	BestAskSize   float64 `gorm:"type:numeric"`
	TotalBidDepth float64 `gorm:"type:numeric"`
	TotalAskDepth float64 `gorm:"type:numeric"`

	Volume          float64 `gorm:"type:numeric"`
	VolumeByProduct float64 `gorm:"type:numeric"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TickerRecord) TableName() string {
	return "ticker_record"
}
