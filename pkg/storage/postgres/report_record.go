package postgres

import "time"

// ReportRecord is one archived cycle. Empty cycles are kept with their error.
type ReportRecord struct {
	ID uint `gorm:"primaryKey"`

	Symbol      string    `gorm:"type:text;not null;index:idx_report_symbol_generated"`
	GeneratedAt time.Time `gorm:"not null;index:idx_report_symbol_generated"`

	Text  string `gorm:"type:text;not null"`
	Empty bool   `gorm:"not null"`
	Error string `gorm:"type:text"`

	Delivered bool `gorm:"not null"`

	Readings []ReadingRecord `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (ReportRecord) TableName() string {
	return "report_record"
}

// ReadingRecord is one tracked series value within an archived cycle.
type ReadingRecord struct {
	ID       uint `gorm:"primaryKey"`
	ReportID uint `gorm:"not null;index:idx_reading_report"`

	Series      string  `gorm:"type:varchar(64);not null;index:idx_reading_series"`
	Value       float64 `gorm:"type:numeric;not null"`
	Diff        float64 `gorm:"type:numeric;not null"`
	HasBaseline bool    `gorm:"not null"`
}

func (ReadingRecord) TableName() string {
	return "reading_record"
}
