package postgres

import (
	"context"
	"fmt"
	"time"

	"ratiowatch/internal/report"
)

// InsertReport stores a cycle together with its readings in one transaction.
func (p *PostgresClient) InsertReport(ctx context.Context, record *ReportRecord) error {
	if err := p.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport loads a report and its readings by id.
func (p *PostgresClient) GetReport(ctx context.Context, id uint) (*ReportRecord, error) {
	var rec ReportRecord
	err := p.DB.WithContext(ctx).
		Preload("Readings").
		First(&rec, id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestReports returns the most recent reports for symbol, newest first.
func (p *PostgresClient) LatestReports(ctx context.Context, symbol string, limit int) ([]ReportRecord, error) {
	var recs []ReportRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("generated_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// DeleteOldReports removes reports (and their readings) generated before the cutoff.
func (p *PostgresClient) DeleteOldReports(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("generated_at < ?", before).
		Delete(&ReportRecord{})
	return tx.RowsAffected, tx.Error
}

// ToReportRecord converts a built report into an archive record.
func ToReportRecord(rep report.Report, cycleErr error, delivered bool) *ReportRecord {
	rec := &ReportRecord{
		Symbol:      rep.Symbol,
		GeneratedAt: rep.GeneratedAt,
		Text:        rep.Text(),
		Empty:       rep.Empty(),
		Delivered:   delivered,
	}
	if cycleErr != nil {
		rec.Error = cycleErr.Error()
	}
	for _, r := range rep.Readings {
		rec.Readings = append(rec.Readings, ReadingRecord{
			Series:      r.Series,
			Value:       r.Change.Current,
			Diff:        r.Change.Diff,
			HasBaseline: r.Change.Baseline,
		})
	}
	return rec
}
