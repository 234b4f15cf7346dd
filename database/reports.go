package database

import (
	"context"
	"database/sql"
	"fmt"

	"reportify/models"
)

const reportColumns = "id, report_id, type, specific_type, title, description, location, latitude, longitude, image, status, created_at, updated_at"

// CreateReport inserts a validated report and returns the stored row with
// server-assigned timestamps.
func (d *Database) CreateReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO reports (report_id, type, specific_type, title, description, location, latitude, longitude, image, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ReportID, string(report.Type), report.SpecificType, report.Title, report.Description,
		report.Location, report.Latitude, report.Longitude, report.Image, string(report.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert id: %w", err)
	}

	return d.GetReportByID(ctx, id)
}

// GetReportByID fetches a report by its internal storage id. Returns
// (nil, nil) when no row matches.
func (d *Database) GetReportByID(ctx context.Context, id int64) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	return scanReport(row)
}

// GetReportByPublicID fetches a report by its public tracking token.
// Returns (nil, nil) when no row matches.
func (d *Database) GetReportByPublicID(ctx context.Context, reportID string) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE report_id = ?", reportID)
	return scanReport(row)
}

// UpdateReportStatus sets a new status and bumps updated_at, returning
// the full updated row. Returns (nil, nil) when the report is missing.
// Concurrent updates are last-write-wins; there is no version counter.
func (d *Database) UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, error) {
	_, err := d.db.ExecContext(ctx,
		"UPDATE reports SET status = ?, updated_at = NOW() WHERE id = ?",
		string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	return d.GetReportByID(ctx, id)
}

// ListReports returns reports for the moderator dashboard, newest first.
// Empty filters match everything.
func (d *Database) ListReports(ctx context.Context, status models.ReportStatus, reportType models.ReportType) ([]models.Report, error) {
	query := "SELECT " + reportColumns + " FROM reports"
	var conditions []string
	var args []interface{}

	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(status))
	}
	if reportType != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(reportType))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row *sql.Row) (*models.Report, error) {
	report, err := scanReportRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return report, err
}

func scanReportRow(row rowScanner) (*models.Report, error) {
	var report models.Report
	var location, image sql.NullString
	var latitude, longitude sql.NullFloat64
	var reportType, status string

	err := row.Scan(
		&report.ID,
		&report.ReportID,
		&reportType,
		&report.SpecificType,
		&report.Title,
		&report.Description,
		&location,
		&latitude,
		&longitude,
		&image,
		&status,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	report.Type = models.ReportType(reportType)
	report.Status = models.ReportStatus(status)
	if location.Valid {
		report.Location = &location.String
	}
	if latitude.Valid {
		report.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		report.Longitude = &longitude.Float64
	}
	if image.Valid {
		report.Image = &image.String
	}
	return &report, nil
}
