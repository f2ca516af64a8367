package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/export"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type reportAttendanceRepository interface {
	ListRange(ctx context.Context, classID string, from, to time.Time) ([]models.AttendanceRecordDetail, error)
}

type reportClassRepository interface {
	OwnedByTeacher(ctx context.Context, classID, teacherID string) (bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportResult is a rendered report ready to stream.
type ReportResult struct {
	FileName    string
	ContentType string
	Payload     []byte
}

// ReportService renders attendance reports for a class and date range.
type ReportService struct {
	attendance reportAttendanceRepository
	classes    reportClassRepository
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(attendance reportAttendanceRepository, classes reportClassRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{attendance: attendance, classes: classes, csv: csv, pdf: pdf, logger: logger}
}

// Attendance builds the attendance report for a class between two dates.
// Teachers may export their own classes; school admins any class.
func (s *ReportService) Attendance(ctx context.Context, caller models.Caller, classID, fromRaw, toRaw string, format ReportFormat) (*ReportResult, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}

	switch {
	case caller.IsTeacher():
		owned, err := s.classes.OwnedByTeacher(ctx, classID, *caller.TeacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class ownership")
		}
		if !owned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "class does not belong to caller")
		}
	case caller.Role == models.RoleSchoolAdmin:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reports are restricted to staff")
	}

	records, err := s.attendance.ListRange(ctx, classID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Student", "Status", "Notes"},
		Rows:    make([]map[string]string, 0, len(records)),
	}
	for _, record := range records {
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    record.Date.Format("2006-01-02"),
			"Student": record.StudentName,
			"Status":  string(record.Status),
			"Notes":   notes,
		})
	}

	base := fmt.Sprintf("attendance_%s_%s_%s", classID, from.Format("20060102"), to.Format("20060102"))
	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ReportResult{FileName: base + ".csv", ContentType: "text/csv", Payload: payload}, nil
	case ReportFormatPDF:
		title := fmt.Sprintf("Attendance %s - %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ReportResult{FileName: base + ".pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
