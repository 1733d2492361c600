package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
	"github.com/acadplan/timetable-api/pkg/export"
)

type latestScheduleReader interface {
	Latest(ctx context.Context, level int) (*models.ScheduleVersion, error)
}

// ExportService renders a level's latest schedule as PDF or CSV.
type ExportService struct {
	schedules latestScheduleReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(schedules latestScheduleReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

var exportHeaders = []string{"Group", "Day", "Start", "End", "Course", "Room", "Students"}

// CSV renders the level's latest schedule as CSV bytes.
func (s *ExportService) CSV(ctx context.Context, level int) ([]byte, error) {
	dataset, err := s.dataset(ctx, level)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule csv")
	}
	return payload, nil
}

// PDF renders the level's latest schedule as a printable timetable.
func (s *ExportService) PDF(ctx context.Context, level int) ([]byte, error) {
	dataset, err := s.dataset(ctx, level)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, fmt.Sprintf("Level %d Timetable", level))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}
	return payload, nil
}

// dataset flattens the version into rows ordered by group, then day, then
// start time, so the export reads like a printed timetable.
func (s *ExportService) dataset(ctx context.Context, level int) (*export.Dataset, error) {
	version, err := s.schedules.Latest(ctx, level)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(version.Groups))
	for name := range version.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	dataset := &export.Dataset{Headers: exportHeaders}
	for _, name := range names {
		sections := append([]models.Section(nil), version.Groups[name].Sections...)
		sort.Slice(sections, func(i, j int) bool {
			if sections[i].Day != sections[j].Day {
				return dayRank(sections[i].Day) < dayRank(sections[j].Day)
			}
			return sections[i].StartTime < sections[j].StartTime
		})
		for _, section := range sections {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Group":    name,
				"Day":      section.Day,
				"Start":    section.StartTime,
				"End":      section.EndTime,
				"Course":   section.CourseCode,
				"Room":     section.Room,
				"Students": fmt.Sprintf("%d", section.StudentCount),
			})
		}
	}
	return dataset, nil
}

var weekOrder = map[string]int{
	"MONDAY":    0,
	"TUESDAY":   1,
	"WEDNESDAY": 2,
	"THURSDAY":  3,
	"FRIDAY":    4,
	"SATURDAY":  5,
	"SUNDAY":    6,
}

func dayRank(day string) int {
	if rank, ok := weekOrder[day]; ok {
		return rank
	}
	return len(weekOrder)
}
