package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

const (
	importColID = iota
	importColClassID
	importColDate
	importColStart
	importColEnd
	importColRoom
)

type batchConflictChecker interface {
	CheckBatchConflicts(ctx context.Context, tenant models.Tenant, req dto.BatchConflictRequest) (map[string]bool, error)
}

// ImportConfig bounds spreadsheet previews.
type ImportConfig struct {
	MaxFileSizeBytes int64
	MaxRows          int
}

// ImportService parses session spreadsheets and previews their conflicts without saving.
type ImportService struct {
	checker batchConflictChecker
	logger  *zap.Logger
	cfg     ImportConfig
}

// NewImportService constructs an ImportService.
func NewImportService(checker batchConflictChecker, logger *zap.Logger, cfg ImportConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 << 20
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	return &ImportService{checker: checker, logger: logger, cfg: cfg}
}

// MaxFileSize reports the upload limit in bytes.
func (s *ImportService) MaxFileSize() int64 {
	return s.cfg.MaxFileSizeBytes
}

// Preview reads the first sheet of an xlsx workbook. Columns are
// id | class_id | date (YYYY-MM-DD) | start (HH:MM) | end (HH:MM) | room and the first row is a header.
func (s *ImportService) Preview(ctx context.Context, tenant models.Tenant, file io.Reader, size int64) (*dto.ImportPreviewResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxFileSizeBytes+1))
	if err != nil {
		return nil, validationError(err, "failed to read upload")
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, validationError(err, "file is not a readable xlsx workbook")
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, validationError(err, "failed to read sheet "+sheet)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	if len(rows) > s.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("workbook has more than %d rows", s.cfg.MaxRows))
	}

	resp := &dto.ImportPreviewResponse{Rows: make([]dto.ImportPreviewRow, 0, len(rows))}
	inputs := make([]dto.BatchSessionInput, 0, len(rows))
	indexByID := make(map[string]int, len(rows))

	for i, cells := range rows {
		if blankRow(cells) {
			continue
		}
		rowNumber := i + 2
		row, input, parseErr := parseImportRow(rowNumber, cells)
		if parseErr == nil {
			if _, dup := indexByID[row.ID]; dup {
				parseErr = fmt.Errorf("duplicate id %q", row.ID)
			}
		}
		if parseErr != nil {
			row.Error = parseErr.Error()
			resp.InvalidCount++
			resp.Rows = append(resp.Rows, row)
			continue
		}
		row.Valid = true
		resp.ValidCount++
		indexByID[row.ID] = len(resp.Rows)
		resp.Rows = append(resp.Rows, row)
		inputs = append(inputs, input)
	}

	flags, err := s.analyse(ctx, tenant, resp, inputs, indexByID)
	if err != nil {
		return nil, err
	}
	for id, conflict := range flags {
		if !conflict {
			continue
		}
		if idx, ok := indexByID[id]; ok {
			resp.Rows[idx].Conflict = true
			resp.ConflictCount++
		}
	}

	s.logger.Info("import previewed",
		zap.String("center_id", tenant.CenterID()),
		zap.Int("valid", resp.ValidCount),
		zap.Int("invalid", resp.InvalidCount),
		zap.Int("conflicts", resp.ConflictCount),
	)
	return resp, nil
}

// analyse runs the batch check. Rows naming a class unknown to the tenant are
// marked invalid and the remaining rows are checked again.
func (s *ImportService) analyse(ctx context.Context, tenant models.Tenant, resp *dto.ImportPreviewResponse, inputs []dto.BatchSessionInput, indexByID map[string]int) (map[string]bool, error) {
	flags, err := s.checker.CheckBatchConflicts(ctx, tenant, dto.BatchConflictRequest{Sessions: inputs})
	var unknown *models.UnknownClassError
	if err == nil || !errors.As(err, &unknown) {
		return flags, err
	}

	missing := make(map[string]struct{}, len(unknown.ClassIDs))
	for _, id := range unknown.ClassIDs {
		missing[id] = struct{}{}
	}
	known := inputs[:0:0]
	for _, in := range inputs {
		if _, ok := missing[in.ClassID]; !ok {
			known = append(known, in)
			continue
		}
		row := &resp.Rows[indexByID[in.ID]]
		row.Valid = false
		row.Error = fmt.Sprintf("class_id %q not found", in.ClassID)
		resp.ValidCount--
		resp.InvalidCount++
		delete(indexByID, in.ID)
	}
	if len(known) == len(inputs) {
		return nil, err
	}
	return s.analyse(ctx, tenant, resp, known, indexByID)
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

func parseImportRow(rowNumber int, cells []string) (dto.ImportPreviewRow, dto.BatchSessionInput, error) {
	row := dto.ImportPreviewRow{
		Row:     rowNumber,
		ID:      cell(cells, importColID),
		ClassID: cell(cells, importColClassID),
	}
	if row.ID == "" {
		row.ID = fmt.Sprintf("row-%d", rowNumber)
	}
	if room := cell(cells, importColRoom); room != "" {
		row.RoomName = &room
	}
	if row.ClassID == "" {
		return row, dto.BatchSessionInput{}, fmt.Errorf("class_id is required")
	}

	date, err := time.Parse(dateLayout, cell(cells, importColDate))
	if err != nil {
		return row, dto.BatchSessionInput{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	startClock, err := scheduling.ParseClock(cell(cells, importColStart))
	if err != nil {
		return row, dto.BatchSessionInput{}, fmt.Errorf("start: %w", err)
	}
	endClock, err := scheduling.ParseClock(cell(cells, importColEnd))
	if err != nil {
		return row, dto.BatchSessionInput{}, fmt.Errorf("end: %w", err)
	}
	start, end := startClock.On(date), endClock.On(date)
	row.StartTime, row.EndTime = &start, &end
	if !start.Before(end) {
		return row, dto.BatchSessionInput{}, fmt.Errorf("start must be before end")
	}

	return row, dto.BatchSessionInput{
		ID:        row.ID,
		ClassID:   row.ClassID,
		StartTime: start,
		EndTime:   end,
		RoomName:  row.RoomName,
	}, nil
}
