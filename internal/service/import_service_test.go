package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"id", "class_id", "date", "start", "end", "room"}))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportServicePreviewFlagsConflicts(t *testing.T) {
	conflicts, _, _ := newConflictFixture(persisted("db", "class-3", "Room C", at(13, 0), at(14, 0)))
	svc := NewImportService(conflicts, nil, ImportConfig{})

	buf := buildWorkbook(t, [][]interface{}{
		{"a", "loose", "2026-01-20", "09:00", "10:00", "Room A"},
		{"b", "loose", "2026-01-20", "09:30", "10:30", "Room A"},
		{"", "loose", "2026-01-20", "13:00", "14:00", "Room C"},
		{"d", "", "2026-01-20", "09:00", "10:00", "Room B"},
		{"e", "loose", "2026-01-20", "11:00", "10:00", "Room B"},
		{"f", "loose", "2026-01-20", "15:00", "16:00", ""},
	})

	resp, err := svc.Preview(context.Background(), testTenant(), buf, int64(buf.Len()))

	require.NoError(t, err)
	require.Len(t, resp.Rows, 6)
	assert.Equal(t, 4, resp.ValidCount)
	assert.Equal(t, 2, resp.InvalidCount)
	assert.Equal(t, 3, resp.ConflictCount)

	byID := map[string]dto.ImportPreviewRow{}
	for _, row := range resp.Rows {
		byID[row.ID] = row
	}
	assert.True(t, byID["a"].Conflict)
	assert.True(t, byID["b"].Conflict)
	assert.True(t, byID["row-4"].Conflict, "missing id falls back to the row number")
	assert.False(t, byID["f"].Conflict)
	assert.False(t, byID["d"].Valid)
	assert.Contains(t, byID["d"].Error, "class_id")
	assert.False(t, byID["e"].Valid)
}

func TestImportServicePreviewRejectsOversizedFile(t *testing.T) {
	svc := NewImportService(nil, nil, ImportConfig{MaxFileSizeBytes: 10})

	_, err := svc.Preview(context.Background(), testTenant(), bytes.NewBufferString("irrelevant"), 11)

	assert.True(t, appErrors.HasCode(err, appErrors.ErrTooLarge.Code))
}

func TestImportServicePreviewRejectsUnderstatedSize(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"a", "loose", "2026-01-20", "09:00", "10:00", "Room A"},
	})
	svc := NewImportService(nil, nil, ImportConfig{MaxFileSizeBytes: int64(buf.Len() - 1)})

	_, err := svc.Preview(context.Background(), testTenant(), buf, 1)

	assert.True(t, appErrors.HasCode(err, appErrors.ErrTooLarge.Code))
}

func TestImportServicePreviewMarksUnknownClassInvalid(t *testing.T) {
	conflicts, _, _ := newConflictFixture()
	svc := NewImportService(conflicts, nil, ImportConfig{})
	buf := buildWorkbook(t, [][]interface{}{
		{"a", "loose", "2026-01-20", "09:00", "10:00", "Room A"},
		{"b", "loose", "2026-01-20", "09:30", "10:30", "Room A"},
		{"z", "ghost", "2026-01-20", "09:00", "10:00", "Room A"},
	})

	resp, err := svc.Preview(context.Background(), testTenant(), buf, int64(buf.Len()))

	require.NoError(t, err)
	assert.Equal(t, 2, resp.ValidCount)
	assert.Equal(t, 1, resp.InvalidCount)
	assert.Equal(t, 2, resp.ConflictCount)
	byID := map[string]dto.ImportPreviewRow{}
	for _, row := range resp.Rows {
		byID[row.ID] = row
	}
	assert.False(t, byID["z"].Valid)
	assert.False(t, byID["z"].Conflict)
	assert.Contains(t, byID["z"].Error, "not found")
	assert.True(t, byID["a"].Conflict)
	assert.True(t, byID["b"].Conflict)
}

func TestImportServicePreviewRejectsGarbage(t *testing.T) {
	svc := NewImportService(nil, nil, ImportConfig{})

	_, err := svc.Preview(context.Background(), testTenant(), bytes.NewBufferString("not a workbook"), 14)

	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestImportServicePreviewRowLimit(t *testing.T) {
	svc := NewImportService(nil, nil, ImportConfig{MaxRows: 1})
	buf := buildWorkbook(t, [][]interface{}{
		{"a", "loose", "2026-01-20", "09:00", "10:00", "Room A"},
		{"b", "loose", "2026-01-20", "10:00", "11:00", "Room A"},
	})

	_, err := svc.Preview(context.Background(), testTenant(), buf, int64(buf.Len()))

	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestImportServicePreviewRequiresTenant(t *testing.T) {
	svc := NewImportService(nil, nil, ImportConfig{})
	_, err := svc.Preview(context.Background(), models.Tenant{}, bytes.NewBuffer(nil), 0)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}
