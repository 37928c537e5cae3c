package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

func TestExportServiceCSV(t *testing.T) {
	sessions, _, _, _ := newSessionFixture(persisted("s1", "class-1", "Room A", at(9, 0), at(10, 0)))
	svc := NewExportService(sessions, nil)

	result, err := svc.Export(context.Background(), testTenant(), dto.ExportSessionsQuery{
		ListSessionsQuery: dto.ListSessionsQuery{StartDate: "2026-01-20", EndDate: "2026-01-20"},
	})

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Start,End,Class,Course,Teacher,Room,Status,Students", lines[0])
	assert.Equal(t, "2026-01-20,09:00,10:00,Class class-1,,,Room A,SCHEDULED,0", lines[1])
}

func TestExportServicePDF(t *testing.T) {
	sessions, _, _, _ := newSessionFixture(persisted("s1", "class-1", "Room A", at(9, 0), at(10, 0)))
	svc := NewExportService(sessions, nil)

	result, err := svc.Export(context.Background(), testTenant(), dto.ExportSessionsQuery{
		ListSessionsQuery: dto.ListSessionsQuery{StartDate: "2026-01-20", EndDate: "2026-01-20"},
		Format:            "pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	sessions, _, _, _ := newSessionFixture()
	svc := NewExportService(sessions, nil)

	_, err := svc.Export(context.Background(), testTenant(), dto.ExportSessionsQuery{
		ListSessionsQuery: dto.ListSessionsQuery{StartDate: "2026-01-20", EndDate: "2026-01-20"},
		Format:            "xml",
	})

	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
