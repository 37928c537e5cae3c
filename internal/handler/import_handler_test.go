package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-scheduler-api/internal/dto"
	"github.com/noah-isme/class-scheduler-api/internal/models"
)

type importMock struct {
	limit    int64
	received []byte
}

func (m *importMock) Preview(_ context.Context, _ models.Tenant, file io.Reader, _ int64) (*dto.ImportPreviewResponse, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	m.received = raw
	return &dto.ImportPreviewResponse{Rows: []dto.ImportPreviewRow{}, ValidCount: 1}, nil
}

func (m *importMock) MaxFileSize() int64 { return m.limit }

func multipartUpload(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "sessions.xlsx")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportHandlerPreview(t *testing.T) {
	mock := &importMock{limit: 1024}
	h := &ImportHandler{service: mock}
	body, contentType := multipartUpload(t, "file", []byte("workbook"))
	c, w := newTestContext(http.MethodPost, "/sessions/import/preview", body, adminClaims)
	c.Request.Header.Set("Content-Type", contentType)

	h.Preview(c)

	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, []byte("workbook"), mock.received)
}

func TestImportHandlerRejectsLargeFile(t *testing.T) {
	h := &ImportHandler{service: &importMock{limit: 4}}
	body, contentType := multipartUpload(t, "file", []byte("much too large"))
	c, w := newTestContext(http.MethodPost, "/sessions/import/preview", body, adminClaims)
	c.Request.Header.Set("Content-Type", contentType)

	h.Preview(c)

	assertStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestImportHandlerRequiresFileField(t *testing.T) {
	h := &ImportHandler{service: &importMock{limit: 1024}}
	body, contentType := multipartUpload(t, "attachment", []byte("workbook"))
	c, w := newTestContext(http.MethodPost, "/sessions/import/preview", body, adminClaims)
	c.Request.Header.Set("Content-Type", contentType)

	h.Preview(c)

	assertStatus(t, w, http.StatusBadRequest)
}
