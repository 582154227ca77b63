package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, buildTestBatch(), "csv-summary"))
	assert.True(t, strings.HasPrefix(buf.String(), "StartYear,EndYear,Survived"))

	buf.Reset()
	require.NoError(t, WriteReport(&buf, buildTestBatch(), "summary"))
	assert.Contains(t, buf.String(), "BUY-AND-HOLD SIMULATION SUMMARY")
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, buildTestBatch(), "pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), `"pdf"`)
	assert.Contains(t, err.Error(), "Try one of: console, console-lite, csv")
	assert.Contains(t, err.Error(), "aliases:")
	assert.Zero(t, buf.Len(), "nothing is written for an unknown format")
}

func TestGenerateReport(t *testing.T) {
	SetNowFunc(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) })
	t.Cleanup(func() { SetNowFunc(time.Now) })

	tests := []struct {
		format string
		file   string
		prefix string
	}{
		{"html", "buyhold_report_20250102_030405.html", "<!DOCTYPE html>"},
		{"verbose", "buyhold_report_20250102_030405.txt", "BUY-AND-HOLD FIXED REAL WITHDRAWAL ANALYSIS"},
		{"json", "buyhold_report_20250102_030405.json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			path, err := GenerateReport(buildTestBatch(), tt.format, dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.file), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), tt.prefix))
		})
	}

	_, err := GenerateReport(buildTestBatch(), "xml", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
