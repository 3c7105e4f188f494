package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"NewsRiskAgent/internal/domain"
	"NewsRiskAgent/internal/ports"
)

// FileName is the report document written into the reports directory.
const FileName = "risk_analysis_report.json"

// FileWriter persists reports as indented JSON, replacing the previous document atomically.
type FileWriter struct {
	dir string
}

var _ ports.ReportWriter = (*FileWriter)(nil)

// NewFileWriter targets dir, created on first write.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// WriteReport encodes the report and returns the written path.
func (w *FileWriter) WriteReport(ctx context.Context, report domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if report.DetailedAssessments == nil {
		report.DetailedAssessments = []domain.Assessment{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(w.dir, FileName)
	tmp, err := os.CreateTemp(w.dir, FileName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace report: %w", err)
	}
	return path, nil
}
