package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// DefaultExportFileName is used when the caller does not choose a file name.
const DefaultExportFileName = "test_cases.py"

const exportRoot = "exports"

var (
	// ErrNoTestCases is returned when an export is requested for an empty set.
	ErrNoTestCases = errors.New("no test cases to export")

	// ErrInvalidPrefix is returned when the export prefix is empty or unsafe.
	ErrInvalidPrefix = errors.New("invalid export prefix")
)

// ExportResult describes a stored export file.
type ExportResult struct {
	FileName  string `json:"fileName"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	CaseCount int    `json:"caseCount"`
}

// NormalizeFileName returns a safe base file name for an export. Directory
// components and characters outside letters, digits, '.', '-' and '_' are
// dropped. A name without an extension gets ".py".
func NormalizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	name = path.Base(name)

	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.Trim(name, ".")

	if name == "" {
		return DefaultExportFileName
	}
	if path.Ext(name) == "" {
		name += ".py"
	}
	return name
}

// ExportPath returns the storage path of an export file for prefix.
func ExportPath(prefix, fileName string) (string, error) {
	if prefix == "" || strings.ContainsAny(prefix, `/\`) || strings.HasPrefix(prefix, ".") {
		return "", ErrInvalidPrefix
	}
	return path.Join(exportRoot, prefix, NormalizeFileName(fileName)), nil
}

// Exporter writes concatenated pytest files to blob storage.
type Exporter struct {
	storage storage.BlobStorage
	logger  logger.Logger
}

// NewExporter creates an exporter backed by blobStorage.
func NewExporter(blobStorage storage.BlobStorage, log logger.Logger) *Exporter {
	return &Exporter{
		storage: blobStorage,
		logger:  log,
	}
}

// Export stores the concatenated skeletons of cases under
// exports/<prefix>/<fileName>. An existing file with the same name is replaced.
func (e *Exporter) Export(ctx context.Context, prefix, fileName string, cases []testcase.TestCase) (*ExportResult, error) {
	if len(cases) == 0 {
		return nil, ErrNoTestCases
	}

	storagePath, err := ExportPath(prefix, fileName)
	if err != nil {
		return nil, err
	}

	content := ExportAll(cases)
	if err := e.storage.Upload(ctx, storagePath, strings.NewReader(content)); err != nil {
		e.logger.Error(ctx, "failed to upload export", map[string]interface{}{
			"error": err.Error(),
			"path":  storagePath,
		})
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	result := &ExportResult{
		FileName:  path.Base(storagePath),
		Path:      storagePath,
		Size:      int64(len(content)),
		CaseCount: len(cases),
	}

	e.logger.Info(ctx, "test cases exported", map[string]interface{}{
		"path":       result.Path,
		"size":       result.Size,
		"case_count": result.CaseCount,
	})

	return result, nil
}

// Open returns a reader for a previously exported file.
func (e *Exporter) Open(ctx context.Context, prefix, fileName string) (io.ReadCloser, error) {
	storagePath, err := ExportPath(prefix, fileName)
	if err != nil {
		return nil, err
	}
	return e.storage.Download(ctx, storagePath)
}
