package report

import "errors"

var (
	ErrReportGenerationFailed = errors.New("failed to generate report")
	ErrUnsupportedFormat      = errors.New("unsupported report format")
)
