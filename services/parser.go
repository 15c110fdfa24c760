package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"covid-dashboard/models"
	"covid-dashboard/utils"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrParse wraps every failure to turn an upload into a Dataset.
var ErrParse = errors.New("parse failed")

// CSVParser turns an uploaded CSV file with a header row into a Dataset.
type CSVParser struct {
	logger *utils.Logger
}

// NewCSVParser creates a CSVParser with the given logger.
func NewCSVParser(logger *utils.Logger) *CSVParser {
	return &CSVParser{logger: logger}
}

// Parse reads r to the end. Each data row becomes a record keyed by header
// name; short rows leave trailing columns absent and surplus cells are dropped.
// Values are kept exactly as written.
func (p *CSVParser) Parse(r io.Reader) (models.Dataset, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}
	header = normaliseHeader(header)

	dataset := make(models.Dataset, 0)
	short := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		rec := make(models.CaseRecord, len(header))
		for i, name := range header {
			if i >= len(row) {
				short++
				break
			}
			if name == "" {
				continue
			}
			rec[name] = row[i]
		}
		dataset = append(dataset, rec)
	}

	if short > 0 {
		p.logger.Debug("[parser] %d rows had fewer fields than the header", short)
	}
	if missing := missingHeaders(header); len(missing) > 0 {
		p.logger.Warn("[parser] Upload lacks expected columns: %s", strings.Join(missing, ", "))
	}
	p.logger.Info("[parser] Parsed %d records (%d columns)", len(dataset), len(header))
	return dataset, nil
}

// skipBOM drops a leading UTF-8 byte order mark so a quoted first header
// cell still parses.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// normaliseHeader trims whitespace around column names.
func normaliseHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func missingHeaders(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, want := range models.ExpectedHeaders {
		if _, ok := have[want]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
