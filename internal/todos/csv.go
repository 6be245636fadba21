package todos

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names accepted in import files, matched case-insensitively.
// Finnish headers are accepted alongside English ones.
var csvColumns = map[string][]string{
	"title":       {"title", "otsikko"},
	"description": {"description", "kuvaus"},
	"due_date":    {"due_date", "duedate", "due", "eräpäivä"},
	"link_url":    {"link_url", "linkurl", "link", "linkki"},
	"link_type":   {"link_type", "linktype"},
	"completed":   {"completed", "done", "valmis"},
}

type ImportResult struct {
	Imported int
	Errors   []error
}

// decodeCSV strips a UTF-8 BOM or decodes UTF-16 with BOM, and picks tab
// as the delimiter when the header has tabs but no commas.
func decodeCSV(r io.Reader) (*csv.Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	header, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	firstLine, _, _ := strings.Cut(string(header), "\n")

	reader := csv.NewReader(br)
	if strings.Contains(firstLine, "\t") && !strings.Contains(firstLine, ",") {
		reader.Comma = '\t'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader, nil
}

// Import creates a todo for every data row. Invalid rows are reported in
// the result and skipped; read errors abort the import.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	reader, err := decodeCSV(r)
	if err != nil {
		return nil, err
	}

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, names := range csvColumns {
			for _, name := range names {
				if h == name {
					idx[field] = i
				}
			}
		}
	}
	for _, required := range []string{"title", "description", "due_date"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("CSV file missing required column %q", required)
		}
	}

	get := func(record []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("error reading CSV: %w", err)
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}

		in := CreateInput{
			Title:       get(record, "title"),
			Description: get(record, "description"),
			DueDate:     get(record, "due_date"),
			LinkURL:     get(record, "link_url"),
			LinkType:    get(record, "link_type"),
		}
		if v := get(record, "completed"); v != "" {
			completed, err := strconv.ParseBool(v)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("line %d: invalid completed value %q", line, v))
				continue
			}
			in.Completed = completed
		}

		if _, err := s.Create(ctx, userID, in); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		result.Imported++
	}

	s.logger.Info("Imported todos", "user_id", userID, "imported", result.Imported, "failed", len(result.Errors))
	return result, nil
}
