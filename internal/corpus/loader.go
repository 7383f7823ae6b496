package corpus

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// ErrEmptyFile is returned when the corpus file has no header row.
var ErrEmptyFile = errors.New("corpus file has no columns")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns read from the corpus. Other columns are ignored.
var columns = []string{"name", "education_details", "experience_details", "skill"}

// Load reads the CSV corpus at path. Bytes are decoded as UTF-8 and, when
// that fails, as ISO-8859-1. Missing columns and cells become empty strings.
func Load(path string, logger *zap.Logger) (*Corpus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	text, encoding, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus %q: %w", path, err)
	}
	if encoding != EncodingUTF8 {
		logger.Info("corpus is not valid utf-8, decoded with fallback encoding",
			zap.String("path", path),
			zap.String("encoding", encoding),
		)
	}

	jobs, err := Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse corpus %q: %w", path, err)
	}

	logger.Debug("corpus loaded",
		zap.String("path", path),
		zap.Int("rows", len(jobs)),
		zap.String("encoding", encoding),
	)

	return &Corpus{Jobs: jobs, Encoding: encoding, Source: path}, nil
}

func decode(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), EncodingUTF8, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), EncodingLatin1, nil
}

// Parse reads CSV rows with a header line from r.
func Parse(r io.Reader) ([]Job, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make(map[string]int, len(columns))
	for i, column := range header {
		column = strings.TrimSpace(column)
		if _, seen := positions[column]; !seen {
			positions[column] = i
		}
	}

	jobs := make([]Job, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(jobs)+1, err)
		}

		row := make(map[string]string, len(columns))
		for _, column := range columns {
			if pos, ok := positions[column]; ok && pos < len(record) {
				row[column] = record[pos]
			} else {
				row[column] = ""
			}
		}

		var job Job
		if err := mapstructure.Decode(row, &job); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(jobs)+1, err)
		}
		job.CombinedText = combine(job.EducationDetails, job.ExperienceDetails, job.Skill)

		jobs = append(jobs, job)
	}

	return jobs, nil
}
