package rules

import (
	"errors"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fedragon/media-timediff/internal/models"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

type FieldType int

const (
	String FieldType = iota
	Number
	Date
)

// Column declares one expected column of a rule table. Convert and Validate, when set,
// take precedence over the built-in behaviour of Type.
type Column struct {
	From     string
	To       string
	Type     FieldType
	Convert  func(string) (any, error)
	Validate func(any) bool
}

// Name declares a pass-through string column keeping its header as field name.
func Name(name string) Column {
	return Column{From: name, To: name, Type: String}
}

type Record map[string]any

type Encoding struct {
	Name     string
	Encoding encoding.Encoding
}

var DefaultEncodings = []Encoding{
	{Name: "shift_jis", Encoding: japanese.ShiftJIS},
	{Name: "utf-8", Encoding: unicode.UTF8BOM},
}

var dateLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var lineBreak = regexp.MustCompile(`\r?\n`)

type Parser struct {
	Encodings []Encoding
	Location  *time.Location
}

func NewParser(loc *time.Location) *Parser {
	return &Parser{Encodings: DefaultEncodings, Location: loc}
}

func (p *Parser) Parse(path string, columns []Column) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return p.ParseBytes(b, columns)
}

// ParseBytes decodes b with the first candidate encoding whose header row holds every
// declared source column, then converts and validates each data row.
func (p *Parser) ParseBytes(b []byte, columns []Column) ([]Record, error) {
	byHeader := make(map[string]Column, len(columns))
	expected := make([]string, 0, len(columns))
	for _, c := range columns {
		byHeader[c.From] = c
		expected = append(expected, c.From)
	}

	var missing []string
	for _, enc := range p.Encodings {
		text, err := enc.Encoding.NewDecoder().Bytes(b)
		if err != nil {
			continue
		}

		lines := lineBreak.Split(string(text), -1)
		if len(lines) == 0 || lines[0] == "" {
			missing = expected
			continue
		}

		headers := strings.Split(lines[0], ",")
		missing = missingHeaders(headers, expected)
		if len(missing) > 0 {
			continue
		}

		return p.records(lines, headers, byHeader)
	}

	if missing == nil {
		missing = expected
	}

	return nil, models.Expected(
		models.HeaderMismatch,
		"header must contain the columns [%s], missing [%s]",
		strings.Join(expected, ","),
		strings.Join(missing, ","),
	)
}

func (p *Parser) records(lines []string, headers []string, byHeader map[string]Column) ([]Record, error) {
	records := make([]Record, 0, len(lines)-1)

	for n, line := range lines[1:] {
		if line == "" {
			continue
		}

		fields := make([]string, len(headers))
		copy(fields, strings.Split(line, ","))

		record := make(Record)
		for i, field := range fields {
			column, ok := byHeader[headers[i]]
			if !ok {
				continue
			}

			value, valid := p.convert(column, strings.TrimSpace(field))
			if !valid {
				return nil, models.Expected(
					models.FieldValidation,
					"invalid value on line %d, column %s: %q",
					n+2, headers[i], field,
				)
			}
			record[column.To] = value
		}

		records = append(records, record)
	}

	return records, nil
}

func (p *Parser) convert(c Column, raw string) (any, bool) {
	var value any
	if c.Convert != nil {
		v, err := c.Convert(raw)
		if err != nil {
			return nil, false
		}
		value = v
	} else {
		value = p.builtin(c.Type, raw)
	}

	validate := c.Validate
	if validate == nil {
		validate = builtinValidator(c.Type)
	}

	return value, validate(value)
}

func (p *Parser) builtin(t FieldType, raw string) any {
	switch t {
	case Number:
		if raw == "" {
			return 0.0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case Date:
		d, err := parseDate(raw, p.Location)
		if err != nil {
			return time.Time{}
		}
		return d
	default:
		return raw
	}
}

func builtinValidator(t FieldType) func(any) bool {
	switch t {
	case Number:
		return func(v any) bool {
			f, ok := v.(float64)
			return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
		}
	case Date:
		return func(v any) bool {
			d, ok := v.(time.Time)
			return ok && !d.IsZero()
		}
	default:
		return func(any) bool { return true }
	}
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}

	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return d, nil
		}
	}

	return time.Time{}, errors.New("unrecognised date format")
}

func missingHeaders(headers []string, expected []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, e := range expected {
		if !present[e] {
			missing = append(missing, e)
		}
	}

	return missing
}
