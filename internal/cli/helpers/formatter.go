package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/coral-mesh/symranges/internal/resolver"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatCSV   OutputFormat = "csv"
)

// SupportedFormats lists the formats accepted by NewFormatter.
var SupportedFormats = []OutputFormat{FormatJSON, FormatTable, FormatCSV}

// Formatter writes a result record.
type Formatter interface {
	Format(rec *resolver.ResultRecord, writer io.Writer) error
}

// NewFormatter creates a new Formatter for the given format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// JSONFormatter writes the record as a single JSON line. HTML escaping is off so
// template names keep their angle brackets.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(rec *resolver.ResultRecord, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rec)
}

// TableFormatter writes an identity header and one aligned row per range, with
// hexadecimal addresses.
type TableFormatter struct{}

// nolint: errcheck
func (f *TableFormatter) Format(rec *resolver.ResultRecord, writer io.Writer) error {
	fmt.Fprintf(writer, "Image: %s\nUUID:  %s\nArch:  %s\n\n", rec.Image, rec.UUID, rec.Arch)

	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(getHeaders(reflect.TypeOf(resolver.FunctionRange{})), "\t"))
	for _, fn := range rec.Functions {
		fmt.Fprintf(w, "0x%x\t0x%x\t%s\n", fn.Start, fn.End, fn.Name)
	}
	return w.Flush()
}

// CSVFormatter writes one row per range with decimal addresses.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(rec *resolver.ResultRecord, writer io.Writer) error {
	w := csv.NewWriter(writer)
	headers := getHeaders(reflect.TypeOf(resolver.FunctionRange{}))
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, fn := range rec.Functions {
		row := []string{
			strconv.FormatUint(fn.Start, 10),
			strconv.FormatUint(fn.End, 10),
			fn.Name,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func getHeaders(t reflect.Type) []string {
	var headers []string
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("header"); tag != "" {
			headers = append(headers, tag)
		}
	}
	return headers
}
