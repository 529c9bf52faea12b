// Package export writes every row of a table model, in model order, as CSV,
// JSON or YAML.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazytable/internal/table"
)

// Format names an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// each visits rows of model from index 0 until the model runs out
func each(ctx context.Context, model *table.Model[table.Row], fn func(row table.Row) error) (int, error) {
	n := 0
	for {
		row, ok, err := model.Item(ctx, n)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		if err := fn(row); err != nil {
			return n, err
		}
		n++
	}
}

// CSV writes a header of columns followed by every row. It returns the
// number of rows written.
func CSV(ctx context.Context, model *table.Model[table.Row], columns []string, w io.Writer) (int, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	n, err := each(ctx, model, func(row table.Row) error {
		for i, col := range columns {
			record[i] = row.String(col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
		return nil
	})
	if err != nil {
		return n, err
	}

	writer.Flush()
	return n, writer.Error()
}

// project keeps columns of row, rendering every value as text so that
// driver specific types encode the same way everywhere
func project(row table.Row, columns []string) map[string]any {
	out := make(map[string]any, len(columns))
	for _, col := range columns {
		if row[col] == nil {
			out[col] = nil
			continue
		}
		out[col] = row.String(col)
	}
	return out
}

// JSON writes the rows as a JSON array of objects keyed by column
func JSON(ctx context.Context, model *table.Model[table.Row], columns []string, w io.Writer) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}

	sep := "\n  "
	n, err := each(ctx, model, func(row table.Row) error {
		data, err := json.Marshal(project(row, columns))
		if err != nil {
			return fmt.Errorf("failed to marshal row to JSON: %w", err)
		}
		if _, err := io.WriteString(w, sep+string(data)); err != nil {
			return err
		}
		sep = ",\n  "
		return nil
	})
	if err != nil {
		return n, err
	}

	_, err = io.WriteString(w, "\n]\n")
	return n, err
}

// YAML writes the rows as a single YAML sequence of mappings. Unlike CSV
// and JSON the document is built in memory before it is encoded.
func YAML(ctx context.Context, model *table.Model[table.Row], columns []string, w io.Writer) (int, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}

	n, err := each(ctx, model, func(row table.Row) error {
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range columns {
			value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row.String(col)}
			if row[col] == nil {
				value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: col},
				value,
			)
		}
		seq.Content = append(seq.Content, node)
		return nil
	})
	if err != nil {
		return n, err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return n, fmt.Errorf("failed to encode rows to YAML: %w", err)
	}
	return n, enc.Close()
}

// Write exports model in format to w
func Write(ctx context.Context, format Format, model *table.Model[table.Row], columns []string, w io.Writer) (int, error) {
	switch format {
	case FormatCSV:
		return CSV(ctx, model, columns, w)
	case FormatJSON:
		return JSON(ctx, model, columns, w)
	case FormatYAML:
		return YAML(ctx, model, columns, w)
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}
}

// ToFile exports model in format to a new file at path
func ToFile(ctx context.Context, format Format, model *table.Model[table.Row], columns []string, path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	n, err := Write(ctx, format, model, columns, file)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close export file: %w", cerr)
	}
	return n, err
}
