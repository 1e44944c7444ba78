// Package export writes usage records to JSON and CSV.
package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/ganymede/pkg/usage"
)

// JSONExporter exports usage records as a JSON array.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the records to w as a JSON array.
func (e *JSONExporter) Export(ctx context.Context, records []*usage.Record, w io.Writer) error {
	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return usage.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return usage.NewExportError("json", len(records), err)
	}
	return nil
}

// ExportStream writes records from a channel to w as a JSON array. It is
// memory-efficient for large result sets: each record is serialized as it
// arrives rather than materializing the whole set.
func (e *JSONExporter) ExportStream(ctx context.Context, records <-chan *usage.Record, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return usage.NewExportError("json", 0, err)
	}

	first := true
	count := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-records:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return usage.NewExportError("json", count, err)
				}
				return nil
			}

			if !first {
				sep := ","
				if e.Pretty {
					sep = ",\n"
				}
				if _, err := w.Write([]byte(sep)); err != nil {
					return usage.NewExportError("json", count, err)
				}
			}
			first = false

			data, err := e.serialize(record)
			if err != nil {
				return usage.NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return usage.NewExportError("json", count, err)
			}
			count++
		}
	}
}

func (e *JSONExporter) serialize(record *usage.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
