package table

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Row is a record of a table browsed without a Go type
type Row map[string]any

// String returns the column as text, "" for NULL
func (r Row) String(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return cast.ToString(v)
}

// Decoder turns a fetched column map into a record
type Decoder[T any] func(row map[string]any) (T, error)

// DefaultDecoder returns the decoder used by new models. Row records are
// taken as they are; anything else is decoded with mapstructure using the
// db struct tag.
func DefaultDecoder[T any]() Decoder[T] {
	var zero T
	if _, ok := any(zero).(Row); ok {
		return func(row map[string]any) (T, error) {
			return any(Row(row)).(T), nil
		}
	}

	return func(row map[string]any) (T, error) {
		var out T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "db",
			WeaklyTypedInput: true,
			Result:           &out,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			),
		})
		if err != nil {
			return out, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(row); err != nil {
			return out, err
		}
		return out, nil
	}
}
