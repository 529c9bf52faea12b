// Package schema describes the searchable columns of a record type: their
// value kinds and the aliases users may type to address them.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind is the declared value type of a field
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// Field describes one column of a record type
type Field struct {
	Name       string
	Kind       Kind
	Aliases    []string // search aliases; the field name is used when empty
	PrimaryKey bool
	Ignore     bool
}

// TableNamer lets a record type pick its own table name
type TableNamer interface {
	TableName() string
}

// Schema is the field and alias map of one record type
type Schema struct {
	table   string
	fields  []Field
	kinds   map[string]Kind
	aliases map[string][]string
}

// New builds a schema from field descriptions. Primary-key and ignored
// fields are left out of the search maps.
func New(table string, fields []Field) *Schema {
	s := &Schema{
		table:   table,
		kinds:   make(map[string]Kind),
		aliases: make(map[string][]string),
	}

	for _, f := range fields {
		if f.PrimaryKey || f.Ignore {
			continue
		}
		if _, dup := s.kinds[f.Name]; dup {
			continue
		}

		s.fields = append(s.fields, f)
		s.kinds[f.Name] = f.Kind

		aliases := f.Aliases
		if len(aliases) == 0 {
			aliases = []string{f.Name}
		}
		for _, alias := range aliases {
			s.addAlias(alias, f.Name)
		}
	}

	return s
}

func (s *Schema) addAlias(alias, field string) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if key == "" {
		return
	}
	for _, existing := range s.aliases[key] {
		if existing == field {
			return
		}
	}
	s.aliases[key] = append(s.aliases[key], field)
}

// WithAliases returns a copy of s with extra aliases merged in. Aliases
// naming unknown fields are skipped.
func (s *Schema) WithAliases(extra map[string][]string) *Schema {
	out := New(s.table, s.fields)
	for alias, fields := range extra {
		for _, field := range fields {
			if _, ok := out.kinds[field]; ok {
				out.addAlias(alias, field)
			}
		}
	}
	return out
}

// Table returns the table backing the record type
func (s *Schema) Table() string { return s.table }

// Fields returns the searchable fields in declaration order
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Resolve returns the fields addressed by alias, matched case-insensitively
func (s *Schema) Resolve(alias string) ([]string, bool) {
	fields, ok := s.aliases[strings.ToLower(alias)]
	return fields, ok
}

// Kind returns the declared kind of a field
func (s *Schema) Kind(field string) (Kind, bool) {
	k, ok := s.kinds[field]
	return k, ok
}

// FieldsOfKind returns every searchable field of kind k in declaration order
func (s *Schema) FieldsOfKind(k Kind) []string {
	var names []string
	for _, f := range s.fields {
		if f.Kind == k {
			names = append(names, f.Name)
		}
	}
	return names
}

var timeType = reflect.TypeOf(time.Time{})

// FromStruct builds the schema of T from its exported fields.
//
// The column name comes from the `db` tag (`db:"-"` ignores the field and
// a `pk` option marks the primary key); `search:"a,b"` sets aliases. The
// table name comes from a TableName method or defaults to the type name.
func FromStruct[T any]() (*Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %T is not a struct type", zero)
	}

	table := t.Name()
	if namer, ok := reflect.New(t).Interface().(TableNamer); ok {
		table = namer.TableName()
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		f := Field{Name: sf.Name, Kind: kindOf(sf.Type)}

		if tag, ok := sf.Tag.Lookup("db"); ok {
			parts := strings.Split(tag, ",")
			switch parts[0] {
			case "-":
				f.Ignore = true
			case "":
			default:
				f.Name = parts[0]
			}
			for _, opt := range parts[1:] {
				if strings.TrimSpace(opt) == "pk" {
					f.PrimaryKey = true
				}
			}
		}

		if tag := sf.Tag.Get("search"); tag != "" {
			for _, alias := range strings.Split(tag, ",") {
				if alias = strings.TrimSpace(alias); alias != "" {
					f.Aliases = append(f.Aliases, alias)
				}
			}
		}

		fields = append(fields, f)
	}

	return New(table, fields), nil
}

func kindOf(t reflect.Type) Kind {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return KindTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	default:
		return KindOther
	}
}

// KindFromSQLType maps a database column type name to a Kind. Only types
// that accept LIKE map to KindString, so uuid is KindOther.
func KindFromSQLType(dataType string) Kind {
	t := strings.ToLower(dataType)
	switch {
	case t == "uuid":
		return KindOther
	case strings.Contains(t, "bool"):
		return KindBool
	case strings.Contains(t, "int"):
		return KindInt
	case strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob") ||
		t == "citext" || t == "name":
		return KindString
	case strings.Contains(t, "real") || strings.Contains(t, "floa") || strings.Contains(t, "doub") ||
		strings.Contains(t, "numeric") || strings.Contains(t, "decimal"):
		return KindFloat
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return KindTime
	default:
		return KindOther
	}
}
