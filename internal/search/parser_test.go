package search

import (
	"reflect"
	"testing"

	"github.com/rebeliceyang/lazytable/internal/schema"
)

func testSchema() *schema.Schema {
	return schema.New("Items", []schema.Field{
		{Name: "ItemId", Kind: schema.KindInt, PrimaryKey: true},
		{Name: "Title", Kind: schema.KindString, Aliases: []string{"title", "name"}},
		{Name: "Details", Kind: schema.KindString, Aliases: []string{"details", "d"}},
		{Name: "Done", Kind: schema.KindBool, Aliases: []string{"done"}},
		{Name: "Rank", Kind: schema.KindInt},
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
		wantArgs []any
	}{
		{
			name:     "bare token",
			text:     "foo",
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%foo%", "%foo%"},
		},
		{
			name:     "two tokens",
			text:     "foo  bar",
			wantText: `WHERE (("Title" LIKE ? OR "Details" LIKE ?) AND ("Title" LIKE ? OR "Details" LIKE ?))`,
			wantArgs: []any{"%foo%", "%foo%", "%bar%", "%bar%"},
		},
		{
			name:     "field binding",
			text:     "title:foo",
			wantText: `WHERE "Title" LIKE ?`,
			wantArgs: []any{"%foo%"},
		},
		{
			name:     "field binding stops at whitespace",
			text:     "title:Row 5",
			wantText: `WHERE ("Title" LIKE ? AND ("Title" LIKE ? OR "Details" LIKE ?))`,
			wantArgs: []any{"%Row%", "%5%", "%5%"},
		},
		{
			name:     "alias is case-insensitive",
			text:     "NAME:x",
			wantText: `WHERE "Title" LIKE ?`,
			wantArgs: []any{"%x%"},
		},
		{
			name:     "quoted value",
			text:     `title:"a b"`,
			wantText: `WHERE "Title" LIKE ?`,
			wantArgs: []any{"%a b%"},
		},
		{
			name:     "quoted token",
			text:     `"foo bar"`,
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%foo bar%", "%foo bar%"},
		},
		{
			name:     "boolean alias",
			text:     "done",
			wantText: `WHERE ("Done" IS ? OR "Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{true, "%done%", "%done%"},
		},
		{
			name:     "quoted boolean alias is text only",
			text:     `"done"`,
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%done%", "%done%"},
		},
		{
			name:     "unknown alias is dropped",
			text:     "nope:foo bar",
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%bar%", "%bar%"},
		},
		{
			name:     "trailing field without value",
			text:     "title:",
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%title%", "%title%"},
		},
		{
			name:     "lone colon",
			text:     ": foo",
			wantText: `WHERE ("Title" LIKE ? OR "Details" LIKE ?)`,
			wantArgs: []any{"%foo%", "%foo%"},
		},
		{
			name:     "wildcards are escaped",
			text:     "50%",
			wantText: `WHERE ("Title" LIKE ? ESCAPE ? OR "Details" LIKE ? ESCAPE ?)`,
			wantArgs: []any{`%50\%%`, `\`, `%50\%%`, `\`},
		},
	}

	s := testSchema()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where := Parse(tt.text, s)
			if where == nil {
				t.Fatalf("expected a where clause for %q", tt.text)
			}
			text, args := where.Render()
			if text != tt.wantText {
				t.Errorf("expected %q, got %q", tt.wantText, text)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("expected args %#v, got %#v", tt.wantArgs, args)
			}
		})
	}
}

func TestParseNoFilter(t *testing.T) {
	s := testSchema()
	for _, text := range []string{"", "   ", ":", "nope:foo", `""`, "\t\n"} {
		if where := Parse(text, s); where != nil {
			got, _ := where.Render()
			t.Errorf("Parse(%q): expected nil, got %q", text, got)
		}
	}
}

func TestParseWithoutStringFields(t *testing.T) {
	s := schema.New("Counters", []schema.Field{
		{Name: "Value", Kind: schema.KindInt},
		{Name: "Enabled", Kind: schema.KindBool},
	})

	if where := Parse("foo", s); where != nil {
		t.Errorf("expected nil for unmatched token, got %+v", where)
	}

	where := Parse("enabled", s)
	if where == nil {
		t.Fatal("expected boolean match")
	}
	text, args := where.Render()
	if text != `WHERE "Enabled" IS ?` {
		t.Errorf("unexpected text %q", text)
	}
	if !reflect.DeepEqual(args, []any{true}) {
		t.Errorf("unexpected args %#v", args)
	}
}

func TestParseSkipsUUIDColumns(t *testing.T) {
	s := schema.New("Orders", []schema.Field{
		{Name: "OrderId", Kind: schema.KindFromSQLType("uuid"), PrimaryKey: true},
		{Name: "CustomerId", Kind: schema.KindFromSQLType("uuid")},
		{Name: "Note", Kind: schema.KindFromSQLType("text")},
	})

	text, args := Parse("abc", s).Render()
	if text != `WHERE "Note" LIKE ?` {
		t.Errorf("expected only the text column to be searched, got %q", text)
	}
	if !reflect.DeepEqual(args, []any{"%abc%"}) {
		t.Errorf("unexpected args %#v", args)
	}
}
