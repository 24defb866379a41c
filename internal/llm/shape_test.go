package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"google.golang.org/genai"
)

var keywordShape = &Shape{
	Name:        "keyword_research",
	Description: "Keyword research result",
	Fields: []Field{
		StringList("primaryKeywords", "Short keywords", 5, 10),
		StringList("longTailKeywords", "Long-tail phrases", 5, 8),
	},
}

type keywordOut struct {
	PrimaryKeywords  []string `json:"primaryKeywords"`
	LongTailKeywords []string `json:"longTailKeywords"`
}

func TestShapeDecodeValid(t *testing.T) {
	raw := `{"primaryKeywords":["a","b","c","d","e"],"longTailKeywords":["f g h","i j k","l m n","o p q","r s t","u v w"]}`

	var out keywordOut
	if err := keywordShape.Decode([]byte(raw), &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out.PrimaryKeywords) != 5 || len(out.LongTailKeywords) != 6 {
		t.Errorf("decoded %d/%d keywords, want 5/6", len(out.PrimaryKeywords), len(out.LongTailKeywords))
	}
}

func TestShapeDecodeRejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		problem string
	}{
		{
			name:    "missing field",
			raw:     `{"primaryKeywords":["a","b","c","d","e"]}`,
			problem: "$.longTailKeywords: required field missing",
		},
		{
			name:    "too few items",
			raw:     `{"primaryKeywords":["a","b"],"longTailKeywords":["1","2","3","4","5"]}`,
			problem: "$.primaryKeywords: has 2 items, minimum is 5",
		},
		{
			name:    "too many items",
			raw:     `{"primaryKeywords":["a","b","c","d","e"],"longTailKeywords":["1","2","3","4","5","6","7","8","9"]}`,
			problem: "$.longTailKeywords: has 9 items, maximum is 8",
		},
		{
			name:    "wrong item type",
			raw:     `{"primaryKeywords":["a","b","c","d",5],"longTailKeywords":["1","2","3","4","5"]}`,
			problem: "$.primaryKeywords[4]: expected string, got number",
		},
		{
			name:    "blank item",
			raw:     `{"primaryKeywords":["a","b","c","d","  "],"longTailKeywords":["1","2","3","4","5"]}`,
			problem: "$.primaryKeywords[4]: must not be empty",
		},
		{
			name:    "null field",
			raw:     `{"primaryKeywords":null,"longTailKeywords":["1","2","3","4","5"]}`,
			problem: "$.primaryKeywords: required field missing",
		},
		{
			name:    "not json",
			raw:     `Sure! Here are keywords`,
			problem: "invalid JSON",
		},
		{
			name:    "array root",
			raw:     `["a"]`,
			problem: "$: expected object, got array",
		},
		{
			name:    "case-variant key",
			raw:     `{"primaryKeywords":["a","b","c","d","e"],"longTailKeywords":["1","2","3","4","5"],"PrimaryKeywords":[]}`,
			problem: "$.PrimaryKeywords: unexpected field",
		},
		{
			name:    "undeclared nested key",
			raw:     `{"primaryKeywords":["a","b","c","d","e"],"longTailKeywords":["1","2","3","4","5"],"notes":"extra"}`,
			problem: "$.notes: unexpected field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := keywordOut{PrimaryKeywords: []string{"untouched"}}
			err := keywordShape.Decode([]byte(tt.raw), &out)
			if !IsSchemaValidation(err) {
				t.Fatalf("Decode() error = %v, want SchemaValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.problem) {
				t.Errorf("error %q missing %q", err, tt.problem)
			}
			if len(out.PrimaryKeywords) != 1 || out.PrimaryKeywords[0] != "untouched" {
				t.Errorf("output was modified on failure: %+v", out)
			}
		})
	}
}

func TestShapeDecodeStringLengthAndBool(t *testing.T) {
	shape := &Shape{Name: "categories", Fields: []Field{
		ObjectList("categories", "", 1, 2,
			Field{Name: "category", Kind: KindString, Required: true, NonEmpty: true, MinLength: 1, MaxLength: 5},
			RequiredBool("isRequiredNow", ""),
		),
	}}

	var out map[string]any
	err := shape.Decode([]byte(`{"categories":[{"category":"Too long name","isRequiredNow":"yes"}]}`), &out)
	if !IsSchemaValidation(err) {
		t.Fatalf("Decode() error = %v, want SchemaValidationError", err)
	}
	for _, want := range []string{"$.categories[0].category: length 13 above maximum 5", "$.categories[0].isRequiredNow: expected boolean, got string"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestShapeDecodeRequiresPointer(t *testing.T) {
	var out keywordOut
	err := keywordShape.Decode([]byte(`{"primaryKeywords":["a","b","c","d","e"],"longTailKeywords":["1","2","3","4","5"]}`), out)
	if err == nil || IsSchemaValidation(err) {
		t.Errorf("Decode() error = %v, want non-schema pointer error", err)
	}
}

func TestShapeGenaiSchema(t *testing.T) {
	schema := keywordShape.GenaiSchema()

	if schema.Type != genai.TypeObject {
		t.Fatalf("root type = %v, want object", schema.Type)
	}
	if got := strings.Join(schema.PropertyOrdering, ","); got != "primaryKeywords,longTailKeywords" {
		t.Errorf("PropertyOrdering = %q", got)
	}
	if len(schema.Required) != 2 {
		t.Errorf("Required = %v, want both fields", schema.Required)
	}

	primary := schema.Properties["primaryKeywords"]
	if primary.Type != genai.TypeArray || primary.Items.Type != genai.TypeString {
		t.Errorf("primaryKeywords schema = %+v", primary)
	}
	if *primary.MinItems != 5 || *primary.MaxItems != 10 {
		t.Errorf("primaryKeywords bounds = %d..%d, want 5..10", *primary.MinItems, *primary.MaxItems)
	}
}

func TestShapeJSONSchemaMapIsStrict(t *testing.T) {
	m, err := keywordShape.JSONSchemaMap()
	if err != nil {
		t.Fatalf("JSONSchemaMap() error = %v", err)
	}

	if m["type"] != "object" {
		t.Errorf("type = %v, want object", m["type"])
	}
	if m["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v, want false", m["additionalProperties"])
	}

	b, _ := json.Marshal(m["properties"])
	if !strings.Contains(string(b), `"maxItems":8`) || !strings.Contains(string(b), `"minItems":5`) {
		t.Errorf("properties missing bounds: %s", b)
	}

	required, _ := m["required"].([]any)
	if len(required) != 2 {
		t.Errorf("required = %v, want both fields", m["required"])
	}
}

func TestShapeDecodeUniqueItems(t *testing.T) {
	shape := &Shape{Name: "keywords", Fields: []Field{
		UniqueStringList("primaryKeywords", "", 3, 5),
	}}

	var out struct {
		PrimaryKeywords []string `json:"primaryKeywords"`
	}
	err := shape.Decode([]byte(`{"primaryKeywords":["compost","Compost ","worms"]}`), &out)
	if !IsSchemaValidation(err) {
		t.Fatalf("Decode() error = %v, want SchemaValidationError", err)
	}
	if !strings.Contains(err.Error(), "$.primaryKeywords: item 1 duplicates item 0") {
		t.Errorf("unexpected error %q", err)
	}

	if err := shape.Decode([]byte(`{"primaryKeywords":["compost","worms","bokashi"]}`), &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out.PrimaryKeywords) != 3 {
		t.Errorf("decoded %v", out.PrimaryKeywords)
	}

	schema := shape.JSONSchema()
	prop, ok := schema.Properties.Get("primaryKeywords")
	if !ok || !prop.UniqueItems {
		t.Errorf("JSON schema primaryKeywords = %+v, want uniqueItems", prop)
	}
	plain, _ := keywordShape.JSONSchema().Properties.Get("primaryKeywords")
	if plain.UniqueItems {
		t.Error("StringList must not set uniqueItems")
	}
}
