package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// Kind is the JSON type of a shape field.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Field describes one node of an output shape. Zero bounds mean unbounded.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	NonEmpty    bool // strings must contain non-whitespace text
	MinLength   int  // strings, in runes
	MaxLength   int
	MinItems    int // arrays
	MaxItems    int
	UniqueItems bool    // string items must differ after trimming and case folding
	Items       *Field  // arrays
	Fields      []Field // objects
}

// Shape is the declared output of a structured completion. The root is
// always a JSON object.
type Shape struct {
	Name        string
	Description string
	Fields      []Field
}

// RequiredString declares a required, non-empty string field.
func RequiredString(name, description string) Field {
	return Field{Name: name, Kind: KindString, Description: description, Required: true, NonEmpty: true}
}

// RequiredBool declares a required boolean field.
func RequiredBool(name, description string) Field {
	return Field{Name: name, Kind: KindBoolean, Description: description, Required: true}
}

// StringList declares a required array of non-empty strings with cardinality bounds.
func StringList(name, description string, minItems, maxItems int) Field {
	return Field{
		Name:        name,
		Kind:        KindArray,
		Description: description,
		Required:    true,
		MinItems:    minItems,
		MaxItems:    maxItems,
		Items:       &Field{Kind: KindString, NonEmpty: true},
	}
}

// UniqueStringList is a StringList whose items must be distinct.
func UniqueStringList(name, description string, minItems, maxItems int) Field {
	f := StringList(name, description, minItems, maxItems)
	f.UniqueItems = true
	return f
}

// ObjectList declares a required array of objects with cardinality bounds.
func ObjectList(name, description string, minItems, maxItems int, fields ...Field) Field {
	return Field{
		Name:        name,
		Kind:        KindArray,
		Description: description,
		Required:    true,
		MinItems:    minItems,
		MaxItems:    maxItems,
		Items:       &Field{Kind: KindObject, Fields: fields},
	}
}

func (s *Shape) root() Field {
	return Field{Name: s.Name, Kind: KindObject, Description: s.Description, Fields: s.Fields}
}

// Decode validates raw against the shape and, only if every constraint
// holds, decodes the validated document into out. Undeclared keys are
// rejected, so the decoder cannot pick up a case-variant of a declared key.
// On failure out is left untouched.
func (s *Shape) Decode(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &SchemaValidationError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}, Raw: truncate(string(raw), 500)}
	}

	var problems []string
	root := s.root()
	validateField(&root, doc, "$", &problems)
	if len(problems) > 0 {
		return &SchemaValidationError{Problems: problems, Raw: truncate(string(raw), 500)}
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", out)
	}
	validated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to re-encode validated output: %w", err)
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(validated, fresh.Interface()); err != nil {
		return &SchemaValidationError{Problems: []string{fmt.Sprintf("cannot decode into %T: %v", out, err)}, Raw: truncate(string(raw), 500)}
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

func validateField(f *Field, v any, path string, problems *[]string) {
	fail := func(format string, args ...any) {
		*problems = append(*problems, path+": "+fmt.Sprintf(format, args...))
	}

	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			fail("expected string, got %s", jsonType(v))
			return
		}
		if f.NonEmpty && strings.TrimSpace(s) == "" {
			fail("must not be empty")
		}
		n := utf8.RuneCountInString(s)
		if f.MinLength > 0 && n < f.MinLength {
			fail("length %d below minimum %d", n, f.MinLength)
		}
		if f.MaxLength > 0 && n > f.MaxLength {
			fail("length %d above maximum %d", n, f.MaxLength)
		}
	case KindInteger:
		num, ok := v.(json.Number)
		if !ok {
			fail("expected integer, got %s", jsonType(v))
			return
		}
		if _, err := num.Int64(); err != nil {
			fail("expected integer, got %s", num)
		}
	case KindNumber:
		num, ok := v.(json.Number)
		if !ok {
			fail("expected number, got %s", jsonType(v))
			return
		}
		if _, err := num.Float64(); err != nil {
			fail("expected number, got %s", num)
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			fail("expected boolean, got %s", jsonType(v))
		}
	case KindArray:
		items, ok := v.([]any)
		if !ok {
			fail("expected array, got %s", jsonType(v))
			return
		}
		if f.MinItems > 0 && len(items) < f.MinItems {
			fail("has %d items, minimum is %d", len(items), f.MinItems)
		}
		if f.MaxItems > 0 && len(items) > f.MaxItems {
			fail("has %d items, maximum is %d", len(items), f.MaxItems)
		}
		if f.Items != nil {
			for i, item := range items {
				validateField(f.Items, item, fmt.Sprintf("%s[%d]", path, i), problems)
			}
		}
		if f.UniqueItems {
			seen := make(map[string]int, len(items))
			for i, item := range items {
				s, ok := item.(string)
				if !ok {
					continue
				}
				key := strings.ToLower(strings.TrimSpace(s))
				if first, dup := seen[key]; dup {
					fail("item %d duplicates item %d (%q)", i, first, s)
					continue
				}
				seen[key] = i
			}
		}
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			fail("expected object, got %s", jsonType(v))
			return
		}
		for i := range f.Fields {
			child := &f.Fields[i]
			val, present := obj[child.Name]
			if !present || val == nil {
				if child.Required {
					*problems = append(*problems, path+"."+child.Name+": required field missing")
				}
				continue
			}
			validateField(child, val, path+"."+child.Name, problems)
		}
		var extra []string
		for key := range obj {
			if !f.declares(key) {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			*problems = append(*problems, path+"."+key+": unexpected field")
		}
	default:
		fail("unsupported kind %q", f.Kind)
	}
}

func (f *Field) declares(key string) bool {
	for i := range f.Fields {
		if f.Fields[i].Name == key {
			return true
		}
	}
	return false
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// GenaiSchema maps the shape onto Gemini's response schema.
func (s *Shape) GenaiSchema() *genai.Schema {
	root := s.root()
	return genaiSchema(&root)
}

func genaiSchema(f *Field) *genai.Schema {
	schema := &genai.Schema{Description: f.Description}
	switch f.Kind {
	case KindString:
		schema.Type = genai.TypeString
		if f.MinLength > 0 {
			schema.MinLength = genai.Ptr(int64(f.MinLength))
		}
		if f.MaxLength > 0 {
			schema.MaxLength = genai.Ptr(int64(f.MaxLength))
		}
	case KindInteger:
		schema.Type = genai.TypeInteger
	case KindNumber:
		schema.Type = genai.TypeNumber
	case KindBoolean:
		schema.Type = genai.TypeBoolean
	case KindArray:
		schema.Type = genai.TypeArray
		if f.Items != nil {
			schema.Items = genaiSchema(f.Items)
		}
		if f.MinItems > 0 {
			schema.MinItems = genai.Ptr(int64(f.MinItems))
		}
		if f.MaxItems > 0 {
			schema.MaxItems = genai.Ptr(int64(f.MaxItems))
		}
	case KindObject:
		schema.Type = genai.TypeObject
		schema.Properties = make(map[string]*genai.Schema, len(f.Fields))
		for i := range f.Fields {
			child := &f.Fields[i]
			schema.Properties[child.Name] = genaiSchema(child)
			schema.PropertyOrdering = append(schema.PropertyOrdering, child.Name)
			if child.Required {
				schema.Required = append(schema.Required, child.Name)
			}
		}
	}
	return schema
}

// JSONSchema maps the shape onto a strict JSON Schema as accepted by OpenAI
// structured outputs: every object closes additionalProperties and lists all
// of its properties as required.
func (s *Shape) JSONSchema() *jsonschema.Schema {
	root := s.root()
	return jsonSchema(&root)
}

func jsonSchema(f *Field) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: string(f.Kind), Description: f.Description}
	switch f.Kind {
	case KindArray:
		if f.Items != nil {
			schema.Items = jsonSchema(f.Items)
		}
		if f.MinItems > 0 {
			n := uint64(f.MinItems)
			schema.MinItems = &n
		}
		if f.MaxItems > 0 {
			n := uint64(f.MaxItems)
			schema.MaxItems = &n
		}
		schema.UniqueItems = f.UniqueItems
	case KindObject:
		schema.Properties = jsonschema.NewProperties()
		schema.AdditionalProperties = jsonschema.FalseSchema
		for i := range f.Fields {
			child := &f.Fields[i]
			schema.Properties.Set(child.Name, jsonSchema(child))
			schema.Required = append(schema.Required, child.Name)
		}
	}
	return schema
}

// JSONSchemaMap renders JSONSchema as the generic map the OpenAI SDK expects.
func (s *Shape) JSONSchemaMap() (map[string]any, error) {
	b, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return m, nil
}
