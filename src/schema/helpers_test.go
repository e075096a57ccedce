package schema

import (
	"encoding/json"
	"testing"

	jsonschema "github.com/swaggest/jsonschema-go"
)

func TestString(t *testing.T) {
	s := String("test description")

	if s == nil {
		t.Fatal("Expected schema to be non-nil")
	}
	if s.Description == nil || *s.Description != "test description" {
		t.Errorf("Expected description 'test description', got %v", s.Description)
	}
	if s.Type == nil || s.Type.SimpleTypes == nil {
		t.Fatal("Expected type to be set")
	}
	expectedType := jsonschema.SimpleType("string")
	if *s.Type.SimpleTypes != expectedType {
		t.Errorf("Expected type 'string', got %v", *s.Type.SimpleTypes)
	}
}

func TestStringEnum(t *testing.T) {
	s := StringEnum("intent class", "sql", "info", "clarification")

	if len(s.Enum) != 3 {
		t.Fatalf("Expected 3 enum values, got %d", len(s.Enum))
	}
	if s.Enum[0] != "sql" {
		t.Errorf("Expected first enum value 'sql', got %v", s.Enum[0])
	}
}

func TestObject(t *testing.T) {
	s := Object(map[string]*jsonschema.Schema{
		"type":  StringEnum("intent", "sql", "info"),
		"query": String("the statement"),
	}, []string{"type", "query"})

	if len(s.Properties) != 2 {
		t.Errorf("Expected 2 properties, got %d", len(s.Properties))
	}
	if len(s.Required) != 2 {
		t.Errorf("Expected 2 required fields, got %d", len(s.Required))
	}

	prop, ok := s.Properties["query"]
	if !ok || prop.TypeObject == nil {
		t.Fatal("Expected query property to be present")
	}
	if prop.TypeObject.Description == nil || *prop.TypeObject.Description != "the statement" {
		t.Errorf("Unexpected query description: %v", prop.TypeObject.Description)
	}
}

func TestObjectMarshals(t *testing.T) {
	s := Object(map[string]*jsonschema.Schema{
		"type": StringEnum("intent", "sql", "info"),
	}, []string{"type"})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["type"] != "object" {
		t.Errorf("Expected type 'object', got %v", decoded["type"])
	}
	if _, ok := decoded["properties"]; !ok {
		t.Error("Expected properties to be encoded")
	}
}
