package store

import (
	"encoding/json"
	"testing"
)

func TestSectionContentAcceptsStringAndList(t *testing.T) {
	var section ContentSection
	raw := `{"id":"intro","title":"Introduction","content":"A single paragraph."}`
	if err := json.Unmarshal([]byte(raw), &section); err != nil {
		t.Fatalf("unmarshal string content: %v", err)
	}
	if section.Content.IsList() {
		t.Error("string content should not be a list")
	}
	if section.Content.Text != "A single paragraph." {
		t.Errorf("unexpected text: %q", section.Content.Text)
	}

	raw = `{"id":"stack","title":"Stack","content":["Go","Postgres"]}`
	if err := json.Unmarshal([]byte(raw), &section); err != nil {
		t.Fatalf("unmarshal list content: %v", err)
	}
	if !section.Content.IsList() {
		t.Error("list content should be a list")
	}
	if len(section.Content.Items) != 2 || section.Content.Items[0] != "Go" {
		t.Errorf("unexpected items: %v", section.Content.Items)
	}
}

func TestSectionContentRejectsObjects(t *testing.T) {
	var content SectionContent
	if err := json.Unmarshal([]byte(`{"nested":true}`), &content); err == nil {
		t.Error("expected error for object content")
	}
}
