package domain

import (
	"testing"

	"gorm.io/datatypes"
)

func TestDocument_HasAnyTag(t *testing.T) {
	doc := &Document{Tags: datatypes.NewJSONSlice([]string{"finance", "q3"})}

	if !doc.HasAnyTag([]string{"q3"}) {
		t.Fatalf("expected match on q3")
	}
	if !doc.HasAnyTag([]string{"nope", "finance"}) {
		t.Fatalf("expected match on any overlapping tag")
	}
	if doc.HasAnyTag([]string{"nope"}) {
		t.Fatalf("expected no match")
	}
	if doc.HasAnyTag(nil) {
		t.Fatalf("empty query set must never match")
	}

	var nilDoc *Document
	if nilDoc.HasAnyTag([]string{"finance"}) {
		t.Fatalf("nil document must never match")
	}
}
