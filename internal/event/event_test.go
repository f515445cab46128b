package event

import (
	"reflect"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID("https://example.com/events/1")
	id2 := GenerateID("  https://example.com/events/1 ")

	if id1 != id2 {
		t.Errorf("GenerateID should ignore surrounding whitespace, got %s vs %s", id1, id2)
	}

	if len(id1) != 40 { // SHA1 produces 40 hex characters
		t.Errorf("expected ID length of 40, got %d", len(id1))
	}

	if GenerateID("https://example.com/events/2") == id1 {
		t.Error("different links should produce different IDs")
	}
}

func TestBatch_Columns(t *testing.T) {
	b := NewBatch(ColTitle, ColLink, ColTitle)

	if want := []string{ColTitle, ColLink}; !reflect.DeepEqual(b.Columns, want) {
		t.Fatalf("NewBatch() columns = %v, want %v", b.Columns, want)
	}

	b.Append(Record{ColTitle: "Night Circus", ColLink: "https://a", "zeta": "z", "alpha": "a"})
	if want := []string{ColTitle, ColLink, "alpha", "zeta"}; !reflect.DeepEqual(b.Columns, want) {
		t.Errorf("Append() columns = %v, want %v", b.Columns, want)
	}

	b.DropColumn("alpha")
	if b.HasColumn("alpha") {
		t.Error("DropColumn() left column in header")
	}
	if _, ok := b.Records[0]["alpha"]; ok {
		t.Error("DropColumn() left value in record")
	}

	if got, want := b.Row(0), []string{"Night Circus", "https://a", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Row(0) = %v, want %v", got, want)
	}
}

func TestRecord_IsBlank(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{name: "empty record", rec: Record{}, want: true},
		{name: "whitespace only", rec: Record{ColTitle: "  ", ColLink: "\t"}, want: true},
		{name: "one value", rec: Record{ColTitle: "", ColLink: "https://a"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsBlank(); got != tt.want {
				t.Errorf("IsBlank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatch_Clone(t *testing.T) {
	b := NewBatch(ColTitle)
	b.Append(Record{ColTitle: "Circe"})

	c := b.Clone()
	c.Records[0][ColTitle] = "Kindred"
	c.AddColumn(ColLink)

	if b.Records[0][ColTitle] != "Circe" {
		t.Errorf("Clone() shares records with the original")
	}
	if b.HasColumn(ColLink) {
		t.Errorf("Clone() shares the header with the original")
	}
}
