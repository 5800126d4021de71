package recipient

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseBulkFileCSV(t *testing.T) {
	csvData := "Email,Name\nAlice@X.com,Alice\nbob@y.com,Bob\nalice@x.com,Dup\n"

	got, err := ParseBulkFile(strings.NewReader(csvData), "recipients.csv")
	if err != nil {
		t.Fatalf("ParseBulkFile returned error: %v", err)
	}

	want := []string{"alice@x.com", "bob@y.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("addresses = %v, want %v", got, want)
	}
}

func TestParseBulkFileNoHeader(t *testing.T) {
	csvData := "alice@x.com\nbob@y.com\n"

	got, err := ParseBulkFile(strings.NewReader(csvData), "list.csv")
	if err != nil {
		t.Fatalf("ParseBulkFile returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("addresses = %v, first data row must not be treated as header", got)
	}
}

func TestParseBulkFileUnsupportedType(t *testing.T) {
	if _, err := ParseBulkFile(strings.NewReader("x"), "recipients.txt"); err == nil {
		t.Error("expected error for unsupported file type")
	}
}
