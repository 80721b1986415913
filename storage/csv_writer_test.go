package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"moodmelt/models"
)

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Columns:      []string{"Date", "Engagements", "Sentiment", "Platform", "Media Type", "Location", "Headline"},
		HasMediaType: true,
		Records: []models.Mention{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Engagements: 10, Sentiment: "Positive", Platform: "X", MediaType: "Image", Location: "NY", Extra: map[string]string{"Headline": "Launch"}},
			{Date: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), Engagements: 0, Sentiment: "Negative", Platform: "IG", MediaType: "Video", Location: "LA"},
		},
	}
}

func TestCSVWriterRoundTripsColumns(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVStreamWriter(&buf)
	if err := w.Write(sampleDataset()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"Date", "Engagements", "Sentiment", "Platform", "Media Type", "Location", "Headline"},
		{"2024-01-01", "10", "Positive", "X", "Image", "NY", "Launch"},
		{"2024-01-02T09:30:00Z", "0", "Negative", "IG", "Video", "LA", ""},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v; want %v", rows, want)
	}
}

func TestCSVWriterDefaultColumns(t *testing.T) {
	ds := sampleDataset()
	ds.Columns = nil
	ds.HasMediaType = false

	var buf bytes.Buffer
	w := NewCSVStreamWriter(&buf)
	if err := w.Write(ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	wantHeader := []string{"Date", "Engagements", "Sentiment", "Platform", "Location"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v; want %v", rows[0], wantHeader)
	}
}

func TestCSVWriterCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleDataset()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("Date,Engagements")) {
		t.Errorf("unexpected file contents: %q", data)
	}
}
