package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
)

// CSVWriter exports listings to a CSV file with the persisted column order.
type CSVWriter struct {
	path string
	log  *logrus.Entry
}

func NewCSVWriter(path string, log *logrus.Entry) *CSVWriter {
	return &CSVWriter{path: path, log: log}
}

// Write replaces the file with a header row and one row per listing.
// Creates the output directory if it does not exist.
func (w *CSVWriter) Write(listings []models.Listing) error {
	if len(listings) == 0 {
		w.log.Warn("No listings to write")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(models.Columns); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	for _, l := range listings {
		if err := writer.Write(l.Row()); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	// Flush before checking, otherwise buffered rows are lost silently.
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	w.log.WithField("path", w.path).Infof("Saved %d listings", len(listings))
	return nil
}
