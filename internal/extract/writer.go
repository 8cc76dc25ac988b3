package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vocab/pkg/models"
)

// csvHeader is the fixed three-column header Anki imports expect.
var csvHeader = []string{"Word", "Back", "Tags"}

// WriteCSV writes the cards as a UTF-8 CSV table and returns the
// absolute path of the written file.
//
// Every call is a full overwrite of the destination, header included;
// callers accumulating cards across extractions must read-modify-write
// the full set themselves (see ReadCSV).
func WriteCSV(cards []models.Card, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolve output path %q: %w", dest, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, card := range cards {
		if err := w.Write([]string{card.Word, card.Back, card.Tags}); err != nil {
			return "", fmt.Errorf("write row for %q: %w", card.Word, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush output file: %w", err)
	}

	return abs, nil
}

// ReadCSV reads a previously written card table back. A missing file is
// an empty table, not an error, so first runs need no special casing.
func ReadCSV(path string) ([]models.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open card table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	var cards []models.Card
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read card table %s: %w", path, err)
		}
		if first {
			first = false
			continue // header row
		}
		cards = append(cards, models.Card{Word: record[0], Back: record[1], Tags: record[2]})
	}
	return cards, nil
}

// WriteXLSX writes the same card table as an Excel workbook for people
// reviewing the deck in a spreadsheet before importing it.
func WriteXLSX(cards []models.Card, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolve output path %q: %w", dest, err)
	}

	const sheet = "Cards"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{csvHeader[0], csvHeader[1], csvHeader[2]}); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, card := range cards {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{card.Word, card.Back, card.Tags}); err != nil {
			return "", fmt.Errorf("write row for %q: %w", card.Word, err)
		}
	}

	if err := f.SaveAs(abs); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return abs, nil
}
