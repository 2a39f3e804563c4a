package results

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by ExportXLSX
const SheetName = "Results"

// TableHeader is the column order of the tabular exports.
var TableHeader = []string{
	"Test", "Crossover", "Mutation", "Population", "Generations",
	"Average Fitness", "Best Fitness", "Elitism",
}

// Export renders records in the given format
func Export(records []RunRecord, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case ExportFormatCSV:
		return ExportCSV(records)
	case ExportFormatXLSX:
		return ExportXLSX(records)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseExportFormat accepts json, csv or xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

func tableRow(r RunRecord) []string {
	return []string{
		strconv.Itoa(r.TestID),
		strconv.FormatFloat(r.CrossoverRate, 'f', -1, 64),
		strconv.FormatFloat(r.MutationRate, 'f', -1, 64),
		strconv.Itoa(r.PopulationSize),
		strconv.Itoa(r.NumGenerations),
		strconv.FormatFloat(r.AverageFitness, 'f', -1, 64),
		strconv.FormatFloat(r.BestFitness, 'f', -1, 64),
		strconv.FormatBool(r.Elitism),
	}
}

// ExportCSV writes the results table as CSV
func ExportCSV(records []RunRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(TableHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write(tableRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportXLSX writes the results table as a workbook with every cell centered
func ExportXLSX(records []RunRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(TableHeader))
	for i, h := range TableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.TestID, r.CrossoverRate, r.MutationRate, r.PopulationSize,
			r.NumGenerations, r.AverageFitness, r.BestFitness, r.Elitism,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(TableHeader), len(records)+1)
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSeries writes one (test_id, elitism, generation, fitness) row per history
// point, for plotting fitness over generations.
func ExportSeries(records []RunRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"test_id", "elitism", "generation", "fitness"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		for g, fit := range r.History {
			row := []string{
				strconv.Itoa(r.TestID),
				strconv.FormatBool(r.Elitism),
				strconv.Itoa(g),
				strconv.FormatFloat(fit, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
