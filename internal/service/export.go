package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

const (
	itinerarySheet = "Itinerary"
	filtersSheet   = "Filters"
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func exportKey(id fmt.Stringer) string {
	return "itineraries/" + id.String() + ".xlsx"
}

// buildWorkbook renders the stops on one sheet and the filters used on another.
func buildWorkbook(it entity.Itinerary) (*bytes.Buffer, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), itinerarySheet); err != nil {
		return nil, fmt.Errorf("name itinerary sheet: %w", err)
	}
	header := []any{"Position", "Company", "Address", "Website", "Primary Phone"}
	if err := xl.SetSheetRow(itinerarySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write itinerary header: %w", err)
	}
	for ri, stop := range it.Stops {
		record := []any{stop.Position, stop.CompanyName, deref(stop.Address), deref(stop.Website), deref(stop.PrimaryPhone)}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := xl.SetSheetRow(itinerarySheet, cellRef, &record); err != nil {
			return nil, fmt.Errorf("write itinerary row %d: %w", ri+1, err)
		}
	}

	if _, err := xl.NewSheet(filtersSheet); err != nil {
		return nil, fmt.Errorf("add filters sheet: %w", err)
	}
	filterHeader := []any{"Filter", "Values"}
	if err := xl.SetSheetRow(filtersSheet, "A1", &filterHeader); err != nil {
		return nil, fmt.Errorf("write filters header: %w", err)
	}
	for ri, d := range entity.Dimensions {
		values := "Any"
		if set := it.Selection.Values(d); len(set) > 0 {
			values = strings.Join(set, ", ")
		}
		record := []any{dimensionTitles[d], values}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := xl.SetSheetRow(filtersSheet, cellRef, &record); err != nil {
			return nil, fmt.Errorf("write filter row %s: %w", d, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
