// Package export writes spreadsheets of the school's records.
package export

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/espanolfacil/academy/core/identity"
)

const studentsSheet = "Students"

var studentsHeader = []string{
	"Code", "First name", "Last name", "Email", "Phone", "City",
	"Date of birth", "Profession", "Registered on", "Status",
}

// StudentRows flattens students into spreadsheet rows, in studentsHeader order.
func StudentRows(students []identity.Identity) [][]string {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			s.Code, s.FirstName, s.LastName, s.Email, s.Phone, s.City,
			s.DateOfBirth.String(), s.Profession, s.DateInscription.String(), string(s.Status),
		})
	}
	return rows
}

// NewStudentsWorkbook builds a single-sheet workbook with a bold, filterable header row.
func NewStudentsWorkbook(students []identity.Identity) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", studentsSheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "new style")
	}
	for col, h := range studentsHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(studentsSheet, cell, h); err != nil {
			return nil, errors.Wrapf(err, "set cell %s", cell)
		}
	}
	end, _ := excelize.CoordinatesToCellName(len(studentsHeader), 1)
	_ = f.SetCellStyle(studentsSheet, "A1", end, bold)
	_ = f.AutoFilter(studentsSheet, "A1:"+end, nil)

	rows := StudentRows(students)
	for r, row := range rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(studentsSheet, cell, val); err != nil {
				return nil, errors.Wrapf(err, "set cell %s", cell)
			}
		}
	}

	// width from the header and the first rows
	for c := range studentsHeader {
		width := len(studentsHeader[c])
		for r := 0; r < len(rows) && r < 50; r++ {
			if l := len(rows[r][c]); l > width {
				width = l
			}
		}
		w := float64(width) * 0.9
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(studentsSheet, col, col, w)
	}
	return f, nil
}

// WriteStudents writes the students workbook to w.
func WriteStudents(w io.Writer, students []identity.Identity) error {
	f, err := NewStudentsWorkbook(students)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// Filename returns the download name of an export made on day (YYYY-MM-DD).
func Filename(day string) string {
	return fmt.Sprintf("students-%s.xlsx", day)
}
