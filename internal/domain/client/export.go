package client

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"ID", "Nombre", "Email", "Teléfono", "Estado", "Tags", "Creado", "Última actualización"}

func exportRow(c Client) []string {
	return []string{
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		string(c.Status),
		strings.Join(c.Tags, "; "),
		c.CreatedAt.Format("02/01/2006"),
		c.UpdatedAt.Format("02/01/2006"),
	}
}

// WriteCSV writes every cell quoted, matching the spreadsheet imports agents use.
func WriteCSV(w io.Writer, clients []Client) error {
	rows := [][]string{exportHeaders}
	for _, c := range clients {
		rows = append(rows, exportRow(c))
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(cells, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ParseCSV reads back a WriteCSV export. Used to verify exports and to let
// agents re-import the plain fields.
func ParseCSV(r io.Reader) ([][]string, error) {
	return csv.NewReader(r).ReadAll()
}

func WriteXLSX(w io.Writer, clients []Client) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Clientes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]string{exportHeaders}
	for _, c := range clients {
		rows = append(rows, exportRow(c))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
