package payroll

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Loader turns a payroll CSV export into a Dataset.
type Loader struct {
	// Now anchors age derivation from date of birth. Defaults to time.Now.
	Now func() time.Time
}

// NewLoader creates a loader using the wall clock.
func NewLoader() *Loader {
	return &Loader{Now: time.Now}
}

// LoadFile opens and loads a CSV file from disk.
func (l *Loader) LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payroll file: %w", err)
	}
	defer f.Close()

	return l.Load(f)
}

// Load reads a CSV payroll table. Unknown headers are ignored, malformed cells are defaulted and
// counted in Dataset.Fallbacks, and rows with the wrong number of cells are padded or truncated
// with a warning. Only an unreadable or header-less input is an error; schema requirements are
// enforced by the consumers through Dataset.Require.
func (l *Loader) Load(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payroll input: %w", err)
	}

	data, enc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	index := make(map[Column]int, len(header))
	for i, h := range header {
		col, ok := ResolveHeader(h)
		if !ok {
			slog.Debug("ignoring unrecognised payroll column", "header", h)
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
	}

	ds := NewDataset()
	ds.Encoding = enc
	for col := range index {
		ds.Columns[col] = true
	}

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	seen := make(map[string]int)
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			ds.warn(rowNum, fmt.Sprintf("parse error: %v", err))
			continue
		}

		if len(row) != len(header) {
			ds.warn(rowNum, fmt.Sprintf("row has %d columns, expected %d", len(row), len(header)))
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		rec := l.buildRecord(ds, index, row, rowNum, now)
		if first, dup := seen[rec.EmployeeID]; dup {
			ds.warn(rowNum, fmt.Sprintf("duplicate employee id %q (first seen on row %d)", rec.EmployeeID, first))
		} else {
			seen[rec.EmployeeID] = rowNum
		}
		ds.Records = append(ds.Records, rec)
	}

	slog.Info("payroll dataset loaded",
		"records", len(ds.Records),
		"columns", len(ds.Columns),
		"warnings", len(ds.Warnings),
		"encoding", enc)

	return ds, nil
}

func (l *Loader) buildRecord(ds *Dataset, index map[Column]int, row []string, rowNum int, now time.Time) Record {
	cell := func(col Column) (string, bool) {
		i, ok := index[col]
		if !ok {
			return "", false
		}
		return row[i], true
	}

	text := func(col Column, fallback string) string {
		raw, present := cell(col)
		v, ok := textOr(raw, fallback)
		if present && !ok {
			ds.Fallbacks[col]++
		}
		return v
	}

	amount := func(col Column) decimal.Decimal {
		raw, present := cell(col)
		if !present {
			return decimal.Zero
		}
		v, ok := parseAmount(raw)
		if !ok {
			ds.Fallbacks[col]++
			slog.Debug("defaulting unparseable amount", "row", rowNum, "column", col, "value", raw)
		}
		return v
	}

	rec := Record{
		Row:              rowNum,
		EmployeeID:       text(ColEmployeeID, ""),
		NationalID:       text(ColNationalID, NotAvailable),
		TaxPIN:           text(ColTaxPIN, NotAvailable),
		FullName:         text(ColFullName, Unknown),
		DateOfBirth:      text(ColDateOfBirth, ""),
		JobGroup:         text(ColJobGroup, Unknown),
		Department:       text(ColDepartment, Unknown),
		Ministry:         text(ColMinistry, Unknown),
		EmploymentStatus: text(ColEmploymentStatus, Unknown),
		FraudType:        text(ColFraudType, NoFraudType),
		BankAccount:      text(ColBankAccount, NotAvailable),
		BankName:         text(ColBankName, NotAvailable),
		DeviceID:         text(ColDeviceID, NotAvailable),

		BasicSalary:       amount(ColBasicSalary),
		HouseAllowance:    amount(ColHouseAllowance),
		CommuterAllowance: amount(ColCommuterAllowance),
		HardshipAllowance: amount(ColHardshipAllowance),
		SpecialAllowance:  amount(ColSpecialAllowance),
		GrossSalary:       amount(ColGrossSalary),
	}

	if rec.EmployeeID == "" {
		rec.EmployeeID = fmt.Sprintf("row-%d", rowNum)
		if ds.Columns[ColEmployeeID] {
			ds.warn(rowNum, "missing employee id; using "+rec.EmployeeID)
		}
	}

	if raw, ok := cell(ColAge); ok {
		if age, ok := parseAge(raw); ok {
			rec.Age, rec.HasAge = age, true
		} else {
			ds.Fallbacks[ColAge]++
		}
	}
	if !rec.HasAge && rec.DateOfBirth != "" {
		rec.Age, rec.HasAge = ageFromBirthDate(rec.DateOfBirth, now)
	}

	return rec
}

func (d *Dataset) warn(row int, msg string) {
	d.Warnings = append(d.Warnings, Warning{Row: row, Message: msg})
}
