package payroll

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
)

const (
	// Unknown is the default for missing descriptive text (names, units, grades).
	Unknown = "Unknown"
	// NotAvailable is the default for missing identifiers.
	NotAvailable = "N/A"
	// NoFraudType is the tag applied when the dataset carries no fraud label.
	NoFraudType = "None"
)

// Record is one employee payroll row after schema validation and coercion.
type Record struct {
	Row int `json:"row"`

	EmployeeID  string `json:"employeeId"`
	NationalID  string `json:"nationalId"`
	TaxPIN      string `json:"taxPin"`
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Age         int    `json:"age,omitempty"`
	HasAge      bool   `json:"-"`

	JobGroup         string `json:"jobGroup"`
	Department       string `json:"department"`
	Ministry         string `json:"ministry"`
	EmploymentStatus string `json:"employmentStatus"`
	FraudType        string `json:"fraudType"`

	BasicSalary       decimal.Decimal `json:"basicSalary"`
	HouseAllowance    decimal.Decimal `json:"houseAllowance"`
	CommuterAllowance decimal.Decimal `json:"commuterAllowance"`
	HardshipAllowance decimal.Decimal `json:"hardshipAllowance"`
	SpecialAllowance  decimal.Decimal `json:"specialAllowance"`
	GrossSalary       decimal.Decimal `json:"grossSalary"`

	BankAccount string `json:"bankAccount"`
	BankName    string `json:"bankName"`
	DeviceID    string `json:"deviceId"`
}

// Warning is a non-fatal issue found while loading a row.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Dataset is an ingested payroll table: typed records plus what the header actually provided.
type Dataset struct {
	Records   []Record        `json:"records"`
	Columns   map[Column]bool `json:"columns"`
	Fallbacks map[Column]int  `json:"fallbacks"`
	Warnings  []Warning       `json:"warnings"`
	Encoding  string          `json:"encoding"`
}

// NewDataset returns an empty dataset exposing the given columns.
func NewDataset(columns ...Column) *Dataset {
	ds := &Dataset{
		Records:   []Record{},
		Columns:   make(map[Column]bool, len(columns)),
		Fallbacks: make(map[Column]int),
		Warnings:  []Warning{},
	}
	for _, c := range columns {
		ds.Columns[c] = true
	}
	return ds
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Has reports whether the source table carried the column. Age counts as present when a date of birth
// column could stand in for it.
func (d *Dataset) Has(col Column) bool {
	if d == nil {
		return false
	}
	if col == ColAge {
		return d.Columns[ColAge] || d.Columns[ColDateOfBirth]
	}
	return d.Columns[col]
}

// Require returns a schema error for the first absent column.
func (d *Dataset) Require(cols ...Column) error {
	for _, c := range cols {
		if !d.Has(c) {
			return apperrors.NewSchemaError(string(c))
		}
	}
	return nil
}

// Parsed returns how many rows carried a usable value for the column.
func (d *Dataset) Parsed(col Column) int {
	if !d.Has(col) {
		return 0
	}
	return d.Len() - d.Fallbacks[col]
}

// IsMissing reports whether an identifier holds one of the coercion defaults.
func IsMissing(v string) bool {
	return v == "" || v == NotAvailable || v == Unknown
}
