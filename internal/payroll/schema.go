package payroll

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Column is the canonical name of a payroll input column.
type Column string

const (
	ColEmployeeID        Column = "employee_id"
	ColNationalID        Column = "national_id"
	ColTaxPIN            Column = "tax_pin"
	ColFullName          Column = "full_name"
	ColDateOfBirth       Column = "date_of_birth"
	ColAge               Column = "age"
	ColJobGroup          Column = "job_group"
	ColDepartment        Column = "department"
	ColMinistry          Column = "ministry"
	ColEmploymentStatus  Column = "employment_status"
	ColBasicSalary       Column = "basic_salary"
	ColHouseAllowance    Column = "house_allowance"
	ColCommuterAllowance Column = "commuter_allowance"
	ColHardshipAllowance Column = "hardship_allowance"
	ColSpecialAllowance  Column = "special_allowance"
	ColGrossSalary       Column = "gross_salary"
	ColBankAccount       Column = "bank_account"
	ColBankName          Column = "bank_name"
	ColDeviceID          Column = "device_id"
	ColFraudType         Column = "fraud_type"
)

// AllColumns lists every canonical column in report order.
var AllColumns = []Column{
	ColEmployeeID, ColNationalID, ColTaxPIN, ColFullName, ColDateOfBirth, ColAge,
	ColJobGroup, ColDepartment, ColMinistry, ColEmploymentStatus,
	ColBasicSalary, ColHouseAllowance, ColCommuterAllowance, ColHardshipAllowance, ColSpecialAllowance, ColGrossSalary,
	ColBankAccount, ColBankName, ColDeviceID, ColFraudType,
}

// GraphColumns are the columns the relationship graph cannot be built without.
var GraphColumns = []Column{ColEmployeeID, ColBankAccount, ColDeviceID}

// headerAliases maps a normalized header (see normalizeHeader) to its canonical column.
var headerAliases = map[string]Column{
	"employeeid":        ColEmployeeID,
	"empid":             ColEmployeeID,
	"staffid":           ColEmployeeID,
	"staffno":           ColEmployeeID,
	"personalnumber":    ColEmployeeID,
	"nationalid":        ColNationalID,
	"nationalidnumber":  ColNationalID,
	"idnumber":          ColNationalID,
	"idno":              ColNationalID,
	"krapin":            ColTaxPIN,
	"taxpin":            ColTaxPIN,
	"pin":               ColTaxPIN,
	"tin":               ColTaxPIN,
	"fullname":          ColFullName,
	"name":              ColFullName,
	"employeename":      ColFullName,
	"dateofbirth":       ColDateOfBirth,
	"dob":               ColDateOfBirth,
	"birthdate":         ColDateOfBirth,
	"age":               ColAge,
	"jobgroup":          ColJobGroup,
	"jobgrade":          ColJobGroup,
	"grade":             ColJobGroup,
	"department":        ColDepartment,
	"dept":              ColDepartment,
	"ministry":          ColMinistry,
	"mda":               ColMinistry,
	"organisation":      ColMinistry,
	"organization":      ColMinistry,
	"employmentstatus":  ColEmploymentStatus,
	"status":            ColEmploymentStatus,
	"basicsalary":       ColBasicSalary,
	"basicpay":          ColBasicSalary,
	"basic":             ColBasicSalary,
	"houseallowance":    ColHouseAllowance,
	"commuterallowance": ColCommuterAllowance,
	"hardshipallowance": ColHardshipAllowance,
	"specialallowance":  ColSpecialAllowance,
	"grosssalary":       ColGrossSalary,
	"grosspay":          ColGrossSalary,
	"gross":             ColGrossSalary,
	"bankaccount":       ColBankAccount,
	"bankaccountno":     ColBankAccount,
	"bankaccountnumber": ColBankAccount,
	"accountnumber":     ColBankAccount,
	"bankname":          ColBankName,
	"bank":              ColBankName,
	"deviceid":          ColDeviceID,
	"device":            ColDeviceID,
	"attendancedevice":  ColDeviceID,
	"fraudtype":         ColFraudType,
}

// ResolveHeader maps a raw header cell to its canonical column.
func ResolveHeader(raw string) (Column, bool) {
	col, ok := headerAliases[normalizeHeader(raw)]
	return col, ok
}

// normalizeHeader keeps only the lowercased letters and digits of a header,
// so "Employee_ID", "EmployeeID" and " employee id " all collapse to "employeeid".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	var sb strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// NormalizeName folds a name so the same person spelled with different case or accents compares equal.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		sb.WriteRune(r)
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}
