// internal/service/importer/rowmap.go
package importer

import (
	"strings"

	"arrears-service/internal/domain/customer"
	"arrears-service/internal/pkg/spreadsheet"
)

// Candidate is one spreadsheet row mapped onto the canonical customer shape.
type Candidate struct {
	AccountNumber    string  `json:"account_number"`
	Name             string  `json:"name"`
	ContactNumber    string  `json:"contact_number"`
	Region           string  `json:"region"`
	RTOM             string  `json:"rtom"`
	ProductLabel     string  `json:"product_label"`
	Medium           string  `json:"medium"`
	LatestBillAmount float64 `json:"latest_bill_amount"`
	NewArrears       float64 `json:"new_arrears"`
	AmountOverdue    string  `json:"amount_overdue"`
	DaysOverdue      string  `json:"days_overdue"`
	CreditScore      float64 `json:"credit_score"`
	CreditClassName  string  `json:"credit_class_name"`
}

// Uploads arrive with every imaginable header spelling. Each canonical field
// has an ordered alias list; the first alias present in the header row wins.
// Aliases are matched on the normalized form (lowercase, alphanumerics only),
// so "Account Number", "accountNumber" and "ACCOUNT_NUM" are all the same key.
var fieldAliases = map[string][]string{
	"accountNumber":    {"accountnumber", "accountnum", "accountno", "accno", "account"},
	"name":             {"customername", "name", "fullname", "accountname"},
	"contactNumber":    {"contactnumber", "contactno", "phonenumber", "phone", "mobile", "mobilenumber"},
	"region":           {"region"},
	"rtom":             {"rtom", "rtomarea", "rtomcode"},
	"productLabel":     {"productlabel", "product", "producttype"},
	"medium":           {"medium"},
	"latestBillAmount": {"latestbillamount", "billamount", "lastbillamount"},
	"newArrears":       {"newarrears", "arrears", "arrearsamount", "currentarrears"},
	"amountOverdue":    {"amountoverdue", "overdueamount", "totaloverdue"},
	"daysOverdue":      {"daysoverdue", "overduedays", "agedays"},
	"creditScore":      {"creditscore", "score"},
	"creditClassName":  {"creditclassname", "creditclass"},
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerIndex maps every normalized header to its column. The first
// occurrence of a duplicate header wins.
func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// columnFor resolves a canonical field to its column index, or -1.
func columnFor(idx map[string]int, field string) int {
	for _, alias := range fieldAliases[field] {
		if col, ok := idx[alias]; ok {
			return col
		}
	}
	return -1
}

// Mapper resolves canonical fields against one table's header row. Build it
// once per upload; alias resolution is then O(1) per cell.
type Mapper struct {
	table *spreadsheet.Table
	idx   map[string]int
}

func NewMapper(t *spreadsheet.Table) *Mapper {
	return &Mapper{table: t, idx: headerIndex(t.Headers)}
}

// HasArrearsColumn reports whether the upload carries an arrears-override
// column at all; mark-paid treats its absence as full settlement.
func (m *Mapper) HasArrearsColumn() bool {
	return columnFor(m.idx, "newArrears") >= 0
}

// MapRow maps one data row onto the canonical field set. Missing or
// malformed numerics fall back to 0, missing strings to "".
func (m *Mapper) MapRow(row []string) Candidate {
	str := func(field string) string {
		return m.table.Value(row, columnFor(m.idx, field))
	}
	num := func(field string) float64 {
		return customer.ParseAmount(str(field))
	}

	return Candidate{
		AccountNumber:    str("accountNumber"),
		Name:             str("name"),
		ContactNumber:    str("contactNumber"),
		Region:           str("region"),
		RTOM:             str("rtom"),
		ProductLabel:     str("productLabel"),
		Medium:           str("medium"),
		LatestBillAmount: num("latestBillAmount"),
		NewArrears:       num("newArrears"),
		AmountOverdue:    str("amountOverdue"),
		DaysOverdue:      str("daysOverdue"),
		CreditScore:      num("creditScore"),
		CreditClassName:  str("creditClassName"),
	}
}

// ValidateForImport requires the three mandatory identity fields; rows that
// fail are skipped, never fatal.
func ValidateForImport(c *Candidate) bool {
	return strings.TrimSpace(c.AccountNumber) != "" &&
		strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.ContactNumber) != ""
}
