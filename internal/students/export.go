package students

import (
	"strconv"
	"strings"
)

const (
	ExportFileName    = "alunos.csv"
	ExportContentType = "text/csv"

	csvHeader = "Nome,Matrícula,Mensalidade,Status Pagamento"
)

// Export is a rendered CSV document ready for download.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// EncodeCSV renders the export rows. Text fields are wrapped in double quotes
// without escaping; the fee is the plain decimal number.
func EncodeCSV(items []Student) []byte {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, csvHeader)
	for _, s := range items {
		fee := s.MonthlyFee
		if fee == 0 {
			// drops the sign of -0
			fee = 0
		}
		lines = append(lines, strings.Join([]string{
			quote(s.Name),
			quote(s.RegistrationCode),
			strconv.FormatFloat(fee, 'f', -1, 64),
			quote(string(s.PaymentStatus)),
		}, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

func quote(s string) string { return `"` + s + `"` }
