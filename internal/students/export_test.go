package students

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCSV(t *testing.T) {
	tests := []struct {
		name  string
		items []Student
		want  string
	}{
		{
			name: "empty list is header only",
			want: "Nome,Matrícula,Mensalidade,Status Pagamento",
		},
		{
			name:  "fractional fee keeps decimals",
			items: []Student{{Name: "Ana Costa", RegistrationCode: "MAT004", MonthlyFee: 850.5, PaymentStatus: StatusPending}},
			want:  "Nome,Matrícula,Mensalidade,Status Pagamento\n\"Ana Costa\",\"MAT004\",850.5,\"Pendente\"",
		},
		{
			name:  "quotes are not escaped",
			items: []Student{{Name: `Ana "Aninha"`, RegistrationCode: "M1", MonthlyFee: 0, PaymentStatus: StatusPaid}},
			want:  "Nome,Matrícula,Mensalidade,Status Pagamento\n\"Ana \"Aninha\"\",\"M1\",0,\"Pago\"",
		},
		{
			name:  "negative zero fee is written as 0",
			items: []Student{{Name: "Ana", RegistrationCode: "M1", MonthlyFee: math.Copysign(0, -1), PaymentStatus: StatusPending}},
			want:  "Nome,Matrícula,Mensalidade,Status Pagamento\n\"Ana\",\"M1\",0,\"Pendente\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(EncodeCSV(tt.items)))
		})
	}
}
