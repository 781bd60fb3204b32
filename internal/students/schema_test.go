package students

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Validate(t *testing.T) {
	schema := NewSchema()

	t.Run("valid input is trimmed", func(t *testing.T) {
		got, err := schema.Validate(Input{Name: " Ana ", RegistrationCode: " MAT004 ", MonthlyFee: 0})
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, "MAT004", got.RegistrationCode)
	})

	t.Run("all fields invalid", func(t *testing.T) {
		_, err := schema.Validate(Input{MonthlyFee: -10})
		require.Error(t, err)
		verr, ok := err.(*ValidationError)
		require.True(t, ok)
		assert.Equal(t, map[string]string{
			"nome":        "Nome é obrigatório",
			"matricula":   "Matrícula é obrigatória",
			"mensalidade": "Mensalidade deve ser maior que 0",
		}, verr.Fields)
		assert.Equal(t, "Nome é obrigatório", verr.First())
	})
}

func TestNewSchema_RegistrationErrors(t *testing.T) {
	assert.NotPanics(t, func() { NewSchema() })

	_, err := newSchema(map[string]string{"required.nome": "Nome {obrigatório"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register required translation")
}
