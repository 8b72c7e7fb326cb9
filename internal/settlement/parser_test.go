package settlement

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concilia-dev/concilia/internal/model"
)

func TestParse(t *testing.T) {
	data, err := os.ReadFile("../../testdata/getnet_liquidacion.csv")
	require.NoError(t, err)

	setts, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, setts, 4)

	first := setts[0]
	assert.Equal(t, "GTN-20250122-0001", first.ID)
	assert.Equal(t, "TERM001", first.TerminalID)
	assert.Equal(t, "VISA", first.CardType)
	assert.Equal(t, "25000", first.Amount.String())
	assert.Equal(t, "875", first.Fee.String())
	assert.Equal(t, "24125", first.NetAmount.String())
	assert.Equal(t, "AUTH0001", first.AuthCode)
	assert.Equal(t, model.SettlementApproved, first.Status)
	assert.Equal(t, "2025-01-22 14:32:05", first.Timestamp.Format("2006-01-02 15:04:05"))
}

func TestParse_Statuses(t *testing.T) {
	data, err := os.ReadFile("../../testdata/getnet_liquidacion.csv")
	require.NoError(t, err)

	setts, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	assert.Equal(t, model.SettlementDeclined, setts[2].Status)
	assert.Equal(t, model.SettlementPending, setts[3].Status)
}

func TestParse_HeaderOnly(t *testing.T) {
	setts, err := Parse(strings.NewReader("fecha,hora,terminal,tipo_tarjeta,monto,comision,liquido,codigo_autorizacion,id_transaccion,estado\n"))
	require.NoError(t, err)
	assert.Nil(t, setts)
}

func TestParse_BadTimestamp(t *testing.T) {
	csv := "fecha,hora,terminal,tipo_tarjeta,monto,comision,liquido,codigo_autorizacion,id_transaccion,estado\n" +
		"NOTADATE,14:00:00,TERM001,VISA,1000,35,965,A1,X1,aprobada\n"
	_, err := Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestParse_BadAmount(t *testing.T) {
	csv := "fecha,hora,terminal,tipo_tarjeta,monto,comision,liquido,codigo_autorizacion,id_transaccion,estado\n" +
		"2025-01-22,14:00:00,TERM001,VISA,NOPE,35,965,A1,X1,aprobada\n"
	_, err := Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestParse_UnknownStatus(t *testing.T) {
	csv := "fecha,hora,terminal,tipo_tarjeta,monto,comision,liquido,codigo_autorizacion,id_transaccion,estado\n" +
		"2025-01-22,14:00:00,TERM001,VISA,1000,35,965,A1,X1,quizas\n"
	_, err := Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown settlement status")
}
