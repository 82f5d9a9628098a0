package snapshot

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T) string {
	t.Helper()
	h, err := cryptox.NewBcryptHasher(bcrypt.MinCost).Hash([]byte("1234"))
	require.NoError(t, err)
	return h
}

func tx(kind models.TransactionKind, amount string, at time.Time) models.Transaction {
	t := models.Transaction{ID: uuid.New(), Kind: kind, At: at}
	if amount != "" {
		t.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return t
}

func sampleAccount(t *testing.T) models.Account {
	t.Helper()
	at := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	return models.Account{
		Balance:        decimal.RequireFromString("1300.25"),
		CredentialHash: testHash(t),
		Transactions: []models.Transaction{
			tx(models.KindCheckBalance, "", at),
			tx(models.KindDeposit, "500.25", at.Add(time.Minute)),
			tx(models.KindWithdraw, "200", at.Add(2*time.Minute)),
			tx(models.KindChangeCredential, "", at.Add(3*time.Minute)),
		},
	}
}

func requireSameAccount(t *testing.T, want models.Account, got *models.Account) {
	t.Helper()
	require.NotNil(t, got)
	require.True(t, want.Equal(*got), "want %+v\ngot  %+v", want, *got)
}
