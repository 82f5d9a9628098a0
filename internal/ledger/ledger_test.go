package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/credential"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(balance string) *Ledger {
	return New(models.NewAccount(d(balance)))
}

func kinds(l *Ledger) []models.TransactionKind {
	var out []models.TransactionKind
	for _, tx := range l.Transactions() {
		out = append(out, tx.Kind)
	}
	return out
}

func TestCheckBalance_IsAudited(t *testing.T) {
	l := newLedger("1000")
	got := l.CheckBalance()

	assert.True(t, got.Equal(d("1000")))
	assert.Equal(t, []models.TransactionKind{models.KindCheckBalance}, kinds(l))
	assert.False(t, l.Transactions()[0].Amount.Valid)
}

func TestDeposit(t *testing.T) {
	l := newLedger("1000")
	require.NoError(t, l.Deposit(d("500")))
	assert.True(t, l.Balance().Equal(d("1500")))

	txs := l.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, models.KindDeposit, txs[0].Kind)
	assert.True(t, txs[0].Amount.Decimal.Equal(d("500")))
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	for _, amt := range []string{"0", "-1", "-0.01"} {
		l := newLedger("100")
		require.ErrorIs(t, l.Deposit(d(amt)), common.ErrInvalidAmount, amt)
		assert.True(t, l.Balance().Equal(d("100")))
		assert.Empty(t, l.Transactions())
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		amount  string
		wantErr error
		want    string
	}{
		{"partial", "100", "30", nil, "70"},
		{"exact balance", "100", "100", nil, "0"},
		{"fractional", "10.50", "0.25", nil, "10.25"},
		{"zero", "100", "0", common.ErrInvalidAmount, "100"},
		{"negative", "100", "-5", common.ErrInvalidAmount, "100"},
		{"overdraw", "100", "100.01", common.ErrInsufficientFunds, "100"},
		{"empty account", "0", "1", common.ErrInsufficientFunds, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger(tt.balance)
			err := l.Withdraw(d(tt.amount))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, common.ErrInvalidAmount)
				assert.Empty(t, l.Transactions())
			} else {
				require.NoError(t, err)
				assert.Equal(t, []models.TransactionKind{models.KindWithdraw}, kinds(l))
			}
			assert.True(t, l.Balance().Equal(d(tt.want)), "balance=%s want=%s", l.Balance(), tt.want)
		})
	}
}

func TestBalanceNeverNegative_RandomSequence(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	l := newLedger("1000")
	succeeded := 0

	for i := 0; i < 2000; i++ {
		amt := decimal.NewFromInt(int64(r.Intn(1500) - 100))
		var err error
		if r.Intn(2) == 0 {
			err = l.Deposit(amt)
		} else {
			before := l.Balance()
			err = l.Withdraw(amt)
			shouldSucceed := amt.IsPositive() && amt.LessThanOrEqual(before)
			assert.Equal(t, shouldSucceed, err == nil, "withdraw %s from %s", amt, before)
		}
		if err == nil {
			succeeded++
		}
		require.False(t, l.Balance().IsNegative(), "balance went negative at step %d", i)
	}
	assert.Len(t, l.Transactions(), succeeded)
}

func TestChangeCredential(t *testing.T) {
	store := credential.NewStore(cryptox.NewBcryptHasher(bcrypt.MinCost), "")
	require.NoError(t, store.Set([]byte("1234"), []byte("1234")))
	l := newLedger("1000")

	require.ErrorIs(t, l.ChangeCredential(store, []byte("1"), []byte("2")), common.ErrMismatch)
	assert.Empty(t, l.Transactions())
	assert.True(t, store.Verify([]byte("1234")))

	require.NoError(t, l.ChangeCredential(store, []byte("9876"), []byte("9876")))
	assert.Equal(t, []models.TransactionKind{models.KindChangeCredential}, kinds(l))
	assert.False(t, l.Transactions()[0].Amount.Valid)
	assert.True(t, store.Verify([]byte("9876")))
}

func TestLogOrderMatchesOperations(t *testing.T) {
	l := newLedger("1000")
	l.CheckBalance()
	require.NoError(t, l.Deposit(d("500")))
	require.Error(t, l.Withdraw(d("2000")))
	require.NoError(t, l.Withdraw(d("200")))
	l.CheckBalance()

	assert.Equal(t, []models.TransactionKind{
		models.KindCheckBalance,
		models.KindDeposit,
		models.KindWithdraw,
		models.KindCheckBalance,
	}, kinds(l))
}

func TestClone_IsIndependent(t *testing.T) {
	l := newLedger("100")
	require.NoError(t, l.Deposit(d("1")))

	staged := l.Clone()
	require.NoError(t, staged.Withdraw(d("50")))

	assert.True(t, l.Balance().Equal(d("101")))
	assert.Len(t, l.Transactions(), 1)
	assert.True(t, staged.Balance().Equal(d("51")))
	assert.Len(t, staged.Transactions(), 2)
}

func TestTransactions_ReturnsCopy(t *testing.T) {
	l := newLedger("100")
	l.CheckBalance()
	txs := l.Transactions()
	txs[0].Kind = models.KindDeposit
	assert.Equal(t, models.KindCheckBalance, l.Transactions()[0].Kind)
}

func TestSnapshotAndRestore(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l := New(models.NewAccount(d("1000")), WithClock(func() time.Time { return at }))
	require.NoError(t, l.Deposit(d("5")))

	snap := l.Snapshot("hash")
	assert.Equal(t, "hash", snap.CredentialHash)
	assert.True(t, snap.Balance.Equal(d("1005")))
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, at, snap.Transactions[0].At)

	restored := New(snap)
	assert.True(t, restored.Snapshot("hash").Equal(snap))
}
