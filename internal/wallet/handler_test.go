package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	Repository

	wallet  *Wallet
	err     error
	entries []Transaction
}

func (f *fakeLedger) GetByOwner(ctx context.Context, ownerID int) (*Wallet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wallet, nil
}

func (f *fakeLedger) Deposit(ctx context.Context, ownerID int, amountCents int64, description string) (*Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry := Transaction{WalletID: f.wallet.ID, AmountCents: amountCents, Kind: KindDeposit}
	f.entries = append(f.entries, entry)
	f.wallet.BalanceCents += amountCents
	return &entry, nil
}

func performRequest(h gin.HandlerFunc, userID interface{}, method, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/wallet", strings.NewReader(body))
	if userID != nil {
		c.Set("user_id", userID)
	}
	h(c)
	return w
}

func TestGetBalance(t *testing.T) {
	h := NewHandlerWithRepository(&fakeLedger{wallet: &Wallet{ID: 7, OwnerID: 2, BalanceCents: 1500}})

	w := performRequest(h.GetBalance, 2, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance_cents":1500`)
}

func TestGetBalance_Unauthenticated(t *testing.T) {
	h := NewHandlerWithRepository(&fakeLedger{})

	w := performRequest(h.GetBalance, nil, http.MethodGet, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBalance_WalletMissing(t *testing.T) {
	h := NewHandlerWithRepository(&fakeLedger{err: ErrWalletNotFound})

	w := performRequest(h.GetBalance, 2, http.MethodGet, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTopUp(t *testing.T) {
	ledger := &fakeLedger{wallet: &Wallet{ID: 7, OwnerID: 2, BalanceCents: 0}}
	h := NewHandlerWithRepository(ledger)

	w := performRequest(h.TopUp, 2, http.MethodPost, `{"amount_cents": 5000}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ledger.entries, 1)
	assert.Equal(t, int64(5000), ledger.entries[0].AmountCents)
}

func TestTopUp_RejectsBadPayload(t *testing.T) {
	h := NewHandlerWithRepository(&fakeLedger{wallet: &Wallet{}})

	w := performRequest(h.TopUp, 2, http.MethodPost, `{"amount_cents": -5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
