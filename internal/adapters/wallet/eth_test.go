package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// --- mock backend ---

type mockBackend struct {
	balance *big.Int

	nonceCalls    int
	estimateCalls int
	estimateGas   uint64
	estimateErr   error

	sent    []*types.Transaction
	sendErr error
}

func (m *mockBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	return m.balance, nil
}

func (m *mockBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	m.nonceCalls++
	return 7, nil
}

func (m *mockBackend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	m.estimateCalls++
	return m.estimateGas, m.estimateErr
}

func (m *mockBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	m.sent = append(m.sent, tx)
	return m.sendErr
}

// --- helpers ---

func eth(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), big.NewInt(1e18))
}

func testGateway(t *testing.T, backend Backend, cfg Config) *Gateway {
	t.Helper()
	key, err := crypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	return NewWithBackend(backend, key, cfg)
}

func testConfig() Config {
	return Config{
		ChainID:            11155111,
		GasLimit:           200_000,
		GasPriceGwei:       50,
		SpendLimitFraction: decimal.RequireFromString("0.25"),
	}
}

func TestBalance_ConvertsWeiToNativeUnits(t *testing.T) {
	backend := &mockBackend{balance: eth(10)}
	g := testGateway(t, backend, testConfig())

	balance, err := g.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10")))
}

// El guard de gasto corre ANTES de firmar: un precio por encima de
// balance × fracción devuelve ErrSpendLimitExceeded sin pedir nonce ni
// transmitir nada.
func TestBuy_SpendGuardBlocksWithoutBroadcast(t *testing.T) {
	backend := &mockBackend{balance: eth(10)} // cap = 2.5
	g := testGateway(t, backend, testConfig())

	_, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("3.0"))

	require.ErrorIs(t, err, domain.ErrSpendLimitExceeded)
	assert.Zero(t, backend.nonceCalls)
	assert.Empty(t, backend.sent)
}

func TestBuy_SignsAndBroadcastsWithinCap(t *testing.T) {
	backend := &mockBackend{balance: eth(10)}
	g := testGateway(t, backend, testConfig())

	result, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("1.0"))
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, result.Hash, tx.Hash().Hex())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, common.HexToAddress("0xc0ffee"), *tx.To())
	assert.Equal(t, eth(1), tx.Value())
	// gas fijo: estimación deshabilitada en la config por defecto
	assert.Equal(t, uint64(200_000), tx.Gas())
	assert.Equal(t, new(big.Int).Mul(big.NewInt(50), big.NewInt(1e9)), tx.GasPrice())
}

func TestBuy_GasEstimationWithBuffer(t *testing.T) {
	backend := &mockBackend{balance: eth(10), estimateGas: 100_000}
	cfg := testConfig()
	cfg.EstimateGas = true
	g := testGateway(t, backend, cfg)

	_, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("1.0"))
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	assert.Equal(t, 1, backend.estimateCalls)
	assert.Equal(t, uint64(120_000), backend.sent[0].Gas()) // +20%
}

// La estimación que falla cae al límite fijo conservador, no aborta la
// compra.
func TestBuy_GasEstimationFailureFallsBack(t *testing.T) {
	backend := &mockBackend{balance: eth(10), estimateErr: errors.New("execution reverted")}
	cfg := testConfig()
	cfg.EstimateGas = true
	g := testGateway(t, backend, cfg)

	_, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("1.0"))
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, uint64(200_000), backend.sent[0].Gas())
}

func TestBuy_BroadcastFailureWrapsSubmission(t *testing.T) {
	backend := &mockBackend{balance: eth(10), sendErr: errors.New("nonce too low")}
	g := testGateway(t, backend, testConfig())

	_, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("1.0"))

	require.ErrorIs(t, err, domain.ErrSubmission)
	assert.Contains(t, err.Error(), "nonce too low")
}

// El guard usa el balance vivo: tras una compra previa que redujo el
// balance, un precio que antes cabía puede dejar de caber.
func TestBuy_GuardUsesLiveBalance(t *testing.T) {
	backend := &mockBackend{balance: eth(10)}
	g := testGateway(t, backend, testConfig())

	_, err := g.Buy(context.Background(), "0xc0ffee", "42", decimal.RequireFromString("2.0"))
	require.NoError(t, err)

	backend.balance = eth(4) // cap ahora 1.0
	_, err = g.Buy(context.Background(), "0xc0ffee", "43", decimal.RequireFromString("2.0"))
	require.ErrorIs(t, err, domain.ErrSpendLimitExceeded)
	require.Len(t, backend.sent, 1)
}
