package wallet

// eth.go — on-chain purchase executor.
//
// Buys are plain value transfers to the asset contract, signed locally
// with the configured private key. The spending cap is re-evaluated here
// against the live balance even when the orchestrator already screened
// the candidate: a purchase earlier in the same process can have changed
// the balance between selection and execution.

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

// nativeDecimals is the smallest-unit exponent of the chain currency.
const nativeDecimals = 18

// Backend is the subset of the RPC client the gateway needs. Satisfied
// by *ethclient.Client; narrow so the spend guard is testable without a
// node.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Config holds the gas and spending policy of the gateway.
type Config struct {
	ChainID int64
	// GasLimit is the conservative fixed limit, also the fallback when
	// dynamic estimation fails.
	GasLimit     uint64
	GasPriceGwei int64
	// EstimateGas enables dynamic gas estimation per transaction.
	EstimateGas bool
	// SpendLimitFraction is the fraction of the live balance a single
	// purchase may commit.
	SpendLimitFraction decimal.Decimal
}

// Gateway implements ports.Wallet against an Ethereum RPC backend.
type Gateway struct {
	backend Backend
	key     *ecdsa.PrivateKey
	address common.Address
	cfg     Config
}

// New creates a Gateway connected to the given RPC endpoint.
// privateKeyHex may carry a 0x prefix.
func New(rpcURL, privateKeyHex string, cfg Config) (*Gateway, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("wallet.New: invalid private key: %w", err)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("wallet.New: dial rpc %s: %w", rpcURL, err)
	}

	return NewWithBackend(client, key, cfg), nil
}

// NewWithBackend creates a Gateway over an existing backend. Used by New
// and by tests.
func NewWithBackend(backend Backend, key *ecdsa.PrivateKey, cfg Config) *Gateway {
	return &Gateway{
		backend: backend,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		cfg:     cfg,
	}
}

// Address returns the wallet address derived from the private key.
func (g *Gateway) Address() common.Address {
	return g.address
}

// Balance returns the current balance in native units.
func (g *Gateway) Balance(ctx context.Context) (decimal.Decimal, error) {
	wei, err := g.backend.BalanceAt(ctx, g.address, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet.Balance: %w", err)
	}
	return decimal.NewFromBigInt(wei, -nativeDecimals), nil
}

// Buy signs and broadcasts a value transfer of price to the asset
// contract. The spend guard runs before any signing: when priceWei
// exceeds balance × SpendLimitFraction the call returns
// domain.ErrSpendLimitExceeded without touching the key or the network.
// Signing and broadcast failures wrap domain.ErrSubmission.
func (g *Gateway) Buy(ctx context.Context, contract, tokenID string, price decimal.Decimal) (domain.TxResult, error) {
	balanceWei, err := g.backend.BalanceAt(ctx, g.address, nil)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("wallet.Buy: read balance: %v: %w", err, domain.ErrSubmission)
	}

	priceWei := price.Shift(nativeDecimals).BigInt()
	capWei := decimal.NewFromBigInt(balanceWei, 0).Mul(g.cfg.SpendLimitFraction)
	if decimal.NewFromBigInt(priceWei, 0).GreaterThan(capWei) {
		return domain.TxResult{}, fmt.Errorf("wallet.Buy: price %s exceeds spending cap %s: %w",
			price, capWei.Shift(-nativeDecimals), domain.ErrSpendLimitExceeded)
	}

	nonce, err := g.backend.PendingNonceAt(ctx, g.address)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("wallet.Buy: nonce: %v: %w", err, domain.ErrSubmission)
	}

	to := common.HexToAddress(contract)
	gasPrice := new(big.Int).Mul(big.NewInt(g.cfg.GasPriceGwei), big.NewInt(1e9))
	gasLimit := g.gasLimit(ctx, to, priceWei, gasPrice)

	tx := types.NewTransaction(nonce, to, priceWei, gasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(g.cfg.ChainID)), g.key)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("wallet.Buy: sign tx: %v: %w", err, domain.ErrSubmission)
	}

	if err := g.backend.SendTransaction(ctx, signedTx); err != nil {
		return domain.TxResult{}, fmt.Errorf("wallet.Buy: broadcast: %v: %w", err, domain.ErrSubmission)
	}

	slog.Info("buy executed",
		"token_id", tokenID,
		"contract", contract,
		"price", price,
		"tx_hash", signedTx.Hash().Hex(),
	)
	return domain.TxResult{Hash: signedTx.Hash().Hex()}, nil
}

// gasLimit estimates gas for the transfer, falling back to the
// conservative fixed limit when estimation fails or is disabled.
func (g *Gateway) gasLimit(ctx context.Context, to common.Address, value, gasPrice *big.Int) uint64 {
	if !g.cfg.EstimateGas {
		return g.cfg.GasLimit
	}
	estimate, err := g.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     g.address,
		To:       &to,
		Value:    value,
		GasPrice: gasPrice,
	})
	if err != nil {
		slog.Warn("gas estimate failed, using fixed limit", "err", err, "limit", g.cfg.GasLimit)
		return g.cfg.GasLimit
	}
	// 20% buffer over the estimate
	return estimate * 12 / 10
}
