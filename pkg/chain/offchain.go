package chain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
)

// offchain is the default TokenService when no RPC provider is configured.
// Balances live solely in the database ledger; mint/transfer calls succeed
// immediately with a synthesized reference id, and token "deployments"
// produce a deterministic-looking placeholder address.
type offchain struct {
	mu       sync.Mutex
	balances map[string]map[string]*big.Int // token -> holder -> balance
}

func NewOffchain() TokenService {
	return &offchain{balances: make(map[string]map[string]*big.Int)}
}

func (o *offchain) BalanceOf(_ context.Context, token, holder string) (*big.Int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if holders, ok := o.balances[token]; ok {
		if b, ok := holders[holder]; ok {
			return new(big.Int).Set(b), nil
		}
	}
	return big.NewInt(0), nil
}

func (o *offchain) Mint(_ context.Context, token, to string, amount *big.Int) (string, error) {
	o.credit(token, to, amount)
	return synthRef("mint"), nil
}

func (o *offchain) Transfer(_ context.Context, token, to string, amount *big.Int) (string, error) {
	o.credit(token, to, amount)
	return synthRef("transfer"), nil
}

func (o *offchain) DeployToken(_ context.Context, _, symbol string, initialSupply *big.Int) (string, string, error) {
	address := "0x" + randomHex(20)
	o.credit(address, SystemAddress, initialSupply)
	return address, synthRef("deploy"), nil
}

func (o *offchain) credit(token, holder string, amount *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	holders, ok := o.balances[token]
	if !ok {
		holders = make(map[string]*big.Int)
		o.balances[token] = holders
	}
	if _, ok := holders[holder]; !ok {
		holders[holder] = big.NewInt(0)
	}
	holders[holder].Add(holders[holder], amount)
}

func synthRef(kind string) string {
	return fmt.Sprintf("%s_%s", kind, randomHex(16))
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
