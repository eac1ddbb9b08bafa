// Package chain wraps the on-chain token collaborators used by the reward
// ledger: an ERC-20 client reached over JSON-RPC, and an off-chain stand-in
// for deployments running without a provider.
//
// Every call that crosses the network boundary is bounded by a timeout; the
// caller treats a timeout the same as any other provider failure.
package chain

import (
	"context"
	"math/big"
)

// SystemAddress is the sentinel "from" address recorded on reward and
// challenge-completion ledger entries.
const SystemAddress = "0x0"

// TokenService is the token contract collaborator consumed by the reward
// engine and the community service. Implementations must never mutate the
// local ledger; they only talk to the token contract.
type TokenService interface {
	// BalanceOf reads the holder's on-chain balance of the given token.
	BalanceOf(ctx context.Context, token, holder string) (*big.Int, error)

	// Mint issues new tokens to the given address and returns the
	// transaction hash (or a synthesized id for off-chain mode).
	Mint(ctx context.Context, token, to string, amount *big.Int) (string, error)

	// Transfer moves tokens from the operator treasury to the given
	// address and returns the transaction hash.
	Transfer(ctx context.Context, token, to string, amount *big.Int) (string, error)

	// DeployToken provisions a new community token and returns its
	// contract address together with the deployment transaction hash.
	DeployToken(ctx context.Context, name, symbol string, initialSupply *big.Int) (address string, txHash string, err error)
}
