package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"mint","outputs":[],"type":"function"}
]`

const factoryABI = `[
	{"constant":false,"inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"initialSupply","type":"uint256"}],"name":"createToken","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"token","type":"address"},{"indexed":false,"name":"name","type":"string"},{"indexed":false,"name":"symbol","type":"string"}],"name":"TokenCreated","type":"event"}
]`

// ERC20Config configures the RPC-backed token service.
type ERC20Config struct {
	RPCURL         string
	OperatorKeyHex string // treasury key used to sign mint/transfer/deploy txs
	FactoryAddress string // community token factory contract
	ChainID        int64
	CallTimeout    time.Duration
}

type erc20Client struct {
	client    *ethclient.Client
	erc20     abi.ABI
	factory   abi.ABI
	factoryAt common.Address
	key       *ecdsa.PrivateKey
	chainID   *big.Int
	timeout   time.Duration
}

// NewERC20Client dials the provider and prepares the operator transactor.
// User wallets never sign through this client; only the treasury key does.
func NewERC20Client(cfg ERC20Config) (TokenService, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc provider: %w", err)
	}

	parsedERC20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	parsedFactory, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, err
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}

	timeout := cfg.CallTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &erc20Client{
		client:    client,
		erc20:     parsedERC20,
		factory:   parsedFactory,
		factoryAt: common.HexToAddress(cfg.FactoryAddress),
		key:       key,
		chainID:   big.NewInt(cfg.ChainID),
		timeout:   timeout,
	}, nil
}

func (c *erc20Client) BalanceOf(ctx context.Context, token, holder string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contract := c.boundERC20(token)
	var out []interface{}
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(holder))
	if err != nil {
		return nil, fmt.Errorf("%w: balanceOf %s: %v", apperror.ErrExternalUnavailable, token, err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf %s: unexpected return type", apperror.ErrExternalUnavailable, token)
	}
	return balance, nil
}

func (c *erc20Client) Mint(ctx context.Context, token, to string, amount *big.Int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return "", err
	}

	tx, err := c.boundERC20(token).Transact(opts, "mint", common.HexToAddress(to), amount)
	if err != nil {
		return "", fmt.Errorf("%w: mint on %s: %v", apperror.ErrExternalUnavailable, token, err)
	}
	return tx.Hash().Hex(), nil
}

func (c *erc20Client) Transfer(ctx context.Context, token, to string, amount *big.Int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return "", err
	}

	tx, err := c.boundERC20(token).Transact(opts, "transfer", common.HexToAddress(to), amount)
	if err != nil {
		return "", fmt.Errorf("%w: transfer on %s: %v", apperror.ErrExternalUnavailable, token, err)
	}
	return tx.Hash().Hex(), nil
}

func (c *erc20Client) DeployToken(ctx context.Context, name, symbol string, initialSupply *big.Int) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return "", "", err
	}

	contract := bind.NewBoundContract(c.factoryAt, c.factory, c.client, c.client, c.client)
	tx, err := contract.Transact(opts, "createToken", name, symbol, initialSupply)
	if err != nil {
		return "", "", fmt.Errorf("%w: createToken %s: %v", apperror.ErrExternalUnavailable, symbol, err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return "", "", fmt.Errorf("%w: waiting for token deployment: %v", apperror.ErrExternalUnavailable, err)
	}

	// The factory emits TokenCreated(address indexed token, ...); the new
	// contract address rides in the first indexed topic.
	eventID := c.factory.Events["TokenCreated"].ID
	for _, lg := range receipt.Logs {
		if len(lg.Topics) >= 2 && lg.Topics[0] == eventID {
			return common.HexToAddress(lg.Topics[1].Hex()).Hex(), tx.Hash().Hex(), nil
		}
	}
	return "", "", fmt.Errorf("%w: token deployment receipt missing TokenCreated event", apperror.ErrExternalUnavailable)
}

func (c *erc20Client) boundERC20(token string) *bind.BoundContract {
	return bind.NewBoundContract(common.HexToAddress(token), c.erc20, c.client, c.client, c.client)
}

func (c *erc20Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: building transactor: %v", apperror.ErrExternalUnavailable, err)
	}
	opts.Context = ctx
	return opts, nil
}
