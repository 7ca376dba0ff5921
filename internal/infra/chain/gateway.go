package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"food-rescue-rewards/internal/config"
	"food-rescue-rewards/internal/domain/ports/adapter"
)

// Reward pool ABI - only the functions we need.
const poolABI = `[{"inputs":[{"internalType":"address","name":"contributor","type":"address"},{"internalType":"uint8","name":"subtype","type":"uint8"},{"internalType":"uint256","name":"timestamp","type":"uint256"},{"internalType":"string","name":"location","type":"string"},{"internalType":"uint256","name":"quantity","type":"uint256"},{"internalType":"string","name":"activityRef","type":"string"}],"name":"mintToPool","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// ERC-20 transfer.
const tokenABI = `[{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

// ERC-721 Transfer(address,address,uint256) topic, used to recover the
// minted token id from the receipt.
var erc721TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

const tokenDecimals = 18

var errTxReverted = errors.New("transaction reverted on chain")

var _ adapter.ChainGateway = (*EthereumGateway)(nil)

// EthereumGateway submits reward transactions signed by a single
// operator key. The nonce mutex serializes submissions per signer;
// without it two concurrent scans would race for the same nonce.
type EthereumGateway struct {
	client         *ethclient.Client
	chainID        *big.Int
	operatorKey    *ecdsa.PrivateKey
	operatorAddr   common.Address
	pool           common.Address
	token          common.Address
	poolABI        abi.ABI
	tokenABI       abi.ABI
	confirmTimeout time.Duration

	nonceMu sync.Mutex
	log     *zerolog.Logger
}

func NewEthereumGateway(cfg config.ChainConfig, logger *zerolog.Logger) (*EthereumGateway, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", cfg.RPCURL, err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	parsedPool, err := abi.JSON(strings.NewReader(poolABI))
	if err != nil {
		return nil, fmt.Errorf("parse pool ABI: %w", err)
	}
	parsedToken, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token ABI: %w", err)
	}
	return &EthereumGateway{
		client:         client,
		chainID:        big.NewInt(cfg.ChainID),
		operatorKey:    key,
		operatorAddr:   crypto.PubkeyToAddress(key.PublicKey),
		pool:           common.HexToAddress(cfg.RewardPool),
		token:          common.HexToAddress(cfg.RewardToken),
		poolABI:        parsedPool,
		tokenABI:       parsedToken,
		confirmTimeout: cfg.ConfirmTimeout,
		log:            logger,
	}, nil
}

func (g *EthereumGateway) Name() string { return "ethereum" }

func (g *EthereumGateway) MintToPool(ctx context.Context, req adapter.MintRequest) (*adapter.TxResult, error) {
	data, err := g.poolABI.Pack("mintToPool",
		common.HexToAddress(req.Recipient),
		req.Subtype,
		big.NewInt(req.Timestamp.Unix()),
		req.Location,
		mintQuantity(req.Quantity),
		req.ActivityRef,
	)
	if err != nil {
		return nil, fmt.Errorf("pack mintToPool: %w", err)
	}
	receipt, err := g.submit(ctx, g.pool, data)
	if err != nil {
		return nil, err
	}
	res := &adapter.TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}
	if id := mintedTokenID(receipt); id != nil {
		s := id.String()
		res.TokenID = &s
	}
	return res, nil
}

func (g *EthereumGateway) Transfer(ctx context.Context, recipient string, amount float64) (*adapter.TxResult, error) {
	data, err := g.tokenABI.Pack("transfer", common.HexToAddress(recipient), toTokenUnits(amount))
	if err != nil {
		return nil, fmt.Errorf("pack transfer: %w", err)
	}
	receipt, err := g.submit(ctx, g.token, data)
	if err != nil {
		return nil, err
	}
	return &adapter.TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// submit signs and sends one transaction, then waits for its receipt.
// Submission binds to ctx; receipt waiting runs on a detached context
// so a cancelled HTTP request never abandons an in-flight transaction.
func (g *EthereumGateway) submit(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	g.nonceMu.Lock()
	tx, err := g.sendLocked(ctx, to, data)
	g.nonceMu.Unlock()
	if err != nil {
		return nil, err
	}
	return g.waitReceipt(tx.Hash())
}

func (g *EthereumGateway) sendLocked(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	nonce, err := g.client.PendingNonceAt(ctx, g.operatorAddr)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	gasLimit, err := g.client.EstimateGas(ctx, ethereum.CallMsg{
		From: g.operatorAddr,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.operatorKey)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}
	g.log.Debug().Str("tx", signed.Hash().Hex()).Uint64("nonce", nonce).Msg("transaction submitted")
	return signed, nil
}

func (g *EthereumGateway) waitReceipt(hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		receipt, err := g.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, fmt.Errorf("%w: %s", errTxReverted, hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			g.log.Debug().Err(err).Str("tx", hash.Hex()).Msg("receipt poll failed, retrying")
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("confirmation timeout for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// mintedTokenID recovers the NFT token id from the ERC-721 Transfer
// event in the mint receipt, if one was emitted.
func mintedTokenID(receipt *types.Receipt) *big.Int {
	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 4 && lg.Topics[0] == erc721TransferTopic {
			return new(big.Int).SetBytes(lg.Topics[3].Bytes())
		}
	}
	return nil
}

// mintQuantity converts the activity quantity to the contract's uint256
// argument. Fractional quantities round to the nearest whole unit, and
// anything below one is floored at one so the event record never claims
// a zero contribution.
func mintQuantity(q float64) *big.Int {
	rounded := int64(math.Round(q))
	if rounded < 1 {
		rounded = 1
	}
	return big.NewInt(rounded)
}

// toTokenUnits converts a whole-token amount to base units. Fractional
// policy amounts (1.5 for pickups) stay exact because the fraction is
// a power of two.
func toTokenUnits(amount float64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil)
	scaled := new(big.Float).Mul(big.NewFloat(amount), new(big.Float).SetInt(scale))
	units, _ := scaled.Int(nil)
	return units
}
