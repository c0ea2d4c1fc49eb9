package signer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-hclog"
)

const (
	settlementDomainTag = "CultureBridge.Relay.Settlement.v1"

	signatureLength = crypto.SignatureLength
	recoveryIDShift = 27
)

var (
	settlementDomain = crypto.Keccak256Hash([]byte(settlementDomainTag))

	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)

	messageArguments = abi.Arguments{
		{Name: "domain", Type: bytes32Type},
		{Name: "beneficiary", Type: addressType},
		{Name: "amount", Type: uint256Type},
		{Name: "sourceChainId", Type: uint256Type},
		{Name: "targetChainId", Type: uint256Type},
		{Name: "transferId", Type: bytes32Type},
	}
)

// MessageHash is keccak256 of the abi encoded settlement domain and transfer message
func MessageHash(msg core.TransferMessage) (common.Hash, error) {
	if msg.Amount == nil || msg.Amount.Sign() < 0 {
		return common.Hash{}, fmt.Errorf("invalid amount: %v", msg.Amount)
	}

	encoded, err := messageArguments.Pack(
		[32]byte(settlementDomain),
		msg.Beneficiary,
		msg.Amount,
		new(big.Int).SetUint64(msg.SourceChainID),
		new(big.Int).SetUint64(msg.TargetChainID),
		[32]byte(msg.TransferID),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode transfer message: %w", err)
	}

	return crypto.Keccak256Hash(encoded), nil
}

// RecoverSigner returns the address that produced an eth_sign style signature over messageHash
func RecoverSigner(messageHash common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != signatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(signature))
	}

	if v := signature[crypto.RecoveryIDOffset]; v != recoveryIDShift && v != recoveryIDShift+1 {
		return common.Address{}, fmt.Errorf("invalid signature recovery id: %d", v)
	}

	sig := append([]byte(nil), signature...)
	sig[crypto.RecoveryIDOffset] -= recoveryIDShift

	pubKey, err := crypto.SigToPub(accounts.TextHash(messageHash.Bytes()), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

type SignatureQuorumCollectorImpl struct {
	keySet *RelayerKeySet
	logger hclog.Logger
}

var _ core.SignatureCollector = (*SignatureQuorumCollectorImpl)(nil)

func NewSignatureQuorumCollector(keySet *RelayerKeySet, logger hclog.Logger) *SignatureQuorumCollectorImpl {
	return &SignatureQuorumCollectorImpl{
		keySet: keySet,
		logger: logger,
	}
}

// CheckQuorum fails when the key set can never produce the required number of signatures
func (c *SignatureQuorumCollectorImpl) CheckQuorum(required uint64) error {
	if required == 0 {
		return errors.New("required signatures must be greater than zero")
	}

	if uint64(c.keySet.Size()) < required {
		return fmt.Errorf("%w: required %d, available identities %d",
			core.ErrInsufficientQuorum, required, c.keySet.Size())
	}

	return nil
}

// Collect signs msg with every identity, verifies each signature by recovery and
// returns the signatures ordered by signer address
func (c *SignatureQuorumCollectorImpl) Collect(
	ctx context.Context, msg core.TransferMessage, required uint64,
) (*core.SignatureBundle, error) {
	if err := c.CheckQuorum(required); err != nil {
		return nil, err
	}

	messageHash, err := MessageHash(msg)
	if err != nil {
		return nil, err
	}

	digest := accounts.TextHash(messageHash.Bytes())

	type signed struct {
		signer    common.Address
		signature []byte
	}

	collected := make([]signed, 0, c.keySet.Size())

	for _, wallet := range c.keySet.wallets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		signature, err := wallet.SignHash(digest)
		if err != nil {
			c.logger.Warn("Failed to sign transfer message", "signer", wallet.GetAddress(), "err", err)

			continue
		}

		signature[crypto.RecoveryIDOffset] += recoveryIDShift

		recovered, err := RecoverSigner(messageHash, signature)
		if err != nil || recovered != wallet.GetAddress() {
			c.logger.Warn("Discarding invalid signature", "signer", wallet.GetAddress(),
				"recovered", recovered, "err", err)

			continue
		}

		collected = append(collected, signed{signer: recovered, signature: signature})
	}

	if uint64(len(collected)) < required {
		return nil, fmt.Errorf("%w: required %d, collected %d",
			core.ErrInsufficientQuorum, required, len(collected))
	}

	sort.Slice(collected, func(i, j int) bool {
		return addressLess(collected[i].signer, collected[j].signer)
	})

	bundle := &core.SignatureBundle{
		MessageHash: messageHash,
		Signers:     make([]common.Address, len(collected)),
		Signatures:  make([]byte, 0, len(collected)*signatureLength),
	}

	for i, item := range collected {
		bundle.Signers[i] = item.signer
		bundle.Signatures = append(bundle.Signatures, item.signature...)
	}

	c.logger.Debug("Collected signatures", "messageHash", messageHash, "count", len(collected), "required", required)

	return bundle, nil
}
