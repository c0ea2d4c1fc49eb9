package signer

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	ethtxhelper "github.com/CultureBridge/bridge-relayer/eth/txhelper"
	"github.com/ethereum/go-ethereum/common"
)

var errEmptyKeySet = errors.New("relayer key set is empty")

// RelayerKeySet holds the signing identities of this relayer, ordered by address
type RelayerKeySet struct {
	wallets []*ethtxhelper.EthTxWallet
}

func NewRelayerKeySet(keys []string) (*RelayerKeySet, error) {
	if len(keys) == 0 {
		return nil, errEmptyKeySet
	}

	wallets := make([]*ethtxhelper.EthTxWallet, 0, len(keys))
	seen := make(map[common.Address]bool, len(keys))

	for i, key := range keys {
		wallet, err := ethtxhelper.NewEthTxWallet(key)
		if err != nil {
			return nil, fmt.Errorf("invalid relayer key at position %d: %w", i, err)
		}

		if seen[wallet.GetAddress()] {
			return nil, fmt.Errorf("duplicate relayer identity: %s", wallet.GetAddress())
		}

		seen[wallet.GetAddress()] = true
		wallets = append(wallets, wallet)
	}

	sort.Slice(wallets, func(i, j int) bool {
		return addressLess(wallets[i].GetAddress(), wallets[j].GetAddress())
	})

	return &RelayerKeySet{wallets: wallets}, nil
}

func (ks *RelayerKeySet) Identities() []common.Address {
	result := make([]common.Address, len(ks.wallets))
	for i, wallet := range ks.wallets {
		result[i] = wallet.GetAddress()
	}

	return result
}

func (ks *RelayerKeySet) Size() int {
	return len(ks.wallets)
}

func addressLess(a, b common.Address) bool {
	return bytes.Compare(a.Bytes(), b.Bytes()) < 0
}
