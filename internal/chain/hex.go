package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NormalizeTxHash lowercases a 32-byte hex hash. Anything that is not a
// well-formed hash is only trimmed and lowercased.
func NormalizeTxHash(h string) string {
	h = strings.TrimSpace(h)
	if IsTxHash(h) {
		return strings.ToLower(common.HexToHash(h).Hex())
	}
	return strings.ToLower(h)
}

func IsTxHash(h string) bool {
	b, err := hexutil.Decode(h)
	return err == nil && len(b) == common.HashLength
}

// NormalizeAddress returns the lowercase 0x form of a valid address, or ""
// for anything else.
func NormalizeAddress(a string) string {
	a = strings.TrimSpace(a)
	if !common.IsHexAddress(a) {
		return ""
	}
	return strings.ToLower(common.HexToAddress(a).Hex())
}

// OnchainBattleID maps an off-chain battle id into the pool contract's
// uint256 id space via keccak256.
func OnchainBattleID(battleID string) *big.Int {
	return crypto.Keccak256Hash([]byte(battleID)).Big()
}
