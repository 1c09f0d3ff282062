package wallets

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DeadAddress is the conventional burn address that shows up as a counterparty
// on every burn and must never be treated as a trader.
const DeadAddress = "0xdEAD000000000000000042069420694206942069"

// Reserved holds the addresses never written to a wallet list or tracked.
var Reserved = NewBlocklist(common.Address{}.Hex(), DeadAddress)

// Blocklist is an immutable, case-insensitive address set.
type Blocklist struct {
	set map[string]struct{}
}

func NewBlocklist(addrs ...string) Blocklist {
	b := Blocklist{set: make(map[string]struct{}, len(addrs))}
	for _, a := range addrs {
		b.set[fold(a)] = struct{}{}
	}
	return b
}

func (b Blocklist) Contains(addr string) bool {
	_, ok := b.set[fold(addr)]
	return ok
}

func (b Blocklist) Len() int { return len(b.set) }

// IsAddress reports whether s is a 20-byte hex address with 0x prefix.
func IsAddress(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
