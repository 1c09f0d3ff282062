package wallets

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Tracked is one line of the tracking input: a wallet and what the analyst
// knows about it.
type Tracked struct {
	Wallet      string
	Description string
}

func LoadTracking(path string, block Blocklist) ([]Tracked, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTracking(f, block)
}

// ParseTracking reads "wallet,description" lines. The description is the rest
// of the line after the first comma. Blocked wallets are dropped; a wallet
// listed twice keeps its first position and its last description.
func ParseTracking(r io.Reader, block Blocklist) ([]Tracked, error) {
	var out []Tracked
	index := map[string]int{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		wallet, desc, _ := strings.Cut(line, ",")
		wallet = strings.TrimSpace(wallet)
		if block.Contains(wallet) {
			continue
		}
		if i, ok := index[wallet]; ok {
			out[i].Description = desc
			continue
		}
		index[wallet] = len(out)
		out = append(out, Tracked{Wallet: wallet, Description: desc})
	}
	return out, sc.Err()
}
