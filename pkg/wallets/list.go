package wallets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Direction says which side of a transfer a harvest collects.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ListPath is where the wallet list for (direction, label) lives.
func ListPath(dir string, d Direction, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.txt", d, label))
}

// List is an append-only wallet list file, one address per line, no
// duplicates and no reserved addresses.
type List struct {
	path string
}

func OpenList(path string) *List {
	return &List{path: path}
}

// CreateList truncates (or creates) the file at path, creating parent
// directories as needed.
func CreateList(path string) (*List, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create wallet dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wallet list: %w", err)
	}
	return &List{path: path}, f.Close()
}

func (l *List) Path() string { return l.path }

// Load returns the addresses in file order.
func (l *List) Load() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLines(f)
}

// Append writes every candidate that is neither already in the file nor
// blocked. Candidates are written in sorted order; the count written is
// returned.
func (l *List) Append(candidates []string, block Blocklist) (int, error) {
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open wallet list: %w", err)
	}
	defer f.Close()

	existing, err := readLines(f)
	if err != nil {
		return 0, fmt.Errorf("read wallet list: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, w := range existing {
		seen[w] = true
	}

	fresh := make([]string, 0, len(candidates))
	for _, w := range candidates {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] || block.Contains(w) {
			continue
		}
		seen[w] = true
		fresh = append(fresh, w)
	}
	sort.Strings(fresh)

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(f)
	for _, w := range fresh {
		bw.WriteString(w)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write wallet list: %w", err)
	}
	return len(fresh), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
