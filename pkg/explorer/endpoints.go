package explorer

import (
	"context"
	"net/url"
	"strconv"
)

// PageSize is the largest page the explorer serves for transfer listings.
// A page shorter than this is the last one.
const PageSize = 10000

// openEndBlock is the explorer's conventional "to the chain head" end block.
const openEndBlock = 99999999

// TokenTransfer is one ERC-20 Transfer event as listed by action=tokentx.
type TokenTransfer struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Hash            string `json:"hash"`
	ContractAddress string `json:"contractAddress"`
	BlockNumber     string `json:"blockNumber"`
}

// Block parses the string-encoded block number.
func (t TokenTransfer) Block() (uint64, error) {
	return strconv.ParseUint(t.BlockNumber, 10, 64)
}

// Transaction is a plain-value transaction as listed by action=txlist.
type Transaction struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	BlockNumber string `json:"blockNumber"`
}

func (c *Client) endpoint(params url.Values) string {
	params.Set("apikey", c.apiKey)
	return c.baseURL + "?" + params.Encode()
}

// BlockByTimeURL looks up the last block at or before ts.
func (c *Client) BlockByTimeURL(ts int64) string {
	return c.endpoint(url.Values{
		"module":    {"block"},
		"action":    {"getblocknobytime"},
		"timestamp": {strconv.FormatInt(ts, 10)},
		"closest":   {"before"},
	})
}

// TokenTransfersURL lists transfer events of a token contract in [from, to].
func (c *Client) TokenTransfersURL(token string, from, to uint64) string {
	return c.endpoint(url.Values{
		"module":          {"account"},
		"action":          {"tokentx"},
		"contractaddress": {token},
		"page":            {"1"},
		"offset":          {strconv.Itoa(PageSize)},
		"sort":            {"asc"},
		"startblock":      {strconv.FormatUint(from, 10)},
		"endblock":        {strconv.FormatUint(to, 10)},
	})
}

// WalletTxListURL lists plain-value transactions of a wallet from a block on.
func (c *Client) WalletTxListURL(wallet string, from uint64) string {
	return c.walletURL("txlist", wallet, from)
}

// WalletTokenTxURL lists token transfers of a wallet from a block on.
func (c *Client) WalletTokenTxURL(wallet string, from uint64) string {
	return c.walletURL("tokentx", wallet, from)
}

func (c *Client) walletURL(action, wallet string, from uint64) string {
	return c.endpoint(url.Values{
		"module":     {"account"},
		"action":     {action},
		"address":    {wallet},
		"page":       {"1"},
		"offset":     {strconv.Itoa(PageSize)},
		"sort":       {"asc"},
		"startblock": {strconv.FormatUint(from, 10)},
		"endblock":   {strconv.Itoa(openEndBlock)},
	})
}

// TokenTransfers fetches one page of a token's transfer events.
func (c *Client) TokenTransfers(ctx context.Context, token string, from, to uint64) ([]TokenTransfer, error) {
	var out []TokenTransfer
	if err := c.list(ctx, c.TokenTransfersURL(token, from, to), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WalletTransactions fetches a wallet's plain-value transactions since a block.
func (c *Client) WalletTransactions(ctx context.Context, wallet string, from uint64) ([]Transaction, error) {
	var out []Transaction
	if err := c.list(ctx, c.WalletTxListURL(wallet, from), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WalletTokenTransfers fetches a wallet's token transfers since a block.
func (c *Client) WalletTokenTransfers(ctx context.Context, wallet string, from uint64) ([]TokenTransfer, error) {
	var out []TokenTransfer
	if err := c.list(ctx, c.WalletTokenTxURL(wallet, from), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, url string, out interface{}) error {
	env, err := c.FetchJSON(ctx, url)
	if err != nil {
		return err
	}
	return DecodeResult(env, out)
}
