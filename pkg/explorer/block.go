package explorer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DateTimeLayout is the accepted human-readable form, e.g. "2022/05/21 13:50:30".
const DateTimeLayout = "2006/01/02 15:04:05"

var ErrBadBlockQuery = errors.New("explorer: give exactly one of date-time or timestamp")

// BlockQuery selects a point in time by exactly one of its fields.
type BlockQuery struct {
	DateTime  string         // DateTimeLayout, read in Location
	Location  *time.Location // defaults to time.Local
	Timestamp *int64         // unix seconds
}

// AtTime is a BlockQuery for a time.Time.
func AtTime(t time.Time) BlockQuery {
	ts := t.Unix()
	return BlockQuery{Timestamp: &ts}
}

// AtDateTime is a BlockQuery for a DateTimeLayout string.
func AtDateTime(s string, loc *time.Location) BlockQuery {
	return BlockQuery{DateTime: s, Location: loc}
}

func (q BlockQuery) unix() (int64, error) {
	switch {
	case q.DateTime != "" && q.Timestamp != nil, q.DateTime == "" && q.Timestamp == nil:
		return 0, ErrBadBlockQuery
	case q.Timestamp != nil:
		return *q.Timestamp, nil
	}
	loc := q.Location
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(q.DateTime), loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadBlockQuery, err)
	}
	return t.Unix(), nil
}

// ResolveBlock returns the last block mined at or before the queried time.
func (c *Client) ResolveBlock(ctx context.Context, q BlockQuery) (uint64, error) {
	ts, err := q.unix()
	if err != nil {
		return 0, err
	}

	env, err := c.FetchJSON(ctx, c.BlockByTimeURL(ts))
	if err != nil {
		log.Error().Err(err).Int64("timestamp", ts).Msg("block number lookup failed")
		return 0, fmt.Errorf("resolve block at %d: %w", ts, err)
	}

	var raw string
	if err := DecodeResult(env, &raw); err != nil {
		return 0, fmt.Errorf("resolve block at %d: %w", ts, err)
	}
	block, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Error().Str("result", raw).Int64("timestamp", ts).Msg("block number is not numeric")
		return 0, fmt.Errorf("resolve block at %d: %w: %q", ts, ErrBadEnvelope, raw)
	}
	return block, nil
}
