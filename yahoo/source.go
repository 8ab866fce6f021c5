package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/smiledash/smile"
)

// Side selects which contracts form the plotted smile
type Side string

const (
	SideCalls Side = "calls"
	SidePuts  Side = "puts"
)

// ParseSide accepts "calls" or "puts", case-insensitive
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideCalls:
		return SideCalls, nil
	case SidePuts:
		return SidePuts, nil
	}
	return "", fmt.Errorf("unknown side %q, want calls or puts", s)
}

// Source turns option chains into smile datasets for the producer
type Source struct {
	fetcher     Fetcher
	symbol      string
	expiryIndex int
	side        Side
}

// NewSource creates a source for symbol; expiryIndex 0 is the nearest expiration
func NewSource(fetcher Fetcher, symbol string, expiryIndex int, side Side) *Source {
	if side == "" {
		side = SideCalls
	}
	return &Source{
		fetcher:     fetcher,
		symbol:      strings.ToUpper(symbol),
		expiryIndex: expiryIndex,
		side:        side,
	}
}

// Name identifies the source in logs and the status bar
func (s *Source) Name() string {
	return "yahoo:" + s.symbol
}

// Compute fetches the chain for the configured expiration and builds the smile
func (s *Source) Compute(ctx context.Context) (smile.Dataset, error) {
	chain, err := s.fetcher.FetchChain(ctx, s.symbol, 0)
	if err != nil {
		return smile.Dataset{}, err
	}

	if s.expiryIndex > 0 {
		if s.expiryIndex >= len(chain.ExpirationDates) {
			return smile.Dataset{}, &FetchError{
				Kind:   KindDecode,
				Symbol: s.symbol,
				Err: fmt.Errorf("expiry index %d out of range, chain lists %d expirations",
					s.expiryIndex, len(chain.ExpirationDates)),
			}
		}
		date := chain.ExpirationDates[s.expiryIndex]
		if chain, err = s.fetcher.FetchChain(ctx, s.symbol, date); err != nil {
			return smile.Dataset{}, err
		}
	}

	return BuildDataset(chain, s.side), nil
}

// BuildDataset plots implied volatility against strike for one side of the chain
// Contracts without a quoted volatility are left out of the curve but kept in the table
func BuildDataset(chain Chain, side Side) smile.Dataset {
	quotes := chain.Calls
	if side == SidePuts {
		quotes = chain.Puts
	}

	points := make([]smile.Point, 0, len(quotes))
	for _, q := range quotes {
		if q.ImpliedVolatility <= 0 {
			continue
		}
		points = append(points, smile.Point{X: q.Strike, Y: q.ImpliedVolatility})
	}

	label := chain.Symbol
	if chain.Expiration > 0 {
		label += " " + time.Unix(chain.Expiration, 0).UTC().Format("2006-01-02")
	}
	label += " " + string(side)

	return smile.NewDataset(label, points, buildRows(chain))
}

// buildRows joins calls and puts on strike
func buildRows(chain Chain) []smile.QuoteRow {
	byStrike := make(map[float64]int)
	var rows []smile.QuoteRow

	row := func(strike float64) *smile.QuoteRow {
		if i, ok := byStrike[strike]; ok {
			return &rows[i]
		}
		byStrike[strike] = len(rows)
		rows = append(rows, smile.QuoteRow{Strike: strike})
		return &rows[len(rows)-1]
	}

	for _, q := range chain.Calls {
		r := row(q.Strike)
		r.Call, r.HasCall = toQuote(q), true
	}
	for _, q := range chain.Puts {
		r := row(q.Strike)
		r.Put, r.HasPut = toQuote(q), true
	}
	return rows
}

func toQuote(q OptionQuote) smile.Quote {
	return smile.Quote{
		Contract:     q.ContractSymbol,
		Last:         q.LastPrice,
		Bid:          q.Bid,
		Ask:          q.Ask,
		Volume:       q.Volume,
		OpenInterest: q.OpenInterest,
		IV:           q.ImpliedVolatility,
	}
}
