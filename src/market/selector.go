package market

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Instrument Selector
// -----------------------------------------------------------------------------

// tickerEntry is one row of the exchange 24hr ticker response. Volumes come
// over the wire as strings.
type tickerEntry struct {
	Symbol      string `json:"symbol"`
	QuoteVolume string `json:"quoteVolume"`
}

// Selector ranks instruments by trailing-24h quote volume using the
// exchange REST API. Each successful selection is snapshotted to the
// ranking store for the /api/universe endpoint.
type Selector struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Store   interfaces.IRankingStore
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSelector(cfg *models.MConfig, netMgr interfaces.INetworkManager, store interfaces.IRankingStore) *Selector {
	return &Selector{
		Config:  cfg,
		Network: netMgr,
		Store:   store,
		Logger:  logger.NewLogger(cfg.LogLevel, "Selector"),
	}
}

// -----------------------------------------------------------------------------

// TopSymbols returns up to max symbols quoted in the reference currency,
// ordered by descending 24h quote volume.
func (s *Selector) TopSymbols(ctx context.Context, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := s.Network.Get(s.Config.Market.RestBase+"/fapi/v1/ticker/24hr", nil)
	if err != nil {
		return nil, helpers.NewMarketUnavailable("ranking query failed", err)
	}

	var tickers []tickerEntry
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, helpers.NewMarketUnavailable("ranking response malformed", err)
	}

	quote := s.Config.Market.QuoteCurrency
	ranked := make([]models.MRankingEntry, 0, len(tickers))
	now := time.Now().UTC()

	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, quote) {
			continue
		}
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil {
			// One unparsable row is not worth failing the whole ranking
			s.Logger.Debug("Skipping %s: bad quoteVolume %q", t.Symbol, t.QuoteVolume)
			continue
		}
		ranked = append(ranked, models.MRankingEntry{
			Symbol:      t.Symbol,
			QuoteVolume: vol,
			FetchedAt:   now,
		})
	}

	if len(ranked) == 0 {
		return nil, helpers.NewMarketUnavailable("ranking response contained no usable instruments", nil)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].QuoteVolume > ranked[j].QuoteVolume
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	symbols := make([]string, len(ranked))
	for i := range ranked {
		ranked[i].Rank = i + 1
		symbols[i] = ranked[i].Symbol
	}

	s.snapshot(ranked)

	s.Logger.Info("Selected %d symbols (top by %s volume)", len(symbols), quote)
	return symbols, nil
}

// -----------------------------------------------------------------------------

// snapshot persists the selection best-effort; storage trouble must not
// block scanning.
func (s *Selector) snapshot(entries []models.MRankingEntry) {
	if s.Store == nil {
		return
	}
	if err := s.Store.SaveRanking(entries); err != nil {
		s.Logger.Warning("Failed to save ranking snapshot: %v", err)
	}
}
