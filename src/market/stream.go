package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/interfaces"
	"volatility-scanner/src/logger"
	"volatility-scanner/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Multiplexed Bar Stream (exchange combined streams)
// -----------------------------------------------------------------------------

// combinedMessage is the combined-stream envelope: the payload sits under
// "data", keyed by the stream name.
type combinedMessage struct {
	Stream string `json:"stream"`
	Data   struct {
		Kline klinePayload `json:"k"`
	} `json:"data"`
}

// klinePayload is the exchange kline event body. Prices are strings.
type klinePayload struct {
	Symbol     string `json:"s"`
	StartTime  int64  `json:"t"`
	Open       string `json:"o"`
	High       string `json:"h"`
	Low        string `json:"l"`
	Close      string `json:"c"`
	TradeCount int64  `json:"n"`
	IsClosed   bool   `json:"x"`
}

// -----------------------------------------------------------------------------
// Dialer
// -----------------------------------------------------------------------------

// StreamDialer opens one websocket carrying the kline streams of every
// selected symbol.
type StreamDialer struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewStreamDialer(cfg *models.MConfig) *StreamDialer {
	return &StreamDialer{
		Config: cfg,
		Logger: logger.NewLogger(cfg.LogLevel, "StreamDialer"),
	}
}

// -----------------------------------------------------------------------------

// Dial connects to the combined stream endpoint for the given symbols and
// time frame.
func (d *StreamDialer) Dial(ctx context.Context, symbols []string, timeFrame string) (interfaces.IBarStream, error) {
	if len(symbols) == 0 {
		return nil, helpers.NewStreamDisrupted("no symbols to subscribe", nil)
	}

	names := make([]string, len(symbols))
	for i, sym := range symbols {
		names[i] = fmt.Sprintf("%s@kline_%s", strings.ToLower(sym), timeFrame)
	}
	url := fmt.Sprintf("%s/stream?streams=%s", d.Config.Market.StreamBase, strings.Join(names, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, helpers.NewStreamDisrupted("stream connect failed", err)
	}

	d.Logger.Info("Subscribed to %d kline streams at %s", len(names), timeFrame)
	return &barStream{conn: conn, logger: d.Logger}, nil
}

// -----------------------------------------------------------------------------
// Stream
// -----------------------------------------------------------------------------

type barStream struct {
	conn   *websocket.Conn
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

// ReadBar blocks for one bar update, bounded by timeout.
func (s *barStream) ReadBar(timeout time.Duration) (models.MIntervalBar, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return models.MIntervalBar{}, helpers.NewStreamDisrupted("set read deadline failed", err)
	}

	_, raw, err := s.conn.ReadMessage()
	if err != nil {
		// Timeouts and close frames both mean the subscription is dead
		return models.MIntervalBar{}, helpers.NewStreamDisrupted("stream read failed", err)
	}

	return decodeBar(raw)
}

// -----------------------------------------------------------------------------

func (s *barStream) Close() error {
	return s.conn.Close()
}

// -----------------------------------------------------------------------------

// decodeBar parses one combined-stream message into a bar.
func decodeBar(raw []byte) (models.MIntervalBar, error) {
	var msg combinedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return models.MIntervalBar{}, helpers.NewMalformedMessage("undecodable stream message", err)
	}

	k := msg.Data.Kline
	if k.Symbol == "" {
		return models.MIntervalBar{}, helpers.NewMalformedMessage("stream message missing kline payload", nil)
	}

	open, err1 := strconv.ParseFloat(k.Open, 64)
	high, err2 := strconv.ParseFloat(k.High, 64)
	low, err3 := strconv.ParseFloat(k.Low, 64)
	closeVal, err4 := strconv.ParseFloat(k.Close, 64)
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return models.MIntervalBar{}, helpers.NewMalformedMessage("unparsable kline prices", err)
		}
	}

	return models.MIntervalBar{
		Symbol:     k.Symbol,
		StartTime:  k.StartTime,
		Open:       open,
		High:       high,
		Low:        low,
		Close:      closeVal,
		TradeCount: k.TradeCount,
		IsClosed:   k.IsClosed,
	}, nil
}
