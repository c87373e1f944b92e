// mockex is a tiny stand-in exchange for running the scanner offline.
// Point the scanner at it with:
//
//	market:
//	  rest_base: http://127.0.0.1:9090
//	  stream_base: ws://127.0.0.1:9090
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------

var symbols = []string{
	"BTCUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT", "DOGEUSDT",
	"ADAUSDT", "LINKUSDT", "AVAXUSDT", "TONUSDT", "BNBUSDT",
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "listen address")
	barEvery := flag.Duration("bar-every", 2*time.Second, "interval between emitted bars")
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()

	engine.GET("/fapi/v1/ticker/24hr", getTickers)
	engine.GET("/stream", func(c *gin.Context) { handleStream(c, *barEvery) })

	fmt.Printf("mock exchange listening on %s\n", *addr)
	if err := engine.Run(*addr); err != nil {
		fmt.Printf("mock exchange stopped: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// getTickers fakes the 24hr volume ranking. Volumes are shuffled each call
// so reselects see a moving top-volume set.
func getTickers(c *gin.Context) {
	out := make([]gin.H, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, gin.H{
			"symbol":      sym,
			"quoteVolume": fmt.Sprintf("%.2f", 1e6+rand.Float64()*1e9),
		})
	}
	c.JSON(200, out)
}

// -----------------------------------------------------------------------------

// handleStream emits combined-stream kline messages for the subscribed
// streams, alternating open and closed bars with occasional big ranges.
func handleStream(c *gin.Context, barEvery time.Duration) {
	streams := strings.Split(c.Query("streams"), "/")
	if len(streams) == 0 || streams[0] == "" {
		c.JSON(400, gin.H{"error": "no streams requested"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(barEvery)
	defer ticker.Stop()

	closed := false
	for range ticker.C {
		stream := streams[rand.Intn(len(streams))]
		symbol := strings.ToUpper(strings.SplitN(stream, "@", 2)[0])

		base := 100 + rand.Float64()*1000
		span := base * rand.Float64() * 0.03 // up to 3% range
		open := base
		closePx := base + span*(rand.Float64()-0.5)

		msg := gin.H{
			"stream": stream,
			"data": gin.H{
				"e": "kline",
				"s": symbol,
				"k": gin.H{
					"s": symbol,
					"t": time.Now().Add(-time.Minute).UnixMilli(),
					"o": fmt.Sprintf("%.4f", open),
					"h": fmt.Sprintf("%.4f", base+span),
					"l": fmt.Sprintf("%.4f", base-span),
					"c": fmt.Sprintf("%.4f", closePx),
					"n": 500 + rand.Intn(5000),
					"x": closed,
				},
			},
		}
		closed = !closed

		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
