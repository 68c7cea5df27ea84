package feed

// Event type discriminants emitted by the Titan engine.
const (
	TypeMetrics = "metrics"
	TypeAlert   = "alert"
	TypeStatus  = "status"
)

type envelope struct {
	Type string `json:"type"`
}

// BookMetrics mirrors the "book" object of a metrics frame. The engine sends
// more fields than the console shows; the extras only feed debug logging.
type BookMetrics struct {
	BestBid      float64 `json:"bestBid"`
	BestBidQty   float64 `json:"bestBidQty"`
	BestAsk      float64 `json:"bestAsk"`
	BestAskQty   float64 `json:"bestAskQty"`
	Spread       float64 `json:"spread"`
	SpreadBps    float64 `json:"spreadBps"`
	MidPrice     float64 `json:"midPrice"`
	Imbalance    float64 `json:"imbalance"`
	LastUpdateID int64   `json:"lastUpdateId"`
}

// TradeMetrics mirrors the "trade" object of a metrics frame.
type TradeMetrics struct {
	VWAP       float64 `json:"vwap"`
	BuyVolume  float64 `json:"buyVolume"`
	SellVolume float64 `json:"sellVolume"`
	NetFlow    float64 `json:"netFlow"`
	TradeCount int64   `json:"tradeCount"`
}

// MetricsEvent is the periodic book/flow snapshot. A frame missing either
// object leaves the zero values in place, which is what gets rendered.
type MetricsEvent struct {
	Timestamp string       `json:"timestamp"`
	Book      BookMetrics  `json:"book"`
	Trade     TradeMetrics `json:"trade"`
}

// AlertEvent is a whale-trade notification.
type AlertEvent struct {
	Timestamp string  `json:"timestamp"`
	Side      string  `json:"side"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Sigma     float64 `json:"sigma"`
	Deviation float64 `json:"deviation"`
}

// SideLabel substitutes "?" when the frame carried no side.
func (a AlertEvent) SideLabel() string {
	if a.Side == "" {
		return "?"
	}
	return a.Side
}

// SigmaValue folds the two field names the engine has used for the deviation
// magnitude: sigma wins, deviation is the fallback.
func (a AlertEvent) SigmaValue() float64 {
	if a.Sigma != 0 {
		return a.Sigma
	}
	return a.Deviation
}

// StatusEvent reports the engine's upstream connection state.
type StatusEvent struct {
	Timestamp string `json:"timestamp"`
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}
