package game

import (
	"github.com/Benjythebee/stock-sim-server/internal/news"
	"github.com/Benjythebee/stock-sim-server/internal/powers"
)

// Wire message tags. The numeric values are the protocol contract with
// the frontend; every frame is a flat JSON object carrying "type" plus
// the payload fields of its struct below.
const (
	MsgID             = -1
	MsgJoin           = 0
	MsgLeave          = 1
	MsgIsAdmin        = 2
	MsgTogglePause    = 3
	MsgChat           = 4
	MsgError          = 5
	MsgPing           = 6
	MsgPong           = 7
	MsgClock          = 8
	MsgRoomState      = 9
	MsgStockAction    = 10
	MsgStockMovement  = 11
	MsgPortfolio      = 12
	MsgShock          = 13
	MsgNews           = 14
	MsgNotification   = 15
	MsgClientState    = 16
	MsgAdminSettings  = 30
	MsgConclusion     = 60
	MsgPowerOffers    = 80
	MsgPowerSelect    = 81
	MsgPowerConsume   = 82
	MsgPowerInventory = 83
	MsgDebugPrices    = 99
)

// Stock action fields.
const (
	ActionBuy   = "BUY"
	ActionSell  = "SELL"
	OrderLimit  = "LIMIT"
	OrderMarket = "MARKET"
)

// Shock targets.
const (
	TargetIntrinsic = "intrinsic"
	TargetMarket    = "market"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// Envelope is the probe decoded from every inbound frame before the
// payload struct is chosen.
type Envelope struct {
	Type int `json:"type"`
}

// IDMessage echoes the session token the client presents on reconnect.
type IDMessage struct {
	Type int    `json:"type"`
	ID   string `json:"id"`
}

// JoinMessage announces a client entering the room.
type JoinMessage struct {
	Type     int    `json:"type"`
	RoomID   string `json:"roomId"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LeaveMessage announces a client leaving the room.
type LeaveMessage struct {
	Type   int    `json:"type"`
	RoomID string `json:"roomId"`
	ID     string `json:"id"`
}

// SignalMessage carries tags with no payload: IS_ADMIN, TOGGLE_PAUSE,
// PING and PONG.
type SignalMessage struct {
	Type int `json:"type"`
}

// ChatMessage relays room chat; the server stamps RoomID and ID.
type ChatMessage struct {
	Type    int    `json:"type"`
	RoomID  string `json:"roomId"`
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ErrorMessage reports a precondition failure to one client.
type ErrorMessage struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

// ClockMessage carries the game clock in unix millis plus the seconds
// left in the game.
type ClockMessage struct {
	Type     int   `json:"type"`
	Value    int64 `json:"value"`
	TimeLeft int   `json:"timeLeft"`
}

// ClientInfo is one entry of the room-state client list.
type ClientInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	Spectator bool   `json:"spectator,omitempty"`
	Connected bool   `json:"connected"`
}

// RoomStateMessage is the full room snapshot sent on join, reconnect
// and settings changes.
type RoomStateMessage struct {
	Type     int          `json:"type"`
	RoomID   string       `json:"roomId"`
	Paused   bool         `json:"paused"`
	Started  bool         `json:"started"`
	Ended    bool         `json:"ended"`
	Settings Settings     `json:"settings"`
	Clock    int64        `json:"clock"`
	Clients  []ClientInfo `json:"clients"`
	Price    float64      `json:"price"`
}

// StockActionMessage is a client order: BUY or SELL, LIMIT or MARKET.
// Price is in dollars and ignored for market orders.
type StockActionMessage struct {
	Type      int     `json:"type"`
	Action    string  `json:"action"`
	OrderType string  `json:"orderType"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

// StockMovementMessage broadcasts the market price and book depth after
// a price change. Depth[0] is bids descending, Depth[1] asks ascending,
// each level a [price, quantity] pair in dollars.
type StockMovementMessage struct {
	Type  int             `json:"type"`
	Price float64         `json:"price"`
	Depth [2][][2]float64 `json:"depth"`
}

// PortfolioValue is the client-visible slice of a participant's books.
type PortfolioValue struct {
	Cash   float64 `json:"cash"`
	Shares int64   `json:"shares"`
	PnL    float64 `json:"pnl"`
}

// PortfolioMessage pushes a participant's portfolio after a fill, grant
// or order placement.
type PortfolioMessage struct {
	Type  int            `json:"type"`
	ID    string         `json:"id"`
	Value PortfolioValue `json:"value"`
}

// ShockMessage is the admin's manual market perturbation.
type ShockMessage struct {
	Type   int    `json:"type"`
	Target string `json:"target"`
}

// NewsMessage broadcasts a fired news item.
type NewsMessage struct {
	Type int `json:"type"`
	news.Broadcast
}

// NotificationMessage is a toast-level notice for one or all clients.
type NotificationMessage struct {
	Type        int    `json:"type"`
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ClientStateMessage tells a client whether its trading is disabled.
type ClientStateMessage struct {
	Type     int  `json:"type"`
	Disabled bool `json:"disabled"`
}

// AdminSettingsMessage applies a partial settings update. Admin-only,
// and only while the game is paused.
type AdminSettingsMessage struct {
	Type     int           `json:"type"`
	Settings SettingsPatch `json:"settings"`
}

// Standing is one row of the conclusion leaderboard, valued at the
// final market price. Cash and PnL are in dollars.
type Standing struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Cash   float64 `json:"cash"`
	Shares int64   `json:"shares"`
	PnL    float64 `json:"pnl"`
}

// ConclusionMessage closes the game with final standings and market
// aggregates.
type ConclusionMessage struct {
	Type         int        `json:"type"`
	Players      []Standing `json:"players"`
	Bots         []Standing `json:"bots"`
	VolumeTraded float64    `json:"volumeTraded"`
	HighestPrice float64    `json:"highestPrice"`
	LowestPrice  float64    `json:"lowestPrice"`
}

// PowerOffersMessage presents a briefcase of power descriptors.
type PowerOffersMessage struct {
	Type   int                 `json:"type"`
	Offers []powers.Descriptor `json:"offers"`
}

// PowerSelectMessage picks one descriptor out of the pending offer.
type PowerSelectMessage struct {
	Type  int `json:"type"`
	Index int `json:"index"`
}

// PowerConsumeMessage fires a stored power by its instance id.
type PowerConsumeMessage struct {
	Type int    `json:"type"`
	ID   string `json:"id"`
}

// PowerInventoryMessage resyncs a client's stored powers.
type PowerInventoryMessage struct {
	Type      int                    `json:"type"`
	Inventory []powers.InventoryItem `json:"inventory"`
}

// DebugPricesMessage streams the raw model pair to the admin, in
// dollars. Gated by the debugPrices setting.
type DebugPricesMessage struct {
	Type           int     `json:"type"`
	IntrinsicValue float64 `json:"intrinsicValue"`
	GuidePrice     float64 `json:"guidePrice"`
}
