// Package game orchestrates rooms: each room owns one simulated market,
// the clients playing it and the factories perturbing it. All room state
// is confined to the room's goroutine; the transport layer reaches it
// through Do.
package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/bots"
	"github.com/Benjythebee/stock-sim-server/internal/market"
	"github.com/Benjythebee/stock-sim-server/internal/metrics"
	"github.com/Benjythebee/stock-sim-server/internal/money"
	"github.com/Benjythebee/stock-sim-server/internal/news"
	"github.com/Benjythebee/stock-sim-server/internal/orderbook"
	"github.com/Benjythebee/stock-sim-server/internal/powers"
	"github.com/Benjythebee/stock-sim-server/internal/prices"
	"github.com/Benjythebee/stock-sim-server/internal/sim"
)

// disconnectGrace is how long a dropped client's seat is held before it
// is removed for good.
const disconnectGrace = 60 * time.Second

// meanReversion is the pull binding the guide price to the intrinsic
// value; settings expose volatility but not this.
const meanReversion = 0.1

// adminShockPct and adminIntrinsicPct size the admin's manual shocks.
const (
	adminShockPct     = 2.5  // percent drift per tick, sign drawn
	adminIntrinsicPct = 0.10 // fractional repricing, sign drawn
)

// Seed offsets derive the room's independent PRNG streams from the one
// settings seed, so no consumer disturbs another's sequence.
const (
	newsSeedOffset  = 1
	powerSeedOffset = 2
	adminSeedOffset = 3
)

// Room owns one game: settings, clients, the simulator and the news and
// power factories around it. A single goroutine runs the market ticker,
// the clock ticker and every inbound command, so nothing in here locks.
type Room struct {
	ID string

	cmds   chan func()
	stopCh chan struct{}
	done   chan struct{}

	settings Settings
	clients  []*Client
	admin    *Client

	gen      *prices.Generator
	ex       *market.Exchange
	sim      *sim.Simulator
	traders  []bots.Trader
	newsFac  *news.Factory
	powerFac *powers.Factory
	rng      *prices.PRNG // admin shock draws

	started  bool
	ended    bool
	disposed bool

	lastSharesTraded int64
	lastValueTraded  int64

	onEmpty func(roomID string)

	log zerolog.Logger
}

// NewRoom builds a room with default settings and starts its loop.
// onEmpty runs after the room disposes itself because the last seat
// emptied.
func NewRoom(id string, onEmpty func(roomID string), log zerolog.Logger) *Room {
	r := &Room{
		ID:       id,
		cmds:     make(chan func(), 64),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		settings: DefaultSettings(),
		onEmpty:  onEmpty,
		log:      log.With().Str("room", id).Logger(),
	}
	r.setup()
	go r.run()
	return r
}

// run is the room's actor loop. Every mutation of room state happens
// here: timer ticks directly, everything else as a queued command.
func (r *Room) run() {
	defer close(r.done)

	marketTicker := time.NewTicker(sim.TickInterval)
	clockTicker := time.NewTicker(sim.ClockInterval)
	defer marketTicker.Stop()
	defer clockTicker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case fn := <-r.cmds:
			fn()
		case now := <-marketTicker.C:
			if !r.sim.IsPaused() {
				metrics.MarketTicks.Inc()
			}
			r.sim.TickMarket(now)
		case now := <-clockTicker.C:
			r.sim.TickClock(now)
		}
	}
}

// Do hands fn to the room goroutine. Calls made after disposal are
// dropped.
func (r *Room) Do(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.stopCh:
	}
}

// call runs fn on the room goroutine and waits for it. Returns false
// when the room shut down before fn could run. Never call it from
// inside the loop.
func (r *Room) call(fn func()) bool {
	ran := make(chan struct{})
	r.Do(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-r.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// setup tears down the previous engine, if any, and rebuilds the stack
// from the current settings: generator, exchange, bots, simulator, news
// and power factories, and a fresh participant for every seated player.
// Runs at construction and after every settings change.
func (r *Room) setup() {
	if r.powerFac != nil {
		r.powerFac.Dispose()
	}
	if r.newsFac != nil {
		r.newsFac.Dispose()
	}

	seed := r.settings.Seed
	r.rng = prices.NewPRNG(seed + adminSeedOffset)
	r.gen = prices.NewGenerator(prices.Config{
		OpeningPrice:  r.settings.OpeningPrice,
		Volatility:    r.settings.EffectiveVolatility(),
		MeanReversion: meanReversion,
	}, prices.NewPRNG(seed))
	r.ex = market.NewExchange(r.settings.TicketName, money.ToCents(r.settings.OpeningPrice), r.log)

	r.traders = bots.Spawn(bots.SpawnConfig{
		Count:        r.settings.Bots,
		Selection:    r.settings.BotKinds(),
		StartingCash: money.ToCents(r.settings.StartingCash),
		Seed:         seed,
	}, r.ex, r.log)
	simBots := make([]sim.Bot, len(r.traders))
	for i, t := range r.traders {
		simBots[i] = t
	}

	bus := sim.NewBus()
	r.sim = sim.NewSimulator(r.gen, r.ex, simBots, bus, r.settings.DurationSeconds(), r.log)
	r.sim.OnPrice = r.onPrice
	r.sim.OnDebugPrices = r.onDebugPrices
	r.sim.OnClockTick = r.onClockTick
	r.sim.OnEnd = r.onGameEnd

	r.newsFac = news.NewFactory(r.gen, prices.NewPRNG(seed+newsSeedOffset), bus,
		r.settings.EnableRandomNews, r.onNews, r.log)
	r.powerFac = powers.NewFactory(r, prices.NewPRNG(seed+powerSeedOffset), bus,
		r.settings.DurationSeconds(), r.participantIDs, r.onPowerOffer, r.log)

	for _, c := range r.clients {
		if !c.Spectator {
			r.attachParticipant(c)
		}
	}

	r.started = false
	r.ended = false
	r.lastSharesTraded = 0
	r.lastValueTraded = 0
}

// attachParticipant gives c a fresh participant on the current exchange
// and hooks its fills so the client sees settlements as they land.
func (r *Room) attachParticipant(c *Client) {
	part := market.NewParticipant(c.ID, c.Username,
		money.ToCents(r.settings.StartingCash), 0, r.ex, r.log)
	client := c
	part.OnFill = func(market.Fill) { r.pushPortfolio(client) }
	c.part = part
}

// Simulator callbacks.

func (r *Room) onPrice(price int64) {
	r.broadcast(r.movementMessage(price))
}

func (r *Room) onDebugPrices(intrinsic, guide int64) {
	if !r.settings.DebugPrices || r.admin == nil {
		return
	}
	r.admin.send(DebugPricesMessage{
		Type:           MsgDebugPrices,
		IntrinsicValue: money.ToDollars(intrinsic),
		GuidePrice:     money.ToDollars(guide),
	})
}

func (r *Room) onClockTick(t sim.ClockTick) {
	r.broadcast(ClockMessage{Type: MsgClock, Value: t.Clock, TimeLeft: t.TimeLeft})
	r.publishTradeMetrics()
}

func (r *Room) onNews(b news.Broadcast) {
	metrics.NewsFired.Inc()
	r.broadcast(NewsMessage{Type: MsgNews, Broadcast: b})
}

func (r *Room) onPowerOffer(clientID string, offers []powers.Descriptor) {
	r.sendTo(clientID, PowerOffersMessage{Type: MsgPowerOffers, Offers: offers})
}

// onGameEnd settles the books and broadcasts the conclusion. Open
// orders are cancelled first so locked balances count toward the
// standings.
func (r *Room) onGameEnd() {
	r.ended = true
	finalPrice := r.sim.MarketPrice()

	for _, t := range r.traders {
		t.Participant().CancelAll()
	}
	for _, c := range r.clients {
		if c.part != nil {
			c.part.CancelAll()
		}
	}

	players := make([]Standing, 0, len(r.clients))
	for _, c := range r.clients {
		if c.part != nil {
			players = append(players, standingOf(c.part, finalPrice))
		}
	}
	botRows := make([]Standing, 0, len(r.traders))
	for _, t := range r.traders {
		botRows = append(botRows, standingOf(t.Participant(), finalPrice))
	}

	r.broadcast(ConclusionMessage{
		Type:         MsgConclusion,
		Players:      players,
		Bots:         botRows,
		VolumeTraded: money.ToDollars(r.ex.ValueProcessed()),
		HighestPrice: money.ToDollars(r.ex.HighestPrice()),
		LowestPrice:  money.ToDollars(r.ex.LowestPrice()),
	})
	r.log.Info().Int64("finalPrice", finalPrice).Msg("game over")
}

func standingOf(p *market.Participant, price int64) Standing {
	pf := p.Portfolio(price)
	return Standing{
		ID:     pf.ID,
		Name:   pf.Name,
		Cash:   money.ToDollars(pf.Cash),
		Shares: pf.Shares,
		PnL:    money.ToDollars(pf.PnL),
	}
}

// publishTradeMetrics pushes the exchange aggregates accumulated since
// the previous clock tick.
func (r *Room) publishTradeMetrics() {
	if d := r.ex.SharesTraded() - r.lastSharesTraded; d > 0 {
		metrics.SharesTraded.Add(float64(d))
		r.lastSharesTraded = r.ex.SharesTraded()
	}
	if d := r.ex.ValueProcessed() - r.lastValueTraded; d > 0 {
		metrics.ValueTraded.Add(float64(d))
		r.lastValueTraded = r.ex.ValueProcessed()
	}
}

// Client lifecycle.

// Join seats a transport in the room and returns the client id the
// transport routes inbound frames with. A resumeID naming a seated
// client swaps the new transport in and resyncs it; otherwise a fresh
// client is created. ok is false when the room is shutting down.
func (r *Room) Join(conn Conn, username string, spectator bool, resumeID string) (clientID string, ok bool) {
	var id string
	ok = r.call(func() {
		id = r.addClient(conn, username, spectator, resumeID)
	})
	return id, ok
}

func (r *Room) addClient(conn Conn, username string, spectator bool, resumeID string) string {
	if resumeID != "" {
		if c := r.clientByID(resumeID); c != nil {
			r.reconnect(c, conn)
			return c.ID
		}
	}

	c := &Client{
		ID:        uuid.NewString(),
		Username:  username,
		Spectator: spectator,
		conn:      conn,
		connected: true,
	}
	if !spectator {
		r.attachParticipant(c)
		if r.admin == nil {
			c.admin = true
			r.admin = c
		}
	}
	r.clients = append(r.clients, c)

	r.resync(c)
	r.broadcast(JoinMessage{Type: MsgJoin, RoomID: r.ID, ID: c.ID, Username: c.Username})
	r.log.Info().Str("client", c.ID).Str("username", username).
		Bool("spectator", spectator).Msg("client joined")
	return c.ID
}

// reconnect swaps a fresh transport into a seated client and replays
// the session state.
func (r *Room) reconnect(c *Client, conn Conn) {
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
	if c.connected && c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.connected = true
	r.resync(c)
	r.log.Info().Str("client", c.ID).Msg("client reconnected")
}

// resync replays the session to one client: ID, IS_ADMIN, ROOM_STATE,
// then portfolio, power inventory and trading state for seated players.
func (r *Room) resync(c *Client) {
	c.send(IDMessage{Type: MsgID, ID: r.sessionToken(c)})
	if c.admin {
		c.send(SignalMessage{Type: MsgIsAdmin})
	}
	c.send(r.roomState())
	if c.part != nil {
		if r.started {
			r.pushPortfolio(c)
		}
		c.send(PowerInventoryMessage{Type: MsgPowerInventory, Inventory: r.powerFac.Inventory(c.ID)})
		c.send(ClientStateMessage{Type: MsgClientState, Disabled: c.part.TradingDisabled()})
	}
}

// sessionToken is the prevSessionData value the client presents when
// reconnecting.
func (r *Room) sessionToken(c *Client) string {
	return r.ID + "-" + c.ID
}

// Disconnect releases clientID's transport and starts the grace timer
// on its seat. The conn argument guards against a stale transport
// releasing a seat a newer connection already took over.
func (r *Room) Disconnect(clientID string, conn Conn) {
	r.Do(func() {
		c := r.clientByID(clientID)
		if c == nil || c.conn != conn {
			return
		}
		c.connected = false
		c.conn = nil
		id := clientID
		c.grace = time.AfterFunc(disconnectGrace, func() {
			r.Do(func() { r.expireClient(id) })
		})
		r.log.Info().Str("client", c.ID).Msg("client disconnected, holding seat")
	})
}

// expireClient removes a client whose grace window lapsed without a
// reconnect.
func (r *Room) expireClient(id string) {
	c := r.clientByID(id)
	if c == nil || c.connected {
		return
	}
	r.removeClient(c)
}

// removeClient unseats a client for good: cancels its orders, drops its
// power state, transfers the admin role if needed. The last seat out
// disposes the room.
func (r *Room) removeClient(c *Client) {
	if c.part != nil {
		c.part.CancelAll()
	}
	r.powerFac.RemoveClient(c.ID)

	kept := r.clients[:0]
	for _, o := range r.clients {
		if o != c {
			kept = append(kept, o)
		}
	}
	r.clients = kept

	r.broadcast(LeaveMessage{Type: MsgLeave, RoomID: r.ID, ID: c.ID})

	if r.admin == c {
		c.admin = false
		r.admin = nil
		for _, o := range r.clients {
			if !o.Spectator {
				o.admin = true
				r.admin = o
				o.send(SignalMessage{Type: MsgIsAdmin})
				r.log.Info().Str("client", o.ID).Msg("admin role transferred")
				break
			}
		}
	}

	r.log.Info().Str("client", c.ID).Msg("client removed")

	if len(r.clients) == 0 {
		r.log.Info().Msg("room empty, disposing")
		r.dispose()
		if r.onEmpty != nil {
			r.onEmpty(r.ID)
		}
	}
}

// dispose releases everything the room owns. Active powers and pending
// news fire their onEnd handlers so the effects they hold are unwound.
// Returns false when the room was already disposed.
func (r *Room) dispose() bool {
	if r.disposed {
		return false
	}
	r.disposed = true
	r.powerFac.Dispose()
	r.newsFac.Dispose()
	for _, c := range r.clients {
		if c.grace != nil {
			c.grace.Stop()
			c.grace = nil
		}
		if c.connected && c.conn != nil {
			c.conn.Close()
		}
		c.connected = false
	}
	r.clients = nil
	r.traders = nil
	close(r.stopCh)
	r.log.Info().Msg("room disposed")
	return true
}

// Shutdown disposes the room from outside the loop and waits for the
// loop to exit. Returns false when the room had already disposed
// itself.
func (r *Room) Shutdown() bool {
	var did bool
	r.call(func() { did = r.dispose() })
	<-r.done
	return did
}

// Inbound messages.

// Deliver routes one raw inbound frame from clientID's transport onto
// the room goroutine.
func (r *Room) Deliver(clientID string, raw []byte) {
	r.Do(func() {
		if c := r.clientByID(clientID); c != nil {
			r.handleMessage(c, raw)
		}
	})
}

func (r *Room) handleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.Debug().Err(err).Str("client", c.ID).Msg("dropping malformed frame")
		return
	}

	switch env.Type {
	case MsgPing:
		c.send(SignalMessage{Type: MsgPong})
	case MsgTogglePause:
		r.handleTogglePause(c)
	case MsgChat:
		r.handleChat(c, raw)
	case MsgStockAction:
		r.handleStockAction(c, raw)
	case MsgShock:
		r.handleShock(c, raw)
	case MsgAdminSettings:
		r.handleAdminSettings(c, raw)
	case MsgPowerSelect:
		r.handlePowerSelect(c, raw)
	case MsgPowerConsume:
		r.handlePowerConsume(c, raw)
	default:
		r.log.Debug().Int("type", env.Type).Str("client", c.ID).Msg("dropping unhandled frame")
	}
}

// handleTogglePause flips the game state. Non-admin senders get the
// toggle echoed back so their UI self-corrects; the first unpause
// starts the game.
func (r *Room) handleTogglePause(c *Client) {
	if c != r.admin {
		c.send(SignalMessage{Type: MsgTogglePause})
		return
	}
	if r.ended {
		return
	}
	if r.sim.IsPaused() {
		r.sim.Resume(time.Now())
		if !r.started {
			r.started = true
			r.log.Info().Msg("game started")
		}
	} else {
		r.sim.Pause()
	}
	r.broadcast(SignalMessage{Type: MsgTogglePause})
}

func (r *Room) handleChat(c *Client, raw []byte) {
	var m ChatMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.Content == "" {
		return
	}
	m.Type = MsgChat
	m.RoomID = r.ID
	m.ID = c.ID
	r.broadcast(m)
}

// handleStockAction places a client order. Accounting failures are
// silent: the client simply observes no portfolio change.
func (r *Room) handleStockAction(c *Client, raw []byte) {
	if c.part == nil || !r.started || r.ended {
		return
	}
	var m StockActionMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.Quantity <= 0 {
		return
	}

	var kind orderbook.OrderType
	switch m.OrderType {
	case OrderLimit:
		kind = orderbook.Limit
	case OrderMarket:
		kind = orderbook.Market
	default:
		return
	}

	price := money.ToCents(m.Price)
	before := r.ex.LastPrice()

	var err error
	switch m.Action {
	case ActionBuy:
		_, err = c.part.PlaceBuy(price, m.Quantity, kind)
	case ActionSell:
		_, err = c.part.PlaceSell(price, m.Quantity, kind)
	default:
		return
	}
	if err != nil {
		r.log.Debug().Err(err).Str("client", c.ID).Str("action", m.Action).Msg("order rejected")
		return
	}

	r.pushPortfolio(c)
	if px := r.ex.LastPrice(); px != before {
		r.sim.NotePrice(px)
		r.broadcast(r.movementMessage(px))
	}
}

// handleShock is the admin's manual market jolt: a transient drift for
// the market target, a fundamental repricing for intrinsic. Sign and
// size are drawn from the room's own PRNG.
func (r *Room) handleShock(c *Client, raw []byte) {
	if c != r.admin {
		return
	}
	var m ShockMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return
	}
	switch m.Target {
	case TargetMarket:
		r.gen.Shock(r.rng.Bipolar()*adminShockPct, prices.DefaultShockTicks)
		r.log.Info().Msg("market shock applied")
	case TargetIntrinsic:
		r.gen.IntrinsicShock(r.rng.Bipolar() * adminIntrinsicPct)
		r.log.Info().Msg("intrinsic shock applied")
	}
}

// handleAdminSettings applies a partial settings update and rebuilds
// the engine. Admin-only, and only while the game is paused.
func (r *Room) handleAdminSettings(c *Client, raw []byte) {
	if c != r.admin {
		return
	}
	if !r.sim.IsPaused() {
		c.send(ErrorMessage{Type: MsgError, Message: "pause the game before changing settings"})
		return
	}
	var m AdminSettingsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return
	}
	r.settings.Apply(m.Settings)
	r.setup()
	r.broadcast(r.roomState())
	r.log.Info().Int("bots", r.settings.Bots).Int64("seed", r.settings.Seed).
		Msg("settings applied, engine rebuilt")
}

func (r *Room) handlePowerSelect(c *Client, raw []byte) {
	if c.part == nil {
		return
	}
	var m PowerSelectMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return
	}
	p, err := r.powerFac.Select(c.ID, m.Index)
	if err != nil {
		r.log.Debug().Err(err).Str("client", c.ID).Msg("power select rejected")
		return
	}
	if p.Def.IsInstant {
		metrics.PowersConsumed.Inc()
	}
	c.send(PowerInventoryMessage{Type: MsgPowerInventory, Inventory: r.powerFac.Inventory(c.ID)})
}

func (r *Room) handlePowerConsume(c *Client, raw []byte) {
	if c.part == nil {
		return
	}
	var m PowerConsumeMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" {
		return
	}
	if _, err := r.powerFac.Consume(c.ID, m.ID); err != nil {
		r.log.Debug().Err(err).Str("client", c.ID).Msg("power consume rejected")
		return
	}
	metrics.PowersConsumed.Inc()
	c.send(PowerInventoryMessage{Type: MsgPowerInventory, Inventory: r.powerFac.Inventory(c.ID)})
}

// Power environment. The power factory mutates the room through these.

// Generator exposes the price generator to power effects.
func (r *Room) Generator() *prices.Generator { return r.gen }

// InjectNews launches a power-created news item.
func (r *Room) InjectNews(it *news.Item) { r.newsFac.Inject(it) }

// GrantCash credits a client and pushes the new portfolio.
func (r *Room) GrantCash(clientID string, cents int64) {
	c := r.clientByID(clientID)
	if c == nil || c.part == nil {
		return
	}
	c.part.GrantCash(cents)
	r.pushPortfolio(c)
}

// DisableOthers halts trading for every seated player except the
// initiator and returns who was hit.
func (r *Room) DisableOthers(initiatorID string) []string {
	var affected []string
	for _, c := range r.clients {
		if c.part == nil || c.ID == initiatorID || c.part.TradingDisabled() {
			continue
		}
		c.part.SetTradingDisabled(true)
		c.send(ClientStateMessage{Type: MsgClientState, Disabled: true})
		affected = append(affected, c.ID)
	}
	return affected
}

// EnableClients restores trading for the given clients.
func (r *Room) EnableClients(ids []string) {
	for _, id := range ids {
		c := r.clientByID(id)
		if c == nil || c.part == nil {
			continue
		}
		c.part.SetTradingDisabled(false)
		c.send(ClientStateMessage{Type: MsgClientState, Disabled: false})
	}
}

// NotifyAll broadcasts a notification toast.
func (r *Room) NotifyAll(level, title, description string) {
	r.broadcast(NotificationMessage{Type: MsgNotification, Level: level, Title: title, Description: description})
}

// NotifyClient sends a notification toast to one client.
func (r *Room) NotifyClient(id, level, title, description string) {
	r.sendTo(id, NotificationMessage{Type: MsgNotification, Level: level, Title: title, Description: description})
}

// StartingCashCents is the configured starting cash in cents.
func (r *Room) StartingCashCents() int64 {
	return money.ToCents(r.settings.StartingCash)
}

// Views and fan-out.

// roomState snapshots the room for ROOM_STATE.
func (r *Room) roomState() RoomStateMessage {
	infos := make([]ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		infos = append(infos, c.info())
	}
	return RoomStateMessage{
		Type:     MsgRoomState,
		RoomID:   r.ID,
		Paused:   r.sim.IsPaused(),
		Started:  r.started,
		Ended:    r.ended,
		Settings: r.settings,
		Clock:    r.sim.Clock(),
		Clients:  infos,
		Price:    money.ToDollars(r.sim.MarketPrice()),
	}
}

// movementMessage builds STOCK_MOVEMENT at the given price with the
// current book depth.
func (r *Room) movementMessage(price int64) StockMovementMessage {
	bids, asks := r.ex.Depth()
	return StockMovementMessage{
		Type:  MsgStockMovement,
		Price: money.ToDollars(price),
		Depth: [2][][2]float64{depthDollars(bids), depthDollars(asks)},
	}
}

func depthDollars(levels [][2]int64) [][2]float64 {
	out := make([][2]float64, len(levels))
	for i, l := range levels {
		out[i] = [2]float64{money.ToDollars(l[0]), float64(l[1])}
	}
	return out
}

// pushPortfolio sends c its portfolio valued at the market price.
func (r *Room) pushPortfolio(c *Client) {
	if c.part == nil {
		return
	}
	pf := c.part.Portfolio(r.ex.LastPrice())
	c.send(PortfolioMessage{
		Type: MsgPortfolio,
		ID:   c.ID,
		Value: PortfolioValue{
			Cash:   money.ToDollars(pf.Cash),
			Shares: pf.Shares,
			PnL:    money.ToDollars(pf.PnL),
		},
	})
}

// broadcast sends msg to every connected client, spectators included.
func (r *Room) broadcast(msg any) {
	for _, c := range r.clients {
		c.send(msg)
	}
}

func (r *Room) sendTo(id string, msg any) {
	if c := r.clientByID(id); c != nil {
		c.send(msg)
	}
}

func (r *Room) clientByID(id string) *Client {
	for _, c := range r.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// participantIDs lists the clients who hold participants, the audience
// for briefcase offers.
func (r *Room) participantIDs() []string {
	ids := make([]string, 0, len(r.clients))
	for _, c := range r.clients {
		if !c.Spectator {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
