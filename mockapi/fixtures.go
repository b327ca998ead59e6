// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Nickname     string          `json:"nickname"`
	Country      string          `json:"country"`
	Status       string          `json:"status"`
	KYCLevel     int             `json:"kycLevel"`
	VIPLevel     int             `json:"vipLevel"`
	BalanceUSDT  decimal.Decimal `json:"balanceUsdt"`
	RegisteredAt time.Time       `json:"registeredAt"`
	LastLoginAt  time.Time       `json:"lastLoginAt"`
	TwoFAEnabled bool            `json:"twoFaEnabled"`
	InviterID    string          `json:"inviterId,omitempty"`
}

type Balance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

type KYCApplication struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Level        int        `json:"level"`
	FullName     string     `json:"fullName"`
	DocumentType string     `json:"documentType"`
	Country      string     `json:"country"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	Reviewer     string     `json:"reviewer,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`
}

type Deposit struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Currency      string          `json:"currency"`
	Chain         string          `json:"chain"`
	Amount        decimal.Decimal `json:"amount"`
	TxHash        string          `json:"txHash"`
	Confirmations int             `json:"confirmations"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type Withdrawal struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Currency  string          `json:"currency"`
	Chain     string          `json:"chain"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Address   string          `json:"address"`
	RiskLevel string          `json:"riskLevel"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Wallet struct {
	Currency    string          `json:"currency"`
	Chain       string          `json:"chain"`
	Address     string          `json:"address"`
	HotBalance  decimal.Decimal `json:"hotBalance"`
	ColdBalance decimal.Decimal `json:"coldBalance"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Filled    decimal.Decimal `json:"filled"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Position struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Symbol           string          `json:"symbol"`
	Side             string          `json:"side"`
	Size             decimal.Decimal `json:"size"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
	MarkPrice        decimal.Decimal `json:"markPrice"`
	LiquidationPrice decimal.Decimal `json:"liquidationPrice"`
	Leverage         int             `json:"leverage"`
	MarginMode       string          `json:"marginMode"`
	UnrealizedPnL    decimal.Decimal `json:"unrealizedPnl"`
	OpenedAt         time.Time       `json:"openedAt"`
}

type Trade struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Fee        decimal.Decimal `json:"fee"`
	ExecutedAt time.Time       `json:"executedAt"`
}

type FeeTier struct {
	Level           int             `json:"level"`
	MakerFee        decimal.Decimal `json:"makerFee"`
	TakerFee        decimal.Decimal `json:"takerFee"`
	Min30dVolume    decimal.Decimal `json:"min30dVolume"`
	WithdrawalLimit decimal.Decimal `json:"withdrawalLimit"`
}

type MarginTier struct {
	Symbol                string          `json:"symbol"`
	Tier                  int             `json:"tier"`
	MaxLeverage           int             `json:"maxLeverage"`
	MaintenanceMarginRate decimal.Decimal `json:"maintenanceMarginRate"`
	MaxPosition           decimal.Decimal `json:"maxPosition"`
}

type RiskRule struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Threshold decimal.Decimal `json:"threshold"`
	Action    string          `json:"action"`
	Enabled   bool            `json:"enabled"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type TradingPair struct {
	Symbol         string          `json:"symbol"`
	Base           string          `json:"base"`
	Quote          string          `json:"quote"`
	Status         string          `json:"status"`
	PricePrecision int             `json:"pricePrecision"`
	QtyPrecision   int             `json:"qtyPrecision"`
	MinQty         decimal.Decimal `json:"minQty"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	Operator  string    `json:"operator"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	PublishedAt time.Time `json:"publishedAt"`
}

type DailyReport struct {
	Date             string          `json:"date"`
	NewUsers         int             `json:"newUsers"`
	ActiveUsers      int             `json:"activeUsers"`
	TradingVolume    decimal.Decimal `json:"tradingVolume"`
	FeeIncome        decimal.Decimal `json:"feeIncome"`
	DepositVolume    decimal.Decimal `json:"depositVolume"`
	WithdrawalVolume decimal.Decimal `json:"withdrawalVolume"`
}

// Fixtures is the in-memory data set every responder reads from. It is built
// once and never written afterwards.
type Fixtures struct {
	Users         []User
	KYC           []KYCApplication
	Deposits      []Deposit
	Withdrawals   []Withdrawal
	Wallets       []Wallet
	Orders        []Order
	Positions     []Position
	Trades        []Trade
	FeeTiers      []FeeTier
	MarginTiers   []MarginTier
	RiskRules     []RiskRule
	TradingPairs  []TradingPair
	AuditLogs     []AuditLog
	Announcements []Announcement
	Reports       []DailyReport
}

var (
	countries  = []string{"SG", "HK", "JP", "KR", "DE", "GB", "AE", "BR", "TR", "VN"}
	currencies = []string{"BTC", "ETH", "USDT", "USDC", "SOL", "XRP"}
	chains     = map[string]string{
		"BTC": "Bitcoin", "ETH": "ERC20", "USDT": "TRC20", "USDC": "ERC20", "SOL": "Solana", "XRP": "XRP Ledger",
	}
	symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT", "ETHBTC"}
	prices  = map[string]float64{
		"BTCUSDT": 67250, "ETHUSDT": 3480, "SOLUSDT": 148, "XRPUSDT": 0.52, "ETHBTC": 0.0518,
	}
	operators = []string{"admin", "ops.lee", "risk.chen", "finance.wu", "support.kim"}
)

type generator struct {
	rng *rand.Rand
	now time.Time
}

// NewFixtures generates a data set from seed. Equal seeds give equal data
// apart from timestamps, which are relative to now.
func NewFixtures(seed int64, now time.Time) *Fixtures {
	g := &generator{rng: rand.New(rand.NewSource(seed)), now: now.UTC().Truncate(time.Second)}

	f := &Fixtures{}
	f.Users = g.users(120)
	f.KYC = g.kyc(f.Users, 45)
	f.Deposits = g.deposits(f.Users, 80)
	f.Withdrawals = g.withdrawals(f.Users, 70)
	f.Wallets = g.wallets()
	f.Orders = g.orders(f.Users, 150)
	f.Positions = g.positions(f.Users, 60)
	f.Trades = g.trades(f.Orders, 200)
	f.FeeTiers = g.feeTiers()
	f.MarginTiers = g.marginTiers()
	f.RiskRules = g.riskRules()
	f.TradingPairs = g.tradingPairs()
	f.AuditLogs = g.auditLogs(90)
	f.Announcements = g.announcements(16)
	f.Reports = g.reports(30)
	return f
}

func (g *generator) pick(xs []string) string { return xs[g.rng.Intn(len(xs))] }

func (g *generator) id() string {
	return uuid.Must(uuid.NewRandomFromReader(g.rng)).String()
}

func (g *generator) ago(max time.Duration) time.Time {
	return g.now.Add(-time.Duration(g.rng.Int63n(int64(max))))
}

// amount returns a decimal in [0, max) with the given number of places.
func (g *generator) amount(max float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(g.rng.Float64() * max).Round(places)
}

func (g *generator) hex(n int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[g.rng.Intn(len(digits))]
	}
	return string(b)
}

func (g *generator) users(n int) []User {
	statuses := []string{"active", "active", "active", "active", "disabled", "suspended"}
	out := make([]User, n)
	for i := range out {
		registered := g.ago(365 * 24 * time.Hour)
		u := User{
			ID:           fmt.Sprintf("U%06d", 100001+i),
			Email:        fmt.Sprintf("trader%03d@example.com", i+1),
			Nickname:     fmt.Sprintf("trader_%03d", i+1),
			Country:      g.pick(countries),
			Status:       g.pick(statuses),
			KYCLevel:     g.rng.Intn(4),
			VIPLevel:     g.rng.Intn(6),
			BalanceUSDT:  g.amount(250000, 2),
			RegisteredAt: registered,
			LastLoginAt:  registered.Add(time.Duration(g.rng.Int63n(int64(g.now.Sub(registered)) + 1))),
			TwoFAEnabled: g.rng.Intn(3) > 0,
		}
		if i > 0 && g.rng.Intn(4) == 0 {
			u.InviterID = out[g.rng.Intn(i)].ID
		}
		out[i] = u
	}
	return out
}

func (g *generator) kyc(users []User, n int) []KYCApplication {
	statuses := []string{"pending", "pending", "approved", "rejected"}
	docs := []string{"passport", "id_card", "driver_license"}
	reasons := []string{"Document expired", "Photo is blurry", "Name mismatch"}
	out := make([]KYCApplication, n)
	for i := range out {
		u := users[g.rng.Intn(len(users))]
		a := KYCApplication{
			ID:           fmt.Sprintf("KYC%05d", i+1),
			UserID:       u.ID,
			Level:        1 + g.rng.Intn(3),
			FullName:     fmt.Sprintf("Applicant %d", i+1),
			DocumentType: g.pick(docs),
			Country:      u.Country,
			Status:       g.pick(statuses),
			SubmittedAt:  g.ago(60 * 24 * time.Hour),
		}
		if a.Status != "pending" {
			reviewed := a.SubmittedAt.Add(time.Duration(1+g.rng.Intn(48)) * time.Hour)
			a.ReviewedAt = &reviewed
			a.Reviewer = g.pick(operators)
		}
		if a.Status == "rejected" {
			a.RejectReason = g.pick(reasons)
		}
		out[i] = a
	}
	return out
}

func (g *generator) deposits(users []User, n int) []Deposit {
	statuses := []string{"confirming", "completed", "completed", "completed", "failed"}
	out := make([]Deposit, n)
	for i := range out {
		cur := g.pick(currencies)
		d := Deposit{
			ID:        g.id(),
			UserID:    users[g.rng.Intn(len(users))].ID,
			Currency:  cur,
			Chain:     chains[cur],
			Amount:    g.amount(50000, 6),
			TxHash:    "0x" + g.hex(64),
			Status:    g.pick(statuses),
			CreatedAt: g.ago(30 * 24 * time.Hour),
		}
		d.Confirmations = 12 + g.rng.Intn(20)
		if d.Status == "confirming" {
			d.Confirmations = g.rng.Intn(12)
		}
		out[i] = d
	}
	return out
}

func (g *generator) withdrawals(users []User, n int) []Withdrawal {
	statuses := []string{"pending", "pending", "approved", "rejected", "completed"}
	risks := []string{"low", "low", "medium", "high"}
	out := make([]Withdrawal, n)
	for i := range out {
		cur := g.pick(currencies)
		out[i] = Withdrawal{
			ID:        g.id(),
			UserID:    users[g.rng.Intn(len(users))].ID,
			Currency:  cur,
			Chain:     chains[cur],
			Amount:    g.amount(20000, 6),
			Fee:       g.amount(5, 6),
			Address:   "0x" + g.hex(40),
			RiskLevel: g.pick(risks),
			Status:    g.pick(statuses),
			CreatedAt: g.ago(30 * 24 * time.Hour),
		}
	}
	return out
}

func (g *generator) wallets() []Wallet {
	out := make([]Wallet, len(currencies))
	for i, cur := range currencies {
		out[i] = Wallet{
			Currency:    cur,
			Chain:       chains[cur],
			Address:     "0x" + g.hex(40),
			HotBalance:  g.amount(1000, 6),
			ColdBalance: g.amount(100000, 6),
		}
	}
	return out
}

func (g *generator) orders(users []User, n int) []Order {
	statuses := []string{"new", "partially_filled", "filled", "filled", "canceled"}
	types := []string{"limit", "limit", "market", "stop_limit"}
	out := make([]Order, n)
	for i := range out {
		sym := g.pick(symbols)
		qty := g.amount(10, 4).Add(decimal.New(1, -4))
		o := Order{
			ID:        g.id(),
			UserID:    users[g.rng.Intn(len(users))].ID,
			Symbol:    sym,
			Side:      g.pick([]string{"buy", "sell"}),
			Type:      g.pick(types),
			Price:     decimal.NewFromFloat(prices[sym] * (0.95 + g.rng.Float64()*0.1)).Round(4),
			Quantity:  qty,
			Status:    g.pick(statuses),
			CreatedAt: g.ago(7 * 24 * time.Hour),
		}
		switch o.Status {
		case "filled":
			o.Filled = qty
		case "partially_filled":
			o.Filled = qty.Mul(decimal.NewFromFloat(g.rng.Float64())).Round(4)
		default:
			o.Filled = decimal.Zero
		}
		out[i] = o
	}
	return out
}

func (g *generator) positions(users []User, n int) []Position {
	leverages := []int{1, 2, 3, 5, 10, 20, 50, 100}
	out := make([]Position, n)
	for i := range out {
		sym := g.pick(symbols[:4])
		entry := decimal.NewFromFloat(prices[sym] * (0.9 + g.rng.Float64()*0.2)).Round(4)
		mark := decimal.NewFromFloat(prices[sym]).Round(4)
		size := g.amount(50, 3).Add(decimal.New(1, -3))
		lev := leverages[g.rng.Intn(len(leverages))]
		side := g.pick([]string{"long", "short"})

		pnl := mark.Sub(entry).Mul(size)
		// a long is liquidated below entry, a short above it
		liqOffset := entry.Div(decimal.NewFromInt(int64(lev)))
		liq := entry.Sub(liqOffset)
		if side == "short" {
			pnl = pnl.Neg()
			liq = entry.Add(liqOffset)
		}
		out[i] = Position{
			ID:               g.id(),
			UserID:           users[g.rng.Intn(len(users))].ID,
			Symbol:           sym,
			Side:             side,
			Size:             size,
			EntryPrice:       entry,
			MarkPrice:        mark,
			LiquidationPrice: liq.Round(4),
			Leverage:         lev,
			MarginMode:       g.pick([]string{"cross", "isolated"}),
			UnrealizedPnL:    pnl.Round(2),
			OpenedAt:         g.ago(14 * 24 * time.Hour),
		}
	}
	return out
}

func (g *generator) trades(orders []Order, n int) []Trade {
	out := make([]Trade, n)
	feeRate := decimal.New(1, -3)
	for i := range out {
		o := orders[g.rng.Intn(len(orders))]
		qty := o.Quantity.Mul(decimal.NewFromFloat(0.1 + g.rng.Float64()*0.9)).Round(4)
		out[i] = Trade{
			ID:         g.id(),
			OrderID:    o.ID,
			UserID:     o.UserID,
			Symbol:     o.Symbol,
			Side:       o.Side,
			Price:      o.Price,
			Quantity:   qty,
			Fee:        o.Price.Mul(qty).Mul(feeRate).Round(6),
			ExecutedAt: o.CreatedAt.Add(time.Duration(g.rng.Intn(3600)) * time.Second),
		}
	}
	return out
}

func (g *generator) feeTiers() []FeeTier {
	out := make([]FeeTier, 6)
	for i := range out {
		out[i] = FeeTier{
			Level:           i,
			MakerFee:        decimal.New(int64(10-i*2), -4),
			TakerFee:        decimal.New(int64(10-i), -4),
			Min30dVolume:    decimal.NewFromInt(int64(i) * 5_000_000),
			WithdrawalLimit: decimal.NewFromInt(int64(i+1) * 100),
		}
	}
	return out
}

func (g *generator) marginTiers() []MarginTier {
	var out []MarginTier
	maxLev := []int{100, 50, 20, 10, 5}
	for _, sym := range symbols[:4] {
		for tier, lev := range maxLev {
			out = append(out, MarginTier{
				Symbol:                sym,
				Tier:                  tier + 1,
				MaxLeverage:           lev,
				MaintenanceMarginRate: decimal.New(int64(5*(tier+1)), -3),
				MaxPosition:           decimal.NewFromInt(int64(tier+1) * 250_000),
			})
		}
	}
	return out
}

func (g *generator) riskRules() []RiskRule {
	rules := []struct{ name, typ, action string }{
		{"Large withdrawal review", "withdrawal_amount", "manual_review"},
		{"New device withdrawal hold", "device_change", "hold_24h"},
		{"Rapid deposit-withdraw", "turnover_ratio", "manual_review"},
		{"Login from new country", "geo_change", "require_2fa"},
		{"Failed login burst", "login_failures", "lock_account"},
		{"Wash trading pattern", "self_trade", "flag"},
		{"Position concentration", "position_share", "reduce_only"},
		{"Excessive order rate", "order_rate", "throttle"},
		{"Sanctioned address", "address_screening", "block"},
		{"High leverage new user", "leverage_new_user", "cap_leverage"},
		{"Dormant account reactivation", "dormant_login", "require_kyc"},
		{"API key abuse", "api_rate", "revoke_key"},
	}
	out := make([]RiskRule, len(rules))
	for i, r := range rules {
		out[i] = RiskRule{
			ID:        fmt.Sprintf("RR%03d", i+1),
			Name:      r.name,
			Type:      r.typ,
			Threshold: decimal.NewFromInt(int64(1 + g.rng.Intn(100))),
			Action:    r.action,
			Enabled:   g.rng.Intn(5) > 0,
			UpdatedAt: g.ago(90 * 24 * time.Hour),
		}
	}
	return out
}

func (g *generator) tradingPairs() []TradingPair {
	out := make([]TradingPair, len(symbols))
	for i, sym := range symbols {
		base, quote := sym[:len(sym)-4], sym[len(sym)-4:]
		if sym == "ETHBTC" {
			base, quote = "ETH", "BTC"
		}
		out[i] = TradingPair{
			Symbol:         sym,
			Base:           base,
			Quote:          quote,
			Status:         "trading",
			PricePrecision: 2 + g.rng.Intn(4),
			QtyPrecision:   2 + g.rng.Intn(4),
			MinQty:         decimal.New(1, -4),
		}
	}
	return out
}

func (g *generator) auditLogs(n int) []AuditLog {
	actions := []string{"user.disable", "user.enable", "kyc.approve", "kyc.reject", "withdrawal.approve",
		"withdrawal.reject", "config.fee.update", "risk.rule.update", "order.cancel"}
	out := make([]AuditLog, n)
	for i := range out {
		out[i] = AuditLog{
			ID:        fmt.Sprintf("AL%06d", i+1),
			Operator:  g.pick(operators),
			Action:    g.pick(actions),
			Target:    fmt.Sprintf("U%06d", 100001+g.rng.Intn(120)),
			IP:        fmt.Sprintf("10.%d.%d.%d", g.rng.Intn(256), g.rng.Intn(256), 1+g.rng.Intn(254)),
			CreatedAt: g.ago(30 * 24 * time.Hour),
		}
	}
	return out
}

func (g *generator) announcements(n int) []Announcement {
	out := make([]Announcement, n)
	for i := range out {
		out[i] = Announcement{
			ID:          fmt.Sprintf("AN%04d", i+1),
			Title:       fmt.Sprintf("Scheduled maintenance notice #%d", i+1),
			Status:      g.pick([]string{"draft", "published", "published", "archived"}),
			PublishedAt: g.ago(120 * 24 * time.Hour),
		}
	}
	return out
}

func (g *generator) reports(days int) []DailyReport {
	out := make([]DailyReport, days)
	for i := range out {
		volume := g.amount(500_000_000, 2)
		out[i] = DailyReport{
			Date:             g.now.AddDate(0, 0, -i).Format("2006-01-02"),
			NewUsers:         50 + g.rng.Intn(400),
			ActiveUsers:      2000 + g.rng.Intn(8000),
			TradingVolume:    volume,
			FeeIncome:        volume.Mul(decimal.New(6, -4)).Round(2),
			DepositVolume:    g.amount(50_000_000, 2),
			WithdrawalVolume: g.amount(40_000_000, 2),
		}
	}
	return out
}
