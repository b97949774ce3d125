// Package dex executes swaps on Solana through the Jupiter aggregator.
package dex

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultSwapAPI is the public Jupiter v6 endpoint.
const DefaultSwapAPI = "https://quote-api.jup.ag"

// Side is the swap direction relative to the traded token.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Pair identifies the traded token and the quote currency it is priced in.
type Pair struct {
	BaseMint      string
	BaseDecimals  int
	QuoteMint     string
	QuoteDecimals int
}

// Order is one swap to execute. AmountUSD is denominated in the quote
// currency; Price converts it to base units for sells.
type Order struct {
	Side        Side
	AmountUSD   float64
	Price       float64
	SlippageBps int
}

// Receipt describes a submitted swap.
type Receipt struct {
	Signature      string
	InAmount       string
	OutAmount      string
	PriceImpactPct float64
	Time           time.Time
}

// Quote is the Jupiter v6 quote response, passed back verbatim when
// requesting the swap transaction.
type Quote struct {
	InputMint      string  `json:"inputMint"`
	OutputMint     string  `json:"outputMint"`
	InAmount       string  `json:"inAmount"`
	OutAmount      string  `json:"outAmount"`
	OtherAmount    string  `json:"otherAmountThreshold"`
	SlippageBps    int     `json:"slippageBps"`
	RoutePlan      any     `json:"routePlan"`
	PriceImpactPct float64 `json:"priceImpactPct,string"`
}

type swapRequest struct {
	UserPublicKey    string `json:"userPublicKey"`
	WrapAndUnwrapSol bool   `json:"wrapAndUnwrapSol"`
	QuoteResponse    *Quote `json:"quoteResponse"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Executor swaps through Jupiter: quote, build, sign locally, submit via
// RPC. One Executor serves one wallet and one trading pair.
type Executor struct {
	api    *resty.Client
	rpc    *rpc.Client
	owner  solana.PrivateKey
	pair   Pair
	commit rpc.CommitmentType
	log    zerolog.Logger
	now    func() time.Time
}

func NewExecutor(apiURL, rpcURL string, owner solana.PrivateKey, pair Pair, commitment string, log zerolog.Logger) *Executor {
	if apiURL == "" {
		apiURL = DefaultSwapAPI
	}
	commit := rpc.CommitmentConfirmed
	switch commitment {
	case "processed":
		commit = rpc.CommitmentProcessed
	case "finalized":
		commit = rpc.CommitmentFinalized
	}
	api := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(15 * time.Second)

	return &Executor{
		api:    api,
		rpc:    rpc.New(rpcURL),
		owner:  owner,
		pair:   pair,
		commit: commit,
		log:    log,
		now:    time.Now,
	}
}

// SetClock overrides receipt timestamps; tests only.
func (e *Executor) SetClock(now func() time.Time) { e.now = now }

// Swap quotes and executes one order. The returned error is the real cause
// from Jupiter or the RPC node; callers decide whether it trips a breaker.
func (e *Executor) Swap(ctx context.Context, order Order) (Receipt, error) {
	inputMint, outputMint, amount, err := e.route(order)
	if err != nil {
		return Receipt{}, err
	}

	quote, err := e.quote(ctx, inputMint, outputMint, amount, order.SlippageBps)
	if err != nil {
		return Receipt{}, fmt.Errorf("quote: %w", err)
	}

	sig, err := e.sendSwap(ctx, quote)
	if err != nil {
		return Receipt{}, fmt.Errorf("swap: %w", err)
	}

	e.log.Info().
		Str("side", string(order.Side)).
		Str("signature", sig.String()).
		Float64("amount_usd", order.AmountUSD).
		Float64("price_impact_pct", quote.PriceImpactPct).
		Msg("swap submitted")

	return Receipt{
		Signature:      sig.String(),
		InAmount:       quote.InAmount,
		OutAmount:      quote.OutAmount,
		PriceImpactPct: quote.PriceImpactPct,
		Time:           e.now(),
	}, nil
}

// route maps an order onto mints and an input amount in smallest units.
func (e *Executor) route(order Order) (inputMint, outputMint string, amount uint64, err error) {
	if order.AmountUSD <= 0 {
		return "", "", 0, fmt.Errorf("order amount must be positive")
	}
	switch order.Side {
	case Buy:
		amount = toLamports(order.AmountUSD, e.pair.QuoteDecimals)
		return e.pair.QuoteMint, e.pair.BaseMint, amount, nil
	case Sell:
		if order.Price <= 0 {
			return "", "", 0, fmt.Errorf("sell order needs a positive price")
		}
		amount = toLamports(order.AmountUSD/order.Price, e.pair.BaseDecimals)
		return e.pair.BaseMint, e.pair.QuoteMint, amount, nil
	default:
		return "", "", 0, fmt.Errorf("unknown side %q", order.Side)
	}
}

func toLamports(amount float64, decimals int) uint64 {
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return uint64(amount * scale)
}

func (e *Executor) quote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*Quote, error) {
	var out Quote
	resp, err := e.api.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":        inputMint,
			"outputMint":       outputMint,
			"amount":           fmt.Sprintf("%d", amount),
			"slippageBps":      fmt.Sprintf("%d", slippageBps),
			"onlyDirectRoutes": "false",
		}).
		SetResult(&out).
		Get("/v6/quote")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("jupiter quote status %d", resp.StatusCode())
	}
	return &out, nil
}

// sendSwap asks Jupiter for a ready-to-sign transaction, signs it with the
// owner key, and submits it.
func (e *Executor) sendSwap(ctx context.Context, quote *Quote) (solana.Signature, error) {
	var sig solana.Signature

	var out swapResponse
	resp, err := e.api.R().
		SetContext(ctx).
		SetBody(swapRequest{
			UserPublicKey:    e.owner.PublicKey().String(),
			WrapAndUnwrapSol: true,
			QuoteResponse:    quote,
		}).
		SetResult(&out).
		Post("/v6/swap")
	if err != nil {
		return sig, err
	}
	if resp.IsError() {
		return sig, fmt.Errorf("jupiter swap status %d", resp.StatusCode())
	}

	raw, err := base64.StdEncoding.DecodeString(out.SwapTransaction)
	if err != nil {
		return sig, fmt.Errorf("decode tx: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return sig, fmt.Errorf("unmarshal tx: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(e.owner.PublicKey()) {
			return &e.owner
		}
		return nil
	}); err != nil {
		return sig, fmt.Errorf("sign: %w", err)
	}

	return e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: e.commit,
	})
}
