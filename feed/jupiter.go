package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultPriceAPI is the public Jupiter price endpoint.
const DefaultPriceAPI = "https://api.jup.ag/price/v2"

type jupiterPriceResponse struct {
	Data map[string]struct {
		ID        string `json:"id"`
		Price     string `json:"price"`
		ExtraInfo struct {
			ConfidenceLevel string `json:"confidenceLevel"`
		} `json:"extraInfo"`
	} `json:"data"`
}

// confidenceScore maps Jupiter's qualitative confidence level onto the
// 0..100 scale samples carry. Missing levels count as full confidence.
func confidenceScore(level string) float64 {
	switch level {
	case "high":
		return 90
	case "medium":
		return 60
	case "low":
		return 30
	default:
		return 100
	}
}

// Jupiter fetches prices from the Jupiter price API.
type Jupiter struct {
	client *resty.Client
	log    zerolog.Logger
	now    func() time.Time
}

func NewJupiter(baseURL string, timeout time.Duration, log zerolog.Logger) *Jupiter {
	if baseURL == "" {
		baseURL = DefaultPriceAPI
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	return &Jupiter{client: client, log: log, now: time.Now}
}

// SetClock overrides sample timestamps; tests only.
func (j *Jupiter) SetClock(now func() time.Time) { j.now = now }

// Price fetches the current USD price of mint.
func (j *Jupiter) Price(ctx context.Context, mint string) (Sample, error) {
	var payload jupiterPriceResponse
	resp, err := j.client.R().
		SetContext(ctx).
		SetQueryParam("ids", mint).
		SetQueryParam("showExtraInfo", "true").
		SetResult(&payload).
		Get("")
	if err != nil {
		return Sample{}, fmt.Errorf("jupiter price request: %w", err)
	}
	if resp.IsError() {
		return Sample{}, fmt.Errorf("jupiter price status %d", resp.StatusCode())
	}

	entry, ok := payload.Data[mint]
	if !ok || entry.Price == "" {
		return Sample{}, fmt.Errorf("mint %s: %w", mint, ErrNoPrice)
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil || price <= 0 {
		return Sample{}, fmt.Errorf("mint %s: bad price %q: %w", mint, entry.Price, ErrNoPrice)
	}

	return Sample{
		Price:      price,
		Confidence: confidenceScore(entry.ExtraInfo.ConfidenceLevel),
		Time:       j.now(),
	}, nil
}
