package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"LevelSentinel/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{BaseURL: baseURL, APIKey: apiKey, Client: newHTTPClient(proxyURL)}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsRow decodes one compact [unix, open, high, low, close, volume] row.
type vsRow model.Bar

func (r *vsRow) UnmarshalJSON(data []byte) error {
	var row []float64
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if len(row) != 6 {
		return fmt.Errorf("bar row has %d fields, want 6", len(row))
	}
	*r = vsRow{
		Time:   time.Unix(int64(row[0]), 0).UTC(),
		Open:   row[1],
		High:   row[2],
		Low:    row[3],
		Close:  row[4],
		Volume: row[5],
	}
	return nil
}

// vsBars is the /api/v1/bars response. The server echoes the requested
// symbol and interval.
type vsBars struct {
	Symbol   string  `json:"symbol"`
	Interval string  `json:"interval"`
	Bars     []vsRow `json:"bars"`
}

// FetchBars requests the last limit bars and checks that the server answered
// for the same symbol and interval.
func (f *VsTraderFetcher) FetchBars(symbol, interval string, limit int) ([]model.Bar, error) {
	q := url.Values{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	req, err := http.NewRequest(http.MethodGet, f.BaseURL+"/api/v1/bars?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vstrader fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vstrader: status %d, body: %s", resp.StatusCode, body)
	}

	var out vsBars
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vstrader decode: %w", err)
	}
	if out.Symbol != symbol || out.Interval != interval {
		return nil, fmt.Errorf("vstrader: asked for %s %s, got %s %s", symbol, interval, out.Symbol, out.Interval)
	}

	bars := make([]model.Bar, len(out.Bars))
	for i, r := range out.Bars {
		bars[i] = model.Bar(r)
	}
	slices.SortFunc(bars, func(a, b model.Bar) int { return a.Time.Compare(b.Time) })
	return bars, nil
}
