package cbr

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
	"VacancyPulse/internal/service/ratelimit"
	xhttp "VacancyPulse/pkg/http"
	"VacancyPulse/pkg/util"

	"golang.org/x/text/encoding/charmap"
)

// DefaultURL is the daily rates endpoint of the Central Bank of Russia.
const DefaultURL = "http://www.cbr.ru/scripts/XML_daily.asp"

// limiterKey is the bucket shared by all requests to one endpoint.
const limiterKey = "cbr"

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// Client fetches monthly exchange rates into roubles.
type Client struct {
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	baseURL string
}

var _ repository.RateSource = (*Client)(nil)

// NewClient creates a CBR client. limiter may be nil.
func NewClient(httpClient *xhttp.Client, limiter *ratelimit.Limiter, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		http:    httpClient,
		limiter: limiter,
		baseURL: baseURL,
	}
}

// Rates returns CharCode -> roubles per unit for the first day of period.
func (c *Client) Rates(ctx context.Context, period models.YearMonth) (map[string]float64, error) {
	if !period.Valid() {
		return nil, &models.RateFetchError{Period: period, Err: fmt.Errorf("invalid period")}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, &models.RateFetchError{Period: period, Err: err}
		}
	}

	body, err := c.http.Fetch(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"date_req": {fmt.Sprintf("01/%02d/%04d", period.Month, period.Year)},
		},
	})
	if err != nil {
		return nil, &models.RateFetchError{Period: period, Err: err}
	}

	rates, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, &models.RateFetchError{Period: period, Err: err}
	}
	return rates, nil
}

// Decode parses a ValCurs document. windows-1251 and UTF-8 payloads are accepted.
func Decode(r io.Reader) (map[string]float64, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var doc valCurs
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ValCurs: %w", err)
	}
	if len(doc.Valutes) == 0 {
		return nil, fmt.Errorf("empty ValCurs for %q", doc.Date)
	}

	rates := make(map[string]float64, len(doc.Valutes))
	for _, v := range doc.Valutes {
		code := strings.TrimSpace(v.CharCode)
		value, err := util.ParseDecimalComma(strings.TrimSpace(v.Value))
		if err != nil {
			return nil, fmt.Errorf("%s value %q: %w", code, v.Value, err)
		}
		nominal, err := util.ParseDecimalComma(strings.TrimSpace(v.Nominal))
		if err != nil || nominal <= 0 {
			return nil, fmt.Errorf("%s nominal %q invalid", code, v.Nominal)
		}
		rates[code] = value / nominal
	}
	return rates, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "utf8":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
