package cbr

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable means the feed could not be reached or answered with nothing usable.
var ErrUnavailable = errors.New("rate feed unavailable")

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// FetchRates loads the daily quotes for date (DD/MM/YYYY). An empty date asks for the latest.
func (c *Client) FetchRates(ctx context.Context, date string) (*ValCurs, error) {
	url := c.baseURL + "/XML_daily.asp"
	if date != "" {
		url = fmt.Sprintf("%s?date_req=%s", url, date)
	}

	c.logger.Debugf("Fetching rates from URL: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Errorf("Failed to create request: %v", err)
		return nil, fmt.Errorf("create request: %w", err)
	}

	// the feed rejects clients without a browser-like agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("Failed to fetch rates: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debugf("Response status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warnf("Rate feed answered with status %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorf("Failed to read response body: %v", err)
		return nil, fmt.Errorf("%w: read response body: %w", ErrUnavailable, err)
	}
	if len(body) == 0 {
		c.logger.Error("Empty response body from rate feed")
		return nil, fmt.Errorf("%w: empty response body", ErrUnavailable)
	}

	c.logger.Debugf("Response body length: %d bytes", len(body))

	valCurs, err := Decode(body)
	if err != nil {
		c.logger.Errorf("Failed to parse rate feed XML: %v", err)
		c.logger.Debugf("First 500 chars: %s", string(body)[:min(500, len(body))])
		return nil, err
	}

	if len(valCurs.Valutes) == 0 {
		c.logger.Warn("No valutes found in parsed response")
	} else {
		c.logger.Debugf("Parsed %d currencies for %s", len(valCurs.Valutes), valCurs.Date)
	}

	return valCurs, nil
}

// Decode parses a feed document, transcoding windows-1251 on the fly.
func Decode(body []byte) (*ValCurs, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "windows-1251", "cp1251":
			return charmap.Windows1251.NewDecoder().Reader(input), nil
		case "utf-8", "utf8":
			return input, nil
		}
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}

	var valCurs ValCurs
	if err := decoder.Decode(&valCurs); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	return &valCurs, nil
}
