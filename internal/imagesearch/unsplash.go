package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoKey     = errors.New("imagesearch: no access key configured")
	ErrNoResults = errors.New("imagesearch: no results")
)

type Provider interface {
	Search(ctx context.Context, query string) (string, error)
}

type Unsplash struct {
	AccessKey  string
	Endpoint   string // default https://api.unsplash.com
	Width      int
	HTTPClient *http.Client
}

type unsplashSearchResponse struct {
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		AltDescription string `json:"alt_description"`
	} `json:"results"`
	Total int `json:"total"`
}

func (u *Unsplash) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(u.AccessKey) == "" {
		return "", ErrNoKey
	}
	endpoint := u.Endpoint
	if endpoint == "" {
		endpoint = "https://api.unsplash.com"
	}
	width := u.Width
	if width <= 0 {
		width = 1200
	}
	hc := u.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")
	reqURL := strings.TrimRight(endpoint, "/") + "/search/photos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+u.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("unsplash: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unsplash: decode: %w", err)
	}
	if len(out.Results) == 0 || out.Results[0].URLs.Regular == "" {
		return "", ErrNoResults
	}
	return sizedURL(out.Results[0].URLs.Regular, width)
}

// sizedURL adds the imgix crop parameters, keeping any query the API
// already put on the URL (ixid etc).
func sizedURL(raw string, width int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unsplash: image url: %w", err)
	}
	q := u.Query()
	q.Set("auto", "format")
	q.Set("fit", "crop")
	q.Set("w", strconv.Itoa(width))
	q.Set("q", "80")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
