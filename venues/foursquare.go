// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venues

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/venue-vote/models"
)

const (
	DefaultFoursquareBaseURL = "https://api.foursquare.com"

	foursquareVersion        = "20190724"
	foursquareFoodCategoryID = "4d4b7105d754a06374d81259"
	foursquareSearchQuery    = "lunch"
	foursquareSearchLimit    = "3"
	foursquareHTTPTimeout    = 15 * time.Second
	maxFoursquareBody        = 1 << 20
)

type FoursquareConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
}

// Foursquare searches the Foursquare v2 venue API. A search returns up to
// three food venues near the query location, each enriched with its detail
// record.
type Foursquare struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
}

func NewFoursquare(cfg FoursquareConfig) *Foursquare {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultFoursquareBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: foursquareHTTPTimeout}
	}
	return &Foursquare{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         client,
	}
}

// SearchVenues treats query as the "near" location.
func (f *Foursquare) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	body, err := f.get(ctx, "/v2/venues/search", url.Values{
		"query":      {foursquareSearchQuery},
		"near":       {query},
		"limit":      {foursquareSearchLimit},
		"categoryId": {foursquareFoodCategoryID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search venues: %w", err)
	}

	hits := gjson.GetBytes(body, "response.venues.#.id").Array()
	out := make([]models.Venue, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range hits {
		g.Go(func() error {
			v, err := f.GetVenue(gctx, id.String())
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// GetVenue fetches the detail record of a single venue.
func (f *Foursquare) GetVenue(ctx context.Context, id string) (models.Venue, error) {
	body, err := f.get(ctx, "/v2/venues/"+url.PathEscape(id), nil)
	if err != nil {
		return models.Venue{}, fmt.Errorf("failed to get venue %s: %w", id, err)
	}

	venue := gjson.GetBytes(body, "response.venue")
	if !venue.Exists() {
		return models.Venue{}, fmt.Errorf("venue %s: %w", id, ErrNotFound)
	}
	return parseFoursquareVenue(venue), nil
}

func parseFoursquareVenue(venue gjson.Result) models.Venue {
	v := models.Venue{
		ID:         venue.Get("id").String(),
		Name:       venue.Get("name").String(),
		Categories: []string{},
	}

	if u := venue.Get("url").String(); u != "" {
		v.URL = &u
	} else if u := venue.Get("canonicalUrl").String(); u != "" {
		v.URL = &u
	}

	// A zero rating means "unrated" upstream.
	if r := venue.Get("rating").Float(); r != 0 {
		v.Rating = &r
	}

	for _, name := range venue.Get("categories.#.name").Array() {
		v.Categories = append(v.Categories, name.String())
	}

	return v
}

func (f *Foursquare) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	q := url.Values{
		"client_id":     {f.clientID},
		"client_secret": {f.clientSecret},
		"v":             {foursquareVersion},
	}
	for k, vs := range params {
		q[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFoursquareBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := gjson.GetBytes(body, "meta.errorDetail").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("foursquare returned %d: %s", resp.StatusCode, detail)
	}

	return body, nil
}
