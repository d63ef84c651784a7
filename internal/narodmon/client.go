// Package narodmon is a small client for the Narodmon sensor-network API.
//
// Only the two calls the aggregator needs are implemented:
//   - appInit: the sensor-type catalog
//   - sensorsNearby: devices and their latest readings around a point
package narodmon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const (
	DefaultURL = "http://api.narodmon.ru"

	appVersion  = "1.1"
	appPlatform = "6.0.1"
)

var (
	ErrRequest = errors.New("error making narodmon request")
	ErrStatus  = errors.New("error status from narodmon")
	ErrAPI     = errors.New("narodmon api error")
)

// Options configures a Client. Zero values fall back to the API defaults.
type Options struct {
	URL            string
	APIKey         string
	UUID           string
	Lang           string
	Radius         int
	UTCOffset      int
	NearbyTimeout  time.Duration
	CatalogTimeout time.Duration
}

// Client talks to the Narodmon HTTP API.
type Client struct {
	resty *resty.Client
	opts  Options
}

func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Lang == "" {
		opts.Lang = "ru"
	}
	if opts.Radius == 0 {
		opts.Radius = 10
	}
	if opts.NearbyTimeout == 0 {
		opts.NearbyTimeout = 15 * time.Second
	}
	if opts.CatalogTimeout == 0 {
		opts.CatalogTimeout = 10 * time.Second
	}

	return &Client{
		resty: resty.New().
			SetBaseURL(strings.TrimRight(opts.URL, "/")).
			SetHeader("Accept", "application/json"),
		opts: opts,
	}
}

// AppInit fetches the sensor-type catalog.
func (c *Client) AppInit(ctx context.Context) (*models.AppInitResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CatalogTimeout)
	defer cancel()

	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"version":  appVersion,
			"platform": appPlatform,
			"uuid":     c.opts.UUID,
			"lang":     c.opts.Lang,
			"utc":      strconv.Itoa(c.opts.UTCOffset),
			"api_key":  c.opts.APIKey,
		}).
		Get("/appInit")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d", ErrStatus, resp.StatusCode())
	}

	var result models.AppInitResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode appInit response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%w: %d %s", ErrAPI, result.Errno, result.Error)
	}

	return &result, nil
}

// SensorsNearby fetches devices around (lat, lon) reporting any of the given
// type-ids. typeIDs is sent verbatim, comma-joined.
func (c *Client) SensorsNearby(ctx context.Context, lat, lon float64, typeIDs string) (*models.NearbyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.NearbyTimeout)
	defer cancel()

	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":     strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":     strconv.FormatFloat(lon, 'f', -1, 64),
			"radius":  strconv.Itoa(c.opts.Radius),
			"types":   typeIDs,
			"uuid":    c.opts.UUID,
			"lang":    c.opts.Lang,
			"api_key": c.opts.APIKey,
		}).
		Get("/sensorsNearby")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d", ErrStatus, resp.StatusCode())
	}

	body := resp.Body()
	var result models.NearbyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sensorsNearby response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%w: %d %s", ErrAPI, result.Errno, result.Error)
	}

	result.Raw = json.RawMessage(body)
	return &result, nil
}

// MaskKey keeps the first and last four characters of a secret.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}
