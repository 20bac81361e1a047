package store

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/logger"
	"github.com/spigell/salary-spy/internal/salary"
)

const (
	restPath        = "/rest/v1/"
	selectColumns   = "employer,job_title,city,salary,year,source"
	// Ties on salary are broken on the selected columns; the table has no key we rely on.
	orderColumns    = "salary.desc,employer.asc,job_title.asc,city.asc,year.desc"
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/salary-spy"
	// maxErrorBody limits how much of an error response ends up in the error.
	maxErrorBody = 200
)

// REST queries a PostgREST endpoint such as the one exposed by Supabase.
type REST struct {
	baseURL    string
	key        string
	table      string
	logger     *zap.Logger
	now        func() time.Time
	HTTPClient *http.Client
	UserAgent  string
}

// NewREST validates the endpoint and prepares the HTTP client.
func NewREST(cfg Config, log *zap.Logger) (*REST, error) {
	cfg = cfg.withDefaults()

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store url must be http or https, got %q", cfg.URL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("store url %q has no host", cfg.URL)
	}

	return &REST{
		baseURL: strings.TrimRight(u.String(), "/"),
		key:     cfg.Key,
		table:   cfg.Table,
		logger:  logger.WithFields(log),
		now:     time.Now,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		UserAgent: userAgent,
	}, nil
}

func (c *REST) Search(ctx context.Context, q salary.Query) ([]salary.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+restPath+url.PathEscape(c.table), nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.URL.RawQuery = buildParams(q).Encode()

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	items, err := c.parseItems(resp)
	if err != nil {
		return nil, err
	}

	var rows []row
	cfg := &mapstructure.DecoderConfig{
		Result:           &rows,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode salary rows: %w", err)
	}

	return toRecords(rows, c.now(), c.logger), nil
}

// Close is a no-op; the HTTP client keeps no resources worth releasing.
func (c *REST) Close() error { return nil }

func (c *REST) parseItems(resp *http.Response) ([]map[string]any, error) {
	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		body = gzipReader
	}

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(body, 4*maxErrorBody))
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, logger.TruncateForLog(string(data), maxErrorBody))
	}

	var items []map[string]any
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return items, nil
}

func (c *REST) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *REST) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.key))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// buildParams translates a query into PostgREST filters. Empty terms add no
// filter so they match every row.
// A term PostgREST cannot express exactly is sent without a row limit, so the
// gateway matcher sees every candidate before it limits.
func buildParams(q salary.Query) url.Values {
	params := url.Values{}
	params.Set("select", selectColumns)

	exact := true
	for _, f := range []struct {
		column string
		term   string
	}{
		{column: "employer", term: q.Company},
		{column: "job_title", term: q.Role},
	} {
		if f.term == "" {
			continue
		}
		pattern, ok := ilikePattern(f.term)
		params.Set(f.column, "ilike."+pattern)
		exact = exact && ok
	}

	params.Set("order", orderColumns)
	if q.Limit > 0 && exact {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	return params
}

// ilikePattern escapes a substring term for a PostgREST ilike filter.
// PostgREST turns every * into %, so a literal * falls back to the single
// character wildcard and the pattern is no longer exact. Other reserved
// characters are literal inside a single column filter.
func ilikePattern(term string) (string, bool) {
	escaped := likeEscaper.Replace(term)
	exact := !strings.Contains(escaped, "*")
	escaped = strings.ReplaceAll(escaped, "*", "_")
	return "*" + escaped + "*", exact
}
