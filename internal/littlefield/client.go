package littlefield

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"lfcli/internal/config"
)

var tracer = otel.Tracer("littlefield/client")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// TransportError reports a failed request against the Littlefield site.
// It is fatal for the whole run: no partial output is ever written.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("littlefield request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrLoginRejected means the site answered the credential submission with
// the login form again.
var ErrLoginRejected = fmt.Errorf("littlefield rejected the supplied credentials")

// Client is an authenticated session against the Littlefield simulation
// site. Authentication state lives in the cookie jar; Login must succeed
// before FetchPlot is used.
type Client struct {
	http     *resty.Client
	entryURL *url.URL
	plotURL  string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewClient builds a session client from configuration. No request is made
// until Login.
func NewClient(cfg config.LittlefieldConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entryURL, err := url.Parse(cfg.EntryURL)
	if err != nil {
		return nil, fmt.Errorf("parse entry url %q: %w", cfg.EntryURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(cfg.HTTPTimeout)

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		http:     client,
		entryURL: entryURL,
		plotURL:  cfg.PlotURL,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logger,
	}, nil
}

// Login fetches the entry page, fills the first form on it with the team
// credentials and submits it. Hidden inputs are carried over unchanged so
// the institution fields the site injects keep working.
func (c *Client) Login(ctx context.Context, teamID, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.http.R().SetContext(ctx).Get(c.entryURL.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch entry page")
		return &TransportError{URL: c.entryURL.String(), Err: err}
	}
	if res.IsError() {
		return &TransportError{URL: c.entryURL.String(), Err: fmt.Errorf("status %s", res.Status())}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fmt.Errorf("parse entry page: %w", err)
	}

	form := doc.Find("form").First()
	if form.Length() == 0 {
		span.SetStatus(codes.Error, "entry page has no login form")
		return &TransportError{URL: c.entryURL.String(), Err: fmt.Errorf("entry page has no login form")}
	}

	fields := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, sel *goquery.Selection) {
		if name := sel.AttrOr("name", ""); name != "" {
			fields[name] = sel.AttrOr("value", "")
		}
	})
	fields["id"] = teamID
	fields["password"] = password

	action, err := url.Parse(form.AttrOr("action", ""))
	if err != nil {
		return fmt.Errorf("parse login form action: %w", err)
	}
	target := c.entryURL.ResolveReference(action).String()

	res, err = c.http.R().SetContext(ctx).SetFormData(fields).Post(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return &TransportError{URL: target, Err: err}
	}
	if res.IsError() {
		return &TransportError{URL: target, Err: fmt.Errorf("status %s", res.Status())}
	}

	// A rejected login answers with the entry form again.
	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fmt.Errorf("parse login response: %w", err)
	}
	if doc.Find("input[type=password]").Length() > 0 {
		span.SetStatus(codes.Error, ErrLoginRejected.Error())
		return ErrLoginRejected
	}

	c.logger.Info("logged in to littlefield", slog.String("team", teamID))
	return nil
}

// FetchPlot retrieves the plot page for one dataset and returns its body
// text. Requests are paced by the client's rate limiter.
func (c *Client) FetchPlot(ctx context.Context, dataset string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPlot")
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	target := fmt.Sprintf("%s?data=%s&x=all", c.plotURL, url.QueryEscape(dataset))
	res, err := c.http.R().SetContext(ctx).Get(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch plot page")
		return "", &TransportError{URL: target, Err: err}
	}
	if res.IsError() {
		return "", &TransportError{URL: target, Err: fmt.Errorf("status %s", res.Status())}
	}

	c.logger.Debug("fetched plot page",
		slog.String("dataset", dataset),
		slog.Int("bytes", len(res.Body())))
	return string(res.Body()), nil
}
