package nicolive

import (
	"context"
	"time"

	"streamlog-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	BaseUrl string
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseURL
	BaseUrl string
	// overrides the user-agent from DefaultHeaders
	UserAgent string
	// defaults to 30s
	Timeout time.Duration
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	for k, v := range DefaultHeaders() {
		client.SetHeader(k, v)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/nicolive/http")

	return &Client{
		BaseUrl: opts.BaseUrl,
		Http:    client,
	}
}

type WatchPage struct {
	StatusCode int
	Body       []byte
}

// FetchWatchPage performs a single GET of the broadcast watch page. Any
// HTTP response is a valid result, whatever its status code; only
// network-level failures return a TransportError. Retry policy belongs
// to the caller.
func (c *Client) FetchWatchPage(ctx context.Context, id string) (WatchPage, error) {
	link, err := WatchURL(c.BaseUrl, id)
	if err != nil {
		return WatchPage{}, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return WatchPage{}, &TransportError{URL: link, Err: err}
	}

	return WatchPage{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}
