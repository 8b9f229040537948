package httpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/valyala/fasthttp"
)

// DefaultTimeout is used when neither the config nor the context sets a deadline.
const DefaultTimeout = 30 * time.Second

type Config struct {
	// Enable debug mode
	Debug bool

	// Default headers
	Headers map[string]string

	// Request timeout (default: DefaultTimeout)
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	client  *fasthttp.Client
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	if baseURL == "" {
		return nil, errors.Wrap(errs.ArgumentRequired, "base url is required")
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	if parsedBaseURL.Scheme == "" || parsedBaseURL.Host == "" {
		return nil, errors.Wrapf(errs.InvalidArgument, "base url %q must be absolute", baseURL)
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	if len(cf.Headers) == 0 {
		cf.Headers = make(map[string]string)
	}
	cf.Timeout = utils.Default(cf.Timeout, DefaultTimeout)
	return &Client{
		baseURL: parsedBaseURL,
		client: &fasthttp.Client{
			Name:                     "pool-portal",
			NoDefaultUserAgentHeader: false,
			ReadTimeout:              cf.Timeout,
			WriteTimeout:             cf.Timeout,
		},
		Config: cf,
	}, nil
}

type RequestOptions struct {
	path     string
	method   string
	Body     []byte
	Query    url.Values
	Header   map[string]string
	FormData url.Values
}

type HttpResponse struct {
	URL string
	fasthttp.Response
}

// IsSuccess reports whether the response carries a 2xx status code.
func (r *HttpResponse) IsSuccess() bool {
	code := r.StatusCode()
	return code >= fasthttp.StatusOK && code < fasthttp.StatusMultipleChoices
}

func (r *HttpResponse) UnmarshalBody(out any) error {
	body, err := r.BodyUncompressed()
	if err != nil {
		return errors.Wrapf(err, "can't uncompress body from %v", r.URL)
	}
	contentType := strings.ToLower(string(r.Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrapf(err, "can't unmarshal json body from %s, %q", r.URL, string(body))
		}
		return nil
	case strings.HasPrefix(contentType, "text/plain"):
		return errors.Errorf("can't unmarshal plain text %q", string(body))
	default:
		return errors.Errorf("unsupported content type: %s, contents: %v", contentType, string(body))
	}
}

// requestURL joins the request path onto the base url, keeps a trailing slash
// when the request path has one and merges query parameters.
func (h *Client) requestURL(reqPath string, query url.Values) string {
	parsedUrl := h.BaseURL()
	joined := path.Join("/", parsedUrl.Path, reqPath)
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	parsedUrl.Path = joined

	merged := parsedUrl.Query()
	for k, vs := range query {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	parsedUrl.RawQuery = merged.Encode()
	return parsedUrl.String()
}

func (h *Client) request(ctx context.Context, reqOptions RequestOptions) (*HttpResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	start := time.Now()
	req := fasthttp.AcquireRequest()
	req.Header.SetMethod(reqOptions.method)
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range reqOptions.Header {
		req.Header.Set(k, v)
	}

	url := h.requestURL(reqOptions.path, reqOptions.Query)
	req.SetRequestURI(url)
	if reqOptions.Body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(reqOptions.Body)
	} else if reqOptions.FormData != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(reqOptions.FormData.Encode())
	}

	deadline := time.Now().Add(h.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	resp := fasthttp.AcquireResponse()
	startDo := time.Now()

	defer func() {
		if h.Debug {
			logger := logger.With(
				slog.String("method", reqOptions.method),
				slog.String("url", url),
				slog.Duration("duration", time.Since(start)),
				slog.Duration("latency", time.Since(startDo)),
				slog.Int("req_content_length", req.Header.ContentLength()),
				slog.Int("status_code", resp.StatusCode()),
				slog.String("resp_content_type", string(resp.Header.ContentType())),
				slog.Int("resp_content_length", len(resp.Body())),
			)
			logger.DebugContext(ctx, "Finished make request", slog.String("package", "httpclient"))
		}

		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()

	if err := h.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, errors.Wrapf(errs.Timeout, "url: %s", url)
		}
		return nil, errors.Wrapf(err, "url: %s", url)
	}

	httpResponse := HttpResponse{
		URL: url,
	}
	resp.CopyTo(&httpResponse.Response)

	return &httpResponse, nil
}

// BaseURL returns the cloned base URL of the client.
func (h *Client) BaseURL() *url.URL {
	u := *h.baseURL
	return &u
}

func (h *Client) Do(ctx context.Context, method, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	reqOptions.path = path
	reqOptions.method = method
	return h.request(ctx, reqOptions)
}

func (h *Client) Get(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	return h.Do(ctx, fasthttp.MethodGet, path, reqOptions)
}

func (h *Client) Post(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	return h.Do(ctx, fasthttp.MethodPost, path, reqOptions)
}

func (h *Client) Put(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	return h.Do(ctx, fasthttp.MethodPut, path, reqOptions)
}

func (h *Client) Patch(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	return h.Do(ctx, fasthttp.MethodPatch, path, reqOptions)
}

func (h *Client) Delete(ctx context.Context, path string, reqOptions RequestOptions) (*HttpResponse, error) {
	return h.Do(ctx, fasthttp.MethodDelete, path, reqOptions)
}
