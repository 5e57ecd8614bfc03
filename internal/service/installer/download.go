package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oshokin/typr-dist/internal/logger"
)

const (
	// UserAgent identifies the installer to the release host.
	UserAgent = "typr-installer"

	// DefaultReleaseHost serves the release assets.
	DefaultReleaseHost = "https://github.com"

	// DefaultTimeout bounds a whole download, redirects included.
	DefaultTimeout = 10 * time.Minute

	// maxRedirects is the number of redirects followed before giving up,
	// so at most maxRedirects+1 requests are sent.
	maxRedirects = 5

	// secureScheme is the only scheme the installer downloads from.
	secureScheme = "https"
)

// fetcher downloads release assets into memory.
type fetcher struct {
	client *http.Client
}

// newFetcher wraps client so that redirects are handed back to the caller instead of being followed.
func newFetcher(client *http.Client, timeout time.Duration) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	// Copy the client so the caller's CheckRedirect is left untouched.
	noRedirects := *client
	noRedirects.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &fetcher{client: &noRedirects}
}

// fetch downloads rawURL, following redirects in a bounded loop, and returns the whole body.
func (f *fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Err: err}
	}

	for redirects := 0; redirects <= maxRedirects; redirects++ {
		if current.Scheme != secureScheme {
			return nil, &DownloadError{URL: current.String(), Err: errInsecureURL}
		}

		response, err := f.get(ctx, current.String())
		if err != nil {
			return nil, &DownloadError{URL: current.String(), Err: err}
		}

		location := response.Header.Get("Location")
		if isRedirect(response.StatusCode) && location != "" {
			discard(response)

			next, err := current.Parse(location)
			if err != nil {
				return nil, &DownloadError{URL: location, Err: err}
			}

			logger.DebugKV(ctx, "Following redirect",
				"status", response.StatusCode, "from", current.String(), "to", next.String())

			current = next

			continue
		}

		if response.StatusCode != http.StatusOK {
			discard(response)
			return nil, &DownloadError{StatusCode: response.StatusCode, URL: current.String()}
		}

		body, err := io.ReadAll(response.Body)
		_ = response.Body.Close()

		if err != nil {
			return nil, &DownloadError{URL: current.String(), Err: fmt.Errorf("read body: %w", err)}
		}

		return body, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrTooManyRedirects, rawURL)
}

// get sends a single GET request with the installer user agent.
func (f *fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", UserAgent)

	return f.client.Do(request)
}

// isRedirect reports whether status is in the 3xx range.
func isRedirect(status int) bool {
	return status >= http.StatusMultipleChoices && status < http.StatusBadRequest
}

// discard drains and closes a response body so the connection can be reused.
func discard(response *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 1<<16))
	_ = response.Body.Close()
}
