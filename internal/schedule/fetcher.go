package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxFetchedImageSize = 10 << 20 // 10 MB

// HTTPImageFetcher fetches row images over HTTP with a bounded timeout.
type HTTPImageFetcher struct {
	Client *http.Client
}

func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{Client: &http.Client{Timeout: 15 * time.Second}}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", url, res.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxFetchedImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchedImageSize {
		return nil, fmt.Errorf("fetch image %s: too large", url)
	}
	return data, nil
}
