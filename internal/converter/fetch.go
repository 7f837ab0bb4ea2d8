package converter

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetch downloads url and decodes the body as a single JSON value. Numbers
// are kept as json.Number so integers survive the round trip to the sheet.
// A non-2xx status is a network failure.
func Fetch(ctx context.Context, client *http.Client, url string) (any, error) {
	body, err := download(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError(KindNetwork, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindNetwork, "request", fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, "read body", err)
	}
	return body, nil
}

func decode(body []byte) (any, error) {
	v, err := ParseJSON(body)
	if err != nil {
		return nil, newError(KindParse, "decode JSON", err)
	}
	return v, nil
}
