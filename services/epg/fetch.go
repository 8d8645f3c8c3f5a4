package epg

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
)

const maxEPGFileSize = 100 * 1024 * 1024 // 100 MB max

// feedFormat is the sniffed payload kind of a fetched document.
type feedFormat string

const (
	formatXML     feedFormat = "xml"
	formatJSON    feedFormat = "json"
	formatUnknown feedFormat = "unknown"
)

// statusError is a non-200 response. 4xx responses are not retried.
type statusError struct {
	URL    string
	Status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("EPG fetch returned status %d", e.Status)
}

// IsNotFound reports whether err is a 404 from a guide endpoint.
func IsNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// fetcher downloads guide documents with retries and transparent gzip handling.
type fetcher struct {
	client   *http.Client
	attempts uint
	delay    time.Duration
}

func newFetcher(client *http.Client, attempts int) *fetcher {
	if attempts < 1 {
		attempts = 1
	}
	return &fetcher{client: client, attempts: uint(attempts), delay: 500 * time.Millisecond}
}

// fetch GETs url and returns the (decompressed) body and its sniffed format.
func (f *fetcher) fetch(ctx context.Context, url string) ([]byte, feedFormat, error) {
	started := time.Now()

	body, err := retry.DoWithData(
		func() ([]byte, error) { return f.fetchOnce(ctx, url) },
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.Status >= 500 || se.Status == http.StatusTooManyRequests
			}
			return !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("epg fetch retry", "url", url, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		slog.Debug("epg fetch failed", "url", url, "duration", time.Since(started), "error", err)
		return nil, formatUnknown, err
	}

	format := sniff(body)
	slog.Debug("epg fetch complete", "url", url, "bytes", len(body), "format", format, "duration", time.Since(started))
	return body, format, nil
}

func (f *fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch EPG: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEPGFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxEPGFileSize {
		return nil, retry.Unrecoverable(fmt.Errorf("EPG document exceeds %d bytes", maxEPGFileSize))
	}

	// .gz feeds are often served without Content-Encoding, so sniff the bytes.
	if resp.Header.Get("Content-Encoding") == "gzip" || mimetype.Detect(data).Is("application/gzip") {
		data, err = gunzip(data)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
	}
	return data, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxEPGFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompress gzip: %w", err)
	}
	if len(out) > maxEPGFileSize {
		return nil, fmt.Errorf("decompressed EPG document exceeds %d bytes", maxEPGFileSize)
	}
	return out, nil
}

// sniff classifies a document by content rather than by URL or headers.
func sniff(data []byte) feedFormat {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		switch {
		case mt.Is("application/json"):
			return formatJSON
		case mt.Is("text/xml"), mt.Is("application/xml"):
			return formatXML
		}
	}
	// Large documents may be cut off inside the detector's read window.
	switch trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff"); {
	case len(trimmed) == 0:
		return formatUnknown
	case trimmed[0] == '{' || trimmed[0] == '[':
		return formatJSON
	case trimmed[0] == '<':
		return formatXML
	}
	return formatUnknown
}
