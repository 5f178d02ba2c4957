package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var httpClient = &http.Client{Timeout: 12 * time.Second}

// FetchRemote stages a remotely hosted recording to a temp file under
// destDir so it can enter the pipeline like any local upload. Transient
// failures are retried with exponential backoff; client errors are not.
// Removing the staged file is the caller's job on every exit path.
func FetchRemote(ctx context.Context, url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	var staged string
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("audio fetch server error: %s", resp.Status)
			return lastErr
		}
		if resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("audio fetch failed: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}

		tmp, err := os.CreateTemp(destDir, "remote-*.audio")
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(tmp, resp.Body); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			lastErr = fmt.Errorf("download audio: %w", err)
			return lastErr
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			lastErr = err
			return lastErr
		}
		staged = tmp.Name()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}
	return staged, nil
}
