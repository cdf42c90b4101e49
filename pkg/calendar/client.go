// Copyright 2025 Certen Protocol
//
// Client talks to OpenTimestamps calendar servers: it submits a digest
// for attestation and polls for the resulting commitment tree
// (spec.md §6, §4.9/C9-C10).

package calendar

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/certen/ots-engine/pkg/ots"
)

// ErrPending is returned by GetTimestamp when the calendar has not yet
// attested the requested digest.
var ErrPending = errors.New("calendar: digest not yet attested")

const contentType = "application/vnd.opentimestamps.v1"

// maxResponseBytes caps how much of a calendar's response body is read,
// guarding against a misbehaving or malicious server.
const maxResponseBytes = 1 << 20

// Client is an HTTP client for the calendar submission protocol.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
}

// New returns a Client with the given per-request timeout. A nil
// logger disables logging.
func New(timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Submit posts digest to calendarURL's /digest endpoint and returns the
// bare commitment Tree the calendar responds with.
func (c *Client) Submit(ctx context.Context, calendarURL string, digest []byte) (*ots.Tree, error) {
	url := calendarURL + "/digest"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(digest))
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("%s", string(body))}
	}

	tree, err := ots.ReadBareTree(body)
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("parse commitment tree: %w", err)}
	}

	c.logger.Printf("calendar: submitted digest %s to %s in %s", hex.EncodeToString(digest), calendarURL, time.Since(start))
	return tree, nil
}

// GetTimestamp polls calendarURL's /timestamp/{hex(digest)} endpoint
// for the attestation tree covering digest. ErrPending is returned
// (wrapped) while the calendar is still waiting on Bitcoin/Litecoin
// confirmation.
func (c *Client) GetTimestamp(ctx context.Context, calendarURL string, digest []byte) (*ots.Tree, error) {
	url := calendarURL + "/timestamp/" + hex.EncodeToString(digest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: ErrPending}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("%s", string(body))}
	}

	tree, err := ots.ReadBareTree(body)
	if err != nil {
		return nil, &ots.NetworkError{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("parse commitment tree: %w", err)}
	}
	return tree, nil
}
