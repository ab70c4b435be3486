// Package compiler submits LaTeX to a remote build service and returns the PDF.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/model"
)

const (
	DefaultURL      = "https://latex.ytotech.com/builds/sync"
	DefaultCompiler = "pdflatex"
	DefaultTimeout  = 120 * time.Second

	mainFile         = "main.tex"
	maxDiagnostic    = 2000
	maxResponseBytes = 256 << 20
)

var pdfMagic = []byte("%PDF-")

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	URL      string
	Compiler string
	Timeout  time.Duration
	// HTTPClient is mostly useful in tests.
	HTTPClient *http.Client
}

// Client is a single-attempt client for the build service. It never retries.
type Client struct {
	url      string
	compiler string
	timeout  time.Duration
	http     *http.Client
	log      zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	c := &Client{
		url:      cfg.URL,
		compiler: cfg.Compiler,
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		log:      log.With().Str("component", "latex_compiler").Logger(),
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.compiler == "" {
		c.compiler = DefaultCompiler
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

type resource struct {
	Main    bool   `json:"main,omitempty"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	File    []byte `json:"file,omitempty"` // base64 on the wire
}

type buildRequest struct {
	Compiler  string     `json:"compiler"`
	Resources []resource `json:"resources"`
}

// Compile validates markup, submits it together with attachments and returns
// the PDF bytes. Failures match ErrUnbalanced, ErrCompileTimeout,
// ErrCompileRejected, ErrNetwork or ErrEmptyResponse.
func (c *Client) Compile(ctx context.Context, markup string, attachments []model.Attachment) ([]byte, error) {
	if err := Validate(markup); err != nil {
		return nil, err
	}

	payload := buildRequest{
		Compiler:  c.compiler,
		Resources: make([]resource, 0, len(attachments)+1),
	}
	payload.Resources = append(payload.Resources, resource{Main: true, Path: mainFile, Content: markup})
	for _, a := range attachments {
		payload.Resources = append(payload.Resources, resource{Path: a.Name, File: a.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode build request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	start := time.Now()
	c.log.Info().
		Int("markup_bytes", len(markup)).
		Int("attachments", len(attachments)).
		Msg("Submitting LaTeX build")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err, c.timeout)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransport(err, c.timeout)
	}

	if res.StatusCode/100 != 2 {
		c.log.Warn().Int("status", res.StatusCode).Dur("took", time.Since(start)).Msg("LaTeX build rejected")
		return nil, &RejectedError{Status: res.StatusCode, Diagnostic: truncate(string(data), maxDiagnostic)}
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: %d bytes of %q", ErrEmptyResponse, len(data), res.Header.Get("Content-Type"))
	}

	c.log.Info().
		Int("pdf_bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("LaTeX build finished")
	return data, nil
}

func classifyTransport(err error, timeout time.Duration) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w after %s", ErrCompileTimeout, timeout)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
