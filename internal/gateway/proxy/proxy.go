package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Proxy Handler
// ============================================================

// forwardedHeaders копируются из входящего запроса в upstream.
var forwardedHeaders = []string{"Content-Type", "Accept", "Authorization"}

type Proxy struct {
	upstream string
	client   *http.Client
	logger   *log.Logger
}

func New(upstream string, logger *log.Logger) *Proxy {
	return &Proxy{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Mount перенаправляет всё под prefix на тот же путь upstream с заменой
// prefix на target: /api/v1/widgets/x -> {upstream}/api/widgets/x.
func (p *Proxy) Mount(router fiber.Router, prefix, target string) {
	handler := func(c fiber.Ctx) error {
		url := p.upstream + target
		if rest := c.Params("*"); rest != "" {
			url += "/" + rest
		}
		return p.Forward(c, url)
	}
	router.All(prefix, handler)
	router.All(prefix+"/*", handler)
}

// Forward проксирует запрос на targetURL вместе с query-строкой и телом.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		targetURL += "?" + string(qs)
	}
	p.logger.Debug("proxy", "method", c.Method(), "path", c.Path(), "target", targetURL)

	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		p.logger.Error("build request", "err", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}
	for _, h := range forwardedHeaders {
		if v := c.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("upstream unreachable", "target", targetURL, "err", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp, p.logger)
}

func copyResponse(c fiber.Ctx, resp *http.Response, logger *log.Logger) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("read upstream response", "err", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
