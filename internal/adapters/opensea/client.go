package opensea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.opensea.io/api/v1"

// PaginationMode selecciona cómo pagina el endpoint de assets.
type PaginationMode string

const (
	// PaginateCursor sigue el token opaco `next` hasta que desaparezca.
	PaginateCursor PaginationMode = "cursor"
	// PaginateOffset incrementa offset por page_size hasta página vacía.
	PaginateOffset PaginationMode = "offset"
)

// Config contiene los parámetros del cliente del marketplace.
type Config struct {
	BaseURL    string
	APIKey     string
	Pagination PaginationMode
	PageSize   int
	// PageDelay es el delay fijo entre requests de paginación para
	// respetar el rate limit del API.
	PageDelay time.Duration
}

// Client es el HTTP client del marketplace con pacing entre páginas.
// No reintenta: un fallo termina el fetch del ciclo y el orquestador
// vuelve a intentar en el ciclo siguiente.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewClient crea un Client con la configuración dada.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Pagination == "" {
		cfg.Pagination = PaginateCursor
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.PageDelay), 1),
	}
}

// get hace un GET autenticado y decodifica la respuesta JSON en out.
// Espera el turno del limiter antes de disparar el request.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// post hace un POST JSON autenticado y decodifica la respuesta en out.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError es una respuesta non-2xx con su body, para loguearlo entero.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}
