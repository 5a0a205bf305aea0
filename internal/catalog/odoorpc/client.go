package odoorpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eboutiques/catalogsync/internal/catalog/domain"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("remote endpoint not configured")
	ErrAuthFailed    = errors.New("remote authentication failed")
)

// Config carries the remote endpoint settings.
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks JSON-RPC 2.0 to the ERP's external API. Authentication
// is lazy: the first call resolves the numeric uid and reuses it for
// the lifetime of the client.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	mu  sync.Mutex
	uid int64
}

func New(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("odoorpc"),
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Data.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	if c.cfg.URL == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote call %s.%s: %w", service, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote call %s.%s: unexpected status %d", service, method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode remote response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("decode remote result: %w", err)
		}
	}
	return nil
}

func (c *Client) authenticate(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != 0 {
		return c.uid, nil
	}

	// Bad credentials come back as boolean false, not an error.
	var result any
	err := c.call(ctx, "common", "authenticate",
		[]any{c.cfg.Database, c.cfg.Username, c.cfg.Password, map[string]any{}}, &result)
	if err != nil {
		return 0, err
	}
	uid, _ := result.(float64)
	if uid == 0 {
		return 0, ErrAuthFailed
	}
	c.uid = int64(uid)
	c.log.Info("authenticated against remote catalog", zap.Int64("uid", c.uid))
	return c.uid, nil
}

func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	callArgs := []any{c.cfg.Database, uid, c.cfg.Password, model, method, args, kwargs}
	return c.call(ctx, "object", "execute_kw", callArgs, out)
}

func (c *Client) Search(ctx context.Context, model string, predicates []any, offset, limit int) ([]int64, error) {
	var ids []int64
	err := c.executeKw(ctx, model, "search", []any{wrapDomain(predicates)},
		map[string]any{"offset": offset, "limit": limit}, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]domain.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []domain.Record
	err := c.executeKw(ctx, model, "read", []any{ids},
		map[string]any{"fields": fields}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) SearchRead(ctx context.Context, model string, predicates []any, fields []string, offset, limit int) ([]domain.Record, error) {
	var records []domain.Record
	err := c.executeKw(ctx, model, "search_read", []any{wrapDomain(predicates)},
		map[string]any{"fields": fields, "offset": offset, "limit": limit}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	return c.executeKw(ctx, model, "write", []any{ids, values}, nil, nil)
}

func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	var id int64
	err := c.executeKw(ctx, model, "create", []any{values}, nil, &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// wrapDomain lifts a single predicate triplet into the list-of-clauses
// form the remote search API expects.
func wrapDomain(predicates []any) []any {
	if len(predicates) == 0 {
		return []any{}
	}
	return []any{predicates}
}
