package identity

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	validatePath      = "/api/v1/auth/token/validate"
	userBasicDataPath = "/api/v1/auth/user-basic-data"
	defaultTimeout    = 10 * time.Second
)

type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIKey       string
	Timeout      time.Duration
}

// Client is the remote identity service over HTTP.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type credentials struct {
	ClientID      string `json:"clientId"`
	ClientSecret  string `json:"clientSecret"`
	ExpectedScope string `json:"expectedScope,omitempty"`
}

type validateResponse struct {
	Data struct {
		IsValid      bool `json:"isValid"`
		IsAuthorized bool `json:"isAuthorized"`
	} `json:"data"`
}

type userBasicDataResponse struct {
	Data struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"data"`
}

func (c *Client) ValidateToken(ctx context.Context, application, authorization, expectedScope string) (TokenStatus, error) {
	var out validateResponse
	payload := credentials{
		ClientID:      c.cfg.ClientID,
		ClientSecret:  c.cfg.ClientSecret,
		ExpectedScope: expectedScope,
	}
	if err := c.post(ctx, validatePath, application, authorization, payload, &out); err != nil {
		return TokenStatus{}, err
	}
	return TokenStatus{Valid: out.Data.IsValid, Authorized: out.Data.IsAuthorized}, nil
}

func (c *Client) GetUserBasicData(ctx context.Context, application, authorization string) (UserBasicData, error) {
	var out userBasicDataResponse
	payload := credentials{ClientID: c.cfg.ClientID, ClientSecret: c.cfg.ClientSecret}
	if err := c.post(ctx, userBasicDataPath, application, authorization, payload, &out); err != nil {
		return UserBasicData{}, err
	}
	return UserBasicData{
		ID:        out.Data.ID,
		Username:  out.Data.Username,
		Email:     out.Data.Email,
		FirstName: out.Data.FirstName,
		LastName:  out.Data.LastName,
	}, nil
}

func (c *Client) post(ctx context.Context, path, application, authorization string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", c.cfg.APIKey)
	req.Header.Set("application", application)
	req.Header.Set("authorization", authorization)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	// The identity service answers 401/403 with the same body shape, so only
	// server errors are treated as failures.
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}
