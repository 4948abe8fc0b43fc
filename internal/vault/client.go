package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	vault "github.com/hashicorp/vault/api"
	"github.com/mitchellh/mapstructure"
)

const (
	approleSecretIDPath = "auth/approle/role/%s/secret-id"
	approleLoginPath    = "auth/approle/login"
)

// ErrClientInit indicates failure to initialize the Vault API client.
var ErrClientInit = errors.New("vault client initialization failed")

// ErrNoCredentials indicates the secret at a path did not hold AWS keys.
var ErrNoCredentials = errors.New("no aws credentials in vault response")

type Option func(*config)

type config struct {
	address  string
	token    string
	roleID   string
	roleName string
}

type Client struct {
	api    *vault.Client
	config *config
}

// AWSCredentials is the payload of Vault's AWS secrets engine
// (aws/creds/<role> or aws/sts/<role>).
type AWSCredentials struct {
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	SecurityToken string        `mapstructure:"security_token"`
	SessionToken  string        `mapstructure:"session_token"`
	TTL           time.Duration `mapstructure:"-"`
}

func WithAddress(address string) Option {
	return func(c *config) {
		if address != "" {
			c.address = address
		}
	}
}

func WithToken(token string) Option {
	return func(c *config) {
		if token != "" {
			c.token = token
		}
	}
}

func WithAppRole(roleID, roleName string) Option {
	return func(c *config) {
		c.roleID = roleID
		c.roleName = roleName
	}
}

// NewClient creates and initializes a Vault Client using provided options.
// It will perform AppRole login if roleID and roleName are both set, otherwise
// a static token (from env or WithToken) is used.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		address: os.Getenv("VAULT_ADDR"),
		token:   os.Getenv("VAULT_TOKEN"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiCfg := vault.DefaultConfig()
	if cfg.address != "" {
		apiCfg.Address = cfg.address
	}

	api, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientInit, err)
	}

	client := &Client{api: api, config: cfg}

	if cfg.token != "" {
		client.api.SetToken(cfg.token)
	}

	if cfg.roleID != "" && cfg.roleName != "" {
		if err := client.loginAppRole(ctx); err != nil {
			return nil, fmt.Errorf("%w: approle login: %w", ErrClientInit, err)
		}
	}

	return client, nil
}

// loginAppRole performs AppRole login using the configured roleID and roleName.
func (c *Client) loginAppRole(ctx context.Context) error {
	path := fmt.Sprintf(approleSecretIDPath, c.config.roleName)
	resp, err := c.api.Logical().WriteWithContext(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("generate secret_id: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("empty response from %s", path)
	}
	sid, ok := resp.Data["secret_id"].(string)
	if !ok || sid == "" {
		return fmt.Errorf("no secret_id returned from %s", path)
	}

	loginData := map[string]any{
		"role_id":   c.config.roleID,
		"secret_id": sid,
	}
	loginResp, err := c.api.Logical().WriteWithContext(ctx, approleLoginPath, loginData)
	if err != nil {
		return fmt.Errorf("approle login request: %w", err)
	}
	if loginResp == nil || loginResp.Auth == nil || loginResp.Auth.ClientToken == "" {
		return fmt.Errorf("no token in login response")
	}
	c.api.SetToken(loginResp.Auth.ClientToken)
	return nil
}

// GetAWSCredentials reads a lease of AWS keys from the secrets engine at path.
func (c *Client) GetAWSCredentials(ctx context.Context, path string) (AWSCredentials, error) {
	secret, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return AWSCredentials{}, fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil {
		return AWSCredentials{}, fmt.Errorf("%w: no data found at path: %s", ErrNoCredentials, path)
	}

	var creds AWSCredentials
	if err := mapstructure.Decode(secret.Data, &creds); err != nil {
		return AWSCredentials{}, fmt.Errorf("decode credentials at %s: %w", path, err)
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return AWSCredentials{}, fmt.Errorf("%w: path %s", ErrNoCredentials, path)
	}
	creds.TTL = time.Duration(secret.LeaseDuration) * time.Second
	return creds, nil
}

// CredentialsProvider adapts a Vault path to aws.CredentialsProvider.
// Wrap it in aws.NewCredentialsCache so leases are reused until they expire.
type CredentialsProvider struct {
	Client *Client
	Path   string
	// now is replaced in tests.
	now func() time.Time
}

var _ aws.CredentialsProvider = (*CredentialsProvider)(nil)

// NewCredentialsProvider returns a provider reading path on every Retrieve.
func NewCredentialsProvider(client *Client, path string) *CredentialsProvider {
	return &CredentialsProvider{Client: client, Path: path, now: time.Now}
}

func (p *CredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	creds, err := p.Client.GetAWSCredentials(ctx, p.Path)
	if err != nil {
		return aws.Credentials{}, err
	}
	token := creds.SessionToken
	if token == "" {
		token = creds.SecurityToken
	}
	out := aws.Credentials{
		AccessKeyID:     creds.AccessKey,
		SecretAccessKey: creds.SecretKey,
		SessionToken:    token,
		Source:          "vault:" + p.Path,
	}
	if creds.TTL > 0 {
		out.CanExpire = true
		out.Expires = p.now().Add(creds.TTL)
	}
	return out, nil
}
