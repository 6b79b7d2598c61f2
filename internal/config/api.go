package config

import (
	"fmt"
	"os"

	"github.com/SmartChain-HD/AI/pkg/formatting"
	"github.com/SmartChain-HD/AI/pkg/middleware"
	"github.com/SmartChain-HD/AI/pkg/openapi"
	"github.com/SmartChain-HD/AI/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AIRUN_CORS_ENABLED",
	Origins:          "AIRUN_CORS_ORIGINS",
	AllowedMethods:   "AIRUN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AIRUN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AIRUN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AIRUN_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "AIRUN_AUTH_ENABLED",
	Issuer:   "AIRUN_AUTH_ISSUER",
	ClientID: "AIRUN_AUTH_CLIENT_ID",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "AIRUN_OPENAPI_TITLE",
	Description: "AIRUN_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AIRUN_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AIRUN_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, and the nested middleware,
// pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Auth        middleware.AuthConfig `toml:"auth"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1024 * 1024 // 1MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("AIRUN_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("AIRUN_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
