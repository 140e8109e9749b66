// Package shopify implements the storefront Gateway over the Shopify
// Storefront GraphQL API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/semanticpay/shopagent/catalog"
	"github.com/semanticpay/shopagent/storefront"
)

const (
	// DefaultSearchLimit caps search result pages; Shopify allows at most 250.
	DefaultSearchLimit = 10
	maxSearchLimit     = 250

	defaultTimeout = 30 * time.Second
)

// Config controls the Storefront API endpoint and credentials.
type Config struct {
	// StoreURL is the full GraphQL endpoint, e.g.
	// https://example.myshopify.com/api/2025-10/graphql.json
	StoreURL    string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client is a stateless Gateway implementation. It holds no cart or session
// state; every call is one HTTPS round trip.
type Client struct {
	storeURL    string
	accessToken string
	httpClient  *http.Client
}

var _ storefront.Gateway = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.StoreURL) == "" {
		return nil, errors.New("new shopify client: empty StoreURL")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		storeURL:    cfg.StoreURL,
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
	}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// execute posts one GraphQL document and decodes the data envelope into dst.
// GraphQL-level errors are upstream failures: the request was well-formed but
// the provider could not answer it.
func (c *Client) execute(ctx context.Context, op, query string, variables map[string]any, dst any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%w: encode %s variables: %v", storefront.ErrInvalidRequest, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.storeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build %s request: %v", storefront.ErrInvalidRequest, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return storefront.NewUpstreamError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return storefront.NewUpstreamError(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return storefront.NewUpstreamError(op, fmt.Errorf("decode response: %w", err))
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, gqlErr := range envelope.Errors {
			messages[i] = gqlErr.Message
		}
		return storefront.NewUpstreamError(op, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; ")))
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Data, dst); err != nil {
			return storefront.NewUpstreamError(op, fmt.Errorf("decode data: %w", err))
		}
	}
	return nil
}

var queryTokenPattern = regexp.MustCompile(`\w+`)

// ExpandQuery widens a raw search into an inclusive singular/plural OR query.
// "red hats" becomes "red OR reds OR hats OR hat" so trailing-s mismatches
// against catalog titles still hit.
func ExpandQuery(raw string) string {
	if raw == "" {
		return raw
	}
	tokens := queryTokenPattern.FindAllString(strings.ToLower(raw), -1)
	expanded := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasSuffix(token, "s") {
			expanded = append(expanded, token+" OR "+strings.TrimSuffix(token, "s"))
		} else {
			expanded = append(expanded, token+" OR "+token+"s")
		}
	}
	return strings.Join(expanded, " OR ")
}

func (c *Client) SearchProducts(ctx context.Context, req storefront.SearchProductsRequest) ([]catalog.ProductSnapshot, error) {
	first := req.First
	if first <= 0 {
		first = DefaultSearchLimit
	}
	if first > maxSearchLimit {
		first = maxSearchLimit
	}

	var payload struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	err := c.execute(ctx, "search_products", searchProductsQuery, map[string]any{
		"query":   ExpandQuery(req.Query),
		"first":   first,
		"sortKey": "RELEVANCE",
		"reverse": false,
	}, &payload)
	if err != nil {
		return nil, err
	}

	snapshots := make([]catalog.ProductSnapshot, 0, len(payload.Products.Edges))
	for _, edge := range payload.Products.Edges {
		snapshot, err := edge.Node.snapshot()
		if err != nil {
			return nil, storefront.NewUpstreamError("search_products", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.ProductSnapshot, error) {
	if strings.TrimSpace(id) == "" {
		return catalog.ProductSnapshot{}, fmt.Errorf("%w: empty product id", storefront.ErrInvalidRequest)
	}

	var payload struct {
		Product *productNode `json:"product"`
	}
	err := c.execute(ctx, "get_product", getProductQuery, map[string]any{"id": id}, &payload)
	if err != nil {
		return catalog.ProductSnapshot{}, err
	}
	if payload.Product == nil {
		return catalog.ProductSnapshot{}, fmt.Errorf("%w: %s", storefront.ErrProductNotFound, id)
	}
	snapshot, err := payload.Product.snapshot()
	if err != nil {
		return catalog.ProductSnapshot{}, storefront.NewUpstreamError("get_product", err)
	}
	return snapshot, nil
}

func (c *Client) CreateCart(ctx context.Context, req storefront.CreateCartRequest) (storefront.CreateCartResult, error) {
	if len(req.Lines) == 0 {
		return storefront.CreateCartResult{}, fmt.Errorf("%w: cart creation requires at least one line", storefront.ErrInvalidRequest)
	}

	lines := make([]map[string]any, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = map[string]any{
			"merchandiseId": line.MerchandiseID,
			"quantity":      line.Quantity,
		}
	}
	input := map[string]any{"lines": lines}
	if req.Buyer != nil {
		buyer := map[string]any{}
		if req.Buyer.Email != "" {
			buyer["email"] = req.Buyer.Email
		}
		if req.Buyer.Phone != "" {
			buyer["phone"] = req.Buyer.Phone
		}
		if len(buyer) > 0 {
			input["buyerIdentity"] = buyer
		}
	}
	if len(req.Delivery) > 0 {
		addresses := make([]map[string]any, len(req.Delivery))
		for i, addr := range req.Delivery {
			addresses[i] = map[string]any{
				"address": map[string]any{
					"deliveryAddress": map[string]any{
						"address1":    addr.Address1,
						"address2":    addr.Address2,
						"city":        addr.City,
						"countryCode": addr.CountryCode,
						"zip":         addr.Zip,
						"firstName":   addr.FirstName,
						"lastName":    addr.LastName,
					},
				},
				"selected": addr.Selected,
			}
		}
		input["delivery"] = map[string]any{"addresses": addresses}
	}

	var payload struct {
		CartCreate struct {
			Cart       *cartNode              `json:"cart"`
			UserErrors []storefront.UserError `json:"userErrors"`
			Warnings   []storefront.Warning   `json:"warnings"`
		} `json:"cartCreate"`
	}
	err := c.execute(ctx, "create_cart", cartCreateMutation, map[string]any{"input": input}, &payload)
	if err != nil {
		return storefront.CreateCartResult{}, err
	}

	result := storefront.CreateCartResult{
		UserErrors: payload.CartCreate.UserErrors,
		Warnings:   payload.CartCreate.Warnings,
	}
	if payload.CartCreate.Cart != nil {
		cart, err := payload.CartCreate.Cart.remoteCart()
		if err != nil {
			return storefront.CreateCartResult{}, storefront.NewUpstreamError("create_cart", err)
		}
		result.Cart = &cart
	}
	return result, nil
}

func (c *Client) GetCart(ctx context.Context, id string) (storefront.RemoteCart, error) {
	if strings.TrimSpace(id) == "" {
		return storefront.RemoteCart{}, fmt.Errorf("%w: empty cart id", storefront.ErrInvalidRequest)
	}

	var payload struct {
		Cart *cartNode `json:"cart"`
	}
	err := c.execute(ctx, "get_cart", cartGetQuery, map[string]any{"id": id}, &payload)
	if err != nil {
		return storefront.RemoteCart{}, err
	}
	if payload.Cart == nil {
		return storefront.RemoteCart{}, fmt.Errorf("%w: %s", storefront.ErrCartNotFound, id)
	}
	return payload.Cart.remoteCart()
}
