package api

import (
	"context"
	"net/http"

	"github.com/agroguard/agroguard/core/pkg/registration"
)

type registerRequest struct {
	registration.Input
	Status registration.Status `json:"status"`
}

// RegisterFarmer posts a registration as an active farmer
func (c *Client) RegisterFarmer(ctx context.Context, in registration.Input) (*registration.Farmer, error) {
	var resp Response[registration.Farmer]
	req := registerRequest{Input: in, Status: registration.StatusActive}
	if err := c.do(ctx, http.MethodPost, req, &resp, "farmers"); err != nil {
		return nil, err
	}
	c.logger.Info("farmer registered", "id", resp.Data.ID, "district", resp.Data.District)
	return &resp.Data, nil
}

// ListFarmers returns every registered farmer
func (c *Client) ListFarmers(ctx context.Context) ([]registration.Farmer, error) {
	var resp Response[[]registration.Farmer]
	if err := c.do(ctx, http.MethodGet, nil, &resp, "farmers"); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetFarmer returns one farmer by id
func (c *Client) GetFarmer(ctx context.Context, id string) (*registration.Farmer, error) {
	var resp Response[registration.Farmer]
	if err := c.do(ctx, http.MethodGet, nil, &resp, "farmers", id); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

var _ registration.Registrar = (*Client)(nil)
