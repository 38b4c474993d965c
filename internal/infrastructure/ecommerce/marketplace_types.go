package ecommerce

import (
	"fmt"
	"strings"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// tokenRequest is the auth endpoint payload
type tokenRequest struct {
	Account string `json:"account"`
}

// tokenResponse is the auth endpoint response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type orderListResponse struct {
	Orders []marketplace.PlatformOrderSummary `json:"orders"`
}

type shipmentListResponse struct {
	Shipments []marketplace.PlatformShipmentSummary `json:"shipments"`
}

type assetsResponse struct {
	Assets []marketplace.PlatformAsset `json:"assets"`
}

// problemViolation is one field-level complaint of a problem response
type problemViolation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// problemResponse is the RFC 7807 style error body returned by the retailer API
type problemResponse struct {
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Status     int                `json:"status"`
	Detail     string             `json:"detail"`
	Violations []problemViolation `json:"violations"`
}

// Message returns the most specific description the problem carries
func (p *problemResponse) Message() string {
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	if len(p.Violations) > 0 {
		parts := make([]string, 0, len(p.Violations))
		for _, v := range p.Violations {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Name, v.Reason))
		}
		if msg != "" {
			msg += " "
		}
		msg += "(" + strings.Join(parts, "; ") + ")"
	}
	return msg
}
