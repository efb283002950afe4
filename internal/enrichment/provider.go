// Package enrichment merges live inventory-provider hotel details onto
// locally stored hotels. Only hotels sourced from the provider carry a
// provider code; everything else passes through untouched.
package enrichment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Details is the provider's hotel detail payload, normalized.
type Details struct {
	HotelCode   string   `json:"hotel_code"`
	Facilities  []string `json:"facilities"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Images      []string `json:"images"`
	Address     string   `json:"address"`
}

// DetailsProvider fetches hotel details for a batch of provider codes.
// Codes without details are simply absent from the result map.
type DetailsProvider interface {
	GetDetails(ctx context.Context, codes []string) (map[string]Details, error)
}

// HTTPConfig configures the HTTP details provider.
type HTTPConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// HTTPProvider talks to the inventory provider's hotel details endpoint.
type HTTPProvider struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

var _ DetailsProvider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider client.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type detailsRequest struct {
	HotelCodes string `json:"HotelCodes"`
}

type detailsResponse struct {
	HotelDetails []struct {
		HotelCode       string   `json:"HotelCode"`
		HotelFacilities []string `json:"HotelFacilities"`
		Description     string   `json:"Description"`
		HotelRating     float64  `json:"HotelRating"`
		Images          []string `json:"Images"`
		Image           string   `json:"Image"`
		Address         string   `json:"Address"`
	} `json:"HotelDetails"`
}

// GetDetails fetches details for the given codes in one batched call.
func (p *HTTPProvider) GetDetails(ctx context.Context, codes []string) (map[string]Details, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(detailsRequest{HotelCodes: strings.Join(codes, ",")})
	if err != nil {
		return nil, fmt.Errorf("marshal details request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/Hoteldetails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create details request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.username != "" {
		req.SetBasicAuth(p.username, p.password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hotel details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("hotel details API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode details response: %w", err)
	}

	result := make(map[string]Details, len(parsed.HotelDetails))
	for _, d := range parsed.HotelDetails {
		if d.HotelCode == "" {
			continue
		}
		images := d.Images
		if len(images) == 0 && d.Image != "" {
			images = []string{d.Image}
		}
		facilities := make([]string, 0, len(d.HotelFacilities))
		for _, f := range d.HotelFacilities {
			facilities = append(facilities, strings.ToLower(f))
		}
		result[d.HotelCode] = Details{
			HotelCode:   d.HotelCode,
			Facilities:  facilities,
			Description: d.Description,
			Rating:      d.HotelRating,
			Images:      images,
			Address:     d.Address,
		}
	}
	return result, nil
}
