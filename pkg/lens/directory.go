// Package lens resolves wallet addresses to Lens profile handles for
// display. Lookups are best effort: any failure degrades to showing the raw
// address, so callers never propagate errors from this package.
package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const defaultAPIURL = "https://api-v2.lens.dev"

type Profile struct {
	Handle string `json:"handle"`
	Avatar string `json:"avatar"`
}

// Directory is the profile directory collaborator.
type Directory interface {
	// ResolveProfile returns the default Lens profile for an address.
	// A nil profile with nil error means the address has no profile.
	ResolveProfile(ctx context.Context, address string) (*Profile, error)
}

type directory struct {
	apiURL string
	client *http.Client
}

func NewDirectory(apiURL string) Directory {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &directory{
		apiURL: apiURL,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

const profileQuery = `query DefaultProfile($address: EvmAddress!) {
  defaultProfile(request: { for: $address }) {
    handle { fullHandle }
    metadata { picture { __typename } }
  }
}`

func (d *directory) ResolveProfile(ctx context.Context, address string) (*Profile, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     profileQuery,
		"variables": map[string]string{"address": address},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded struct {
		Data struct {
			DefaultProfile *struct {
				Handle struct {
					FullHandle string `json:"fullHandle"`
				} `json:"handle"`
			} `json:"defaultProfile"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	if decoded.Data.DefaultProfile == nil {
		return nil, nil
	}
	return &Profile{Handle: decoded.Data.DefaultProfile.Handle.FullHandle}, nil
}
