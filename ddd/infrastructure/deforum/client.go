package deforum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// Client talks to the Deforum job API exposed by the generation backend.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetJob fetches the current remote state for one submitted batch handle.
func (c *Client) GetJob(ctx context.Context, handle string) (*vo.RemoteJob, error) {
	url := fmt.Sprintf("%s/deforum_api/jobs/%s", c.base, handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errno.NewBizError(errno.ErrBackendUnavailable,
			fmt.Errorf("deforum api status %d: %s", resp.StatusCode, string(body)))
	}

	var remote vo.RemoteJob
	if err := json.Unmarshal(body, &remote); err != nil {
		return nil, fmt.Errorf("decode deforum job response: %w", err)
	}
	return &remote, nil
}

// DeleteJob asks the backend to stop and discard a submitted batch.
func (c *Client) DeleteJob(ctx context.Context, handle string) error {
	url := fmt.Sprintf("%s/deforum_api/jobs/%s", c.base, handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return errno.NewBizError(errno.ErrBackendUnavailable,
			fmt.Errorf("deforum api delete status %d", resp.StatusCode))
	}
	return nil
}
