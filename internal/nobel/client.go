package nobel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/logger"
)

const (
	pageLimit = 25
	pageDelay = 200 * time.Millisecond
)

// Client fetches the laureate registry page by page.
type Client struct {
	baseURL string
	retries int
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL string, retries int, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		retries: retries,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// FetchLaureates pages through the registry until meta.count is exhausted,
// pausing briefly between pages. Each page fetch is retried on transient
// failure.
func (c *Client) FetchLaureates(ctx context.Context, yearFrom, yearTo int) ([]Laureate, error) {
	var all []Laureate
	offset := 0
	total := -1

	for total < 0 || offset < total {
		var page laureatesPage
		err := common.WithRetry(ctx, "fetch laureates page", c.retries, time.Second, func(ctx context.Context) error {
			var err error
			page, err = c.fetchPage(ctx, offset, yearFrom, yearTo)
			return err
		})
		if err != nil {
			return nil, err
		}

		if total < 0 {
			total = page.Meta.Count
			c.log.Info("fetching laureates", "total", total, "yearFrom", yearFrom, "yearTo", yearTo)
		}
		all = append(all, page.Laureates...)
		offset += pageLimit
		c.log.Debug("fetched laureates page", "offset", offset, "got", len(all))

		if offset < total {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pageDelay):
			}
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, offset, yearFrom, yearTo int) (laureatesPage, error) {
	url := fmt.Sprintf("%s/laureates?offset=%d&limit=%d&nobelPrizeYear=%d&yearTo=%d",
		c.baseURL, offset, pageLimit, yearFrom, yearTo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return laureatesPage{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return laureatesPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return laureatesPage{}, fmt.Errorf("laureates request returned %s", resp.Status)
	}

	var page laureatesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return laureatesPage{}, fmt.Errorf("failed to decode laureates page: %w", err)
	}
	return page, nil
}
