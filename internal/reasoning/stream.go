package reasoning

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StreamTurn opens the autonomous tool-loop event stream for one turn. The
// returned cancel func aborts the stream; the channel closes when the server
// finishes or the stream is cancelled.
func (c *Client) StreamTurn(ctx context.Context, req SendRequest) (<-chan StreamEvent, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	payload, err := json.Marshal(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	url := fmt.Sprintf("%s/v1/assistant/stream", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		cancel()
		return nil, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpClient := &http.Client{Transport: c.http.Transport}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		return nil, nil, decodeAPIError(resp)
	}

	ch := make(chan StreamEvent, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var dataLines []string

		flush := func() {
			if len(dataLines) == 0 {
				return
			}
			payload := strings.Join(dataLines, "\n")
			dataLines = dataLines[:0]
			var event StreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				return
			}
			event.Raw = json.RawMessage(payload)
			select {
			case ch <- event:
			case <-ctx.Done():
			}
		}

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				flush()
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			}
		}
		flush()
	}()
	return ch, cancel, nil
}
