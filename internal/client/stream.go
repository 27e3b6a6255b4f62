package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// EventStream is an open SSE connection to a room's notification
// endpoint. It is not safe for concurrent use.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
}

// Subscribe opens the server-push notification stream for a room.
// The stream stays open until Close is called, the context is
// cancelled, or the server drops the connection.
func (c *Client) Subscribe(ctx context.Context, roomID model.RoomID) (*EventStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	url := c.baseURL + "/notification?" + roomQuery(roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// A dedicated client without a timeout; the stream stays open
	// for the lifetime of the room session.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stream connection failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		err := decodeResponse(resp, nil)
		cancel()
		if err == nil {
			err = fmt.Errorf("unexpected stream status: %d", resp.StatusCode)
		}
		return nil, err
	}

	return &EventStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
		cancel:  cancel,
	}, nil
}

// Next blocks until the next notification arrives and decodes it.
// Unknown event tags surface as model.ErrUnknownEvent so the caller
// can drop them without tearing down the connection; any other error
// means the stream is dead.
func (s *EventStream) Next() (model.GameEvent, error) {
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case strings.HasPrefix(line, ":"):
			// Comment / keepalive
		case line == "":
			if len(dataLines) == 0 {
				continue
			}
			data := strings.Join(dataLines, "\n")
			dataLines = nil
			return model.ParseEvent([]byte(data))
		}
	}

	if err := s.scanner.Err(); err != nil {
		return model.GameEvent{}, fmt.Errorf("stream read error: %w", err)
	}
	return model.GameEvent{}, io.EOF
}

// Close tears down the connection
func (s *EventStream) Close() error {
	s.cancel()
	return s.body.Close()
}
