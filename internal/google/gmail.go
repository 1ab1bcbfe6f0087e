package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

type Message struct {
	ID       string
	ThreadID string
	Sender   string
	Subject  string
	Snippet  string
	Body     string
}

// ListMessageIDs returns the IDs of messages matching the Gmail search query.
func (c *Client) ListMessageIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	listURL := fmt.Sprintf("%s/users/me/messages?q=%s&maxResults=%d", c.gmailBase, url.QueryEscape(query), maxResults)

	var payload struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := c.getJSON(ctx, listURL, &payload); err != nil {
		return nil, fmt.Errorf("failed to list gmail messages: %w", err)
	}

	ids := make([]string, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// GetMessage fetches a full message and flattens headers and body text.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	getURL := fmt.Sprintf("%s/users/me/messages/%s?format=full", c.gmailBase, url.PathEscape(id))

	var payload struct {
		ID       string      `json:"id"`
		ThreadID string      `json:"threadId"`
		Snippet  string      `json:"snippet"`
		Payload  messagePart `json:"payload"`
	}
	if err := c.getJSON(ctx, getURL, &payload); err != nil {
		return nil, fmt.Errorf("failed to get gmail message %s: %w", id, err)
	}

	msg := &Message{
		ID:       payload.ID,
		ThreadID: payload.ThreadID,
		Snippet:  payload.Snippet,
		Sender:   headerValue(payload.Payload.Headers, "From"),
		Subject:  headerValue(payload.Payload.Headers, "Subject"),
	}

	msg.Body = strings.TrimSpace(plainText(payload.Payload))
	if msg.Body == "" {
		msg.Body = payload.Snippet
	}
	return msg, nil
}

// MarkRead removes the UNREAD label from the given messages.
func (c *Client) MarkRead(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	modifyURL := fmt.Sprintf("%s/users/me/messages/batchModify", c.gmailBase)
	body := map[string]any{
		"ids":            ids,
		"removeLabelIds": []string{"UNREAD"},
	}
	if err := c.doJSON(ctx, "POST", modifyURL, body, nil); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

type messageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type messagePart struct {
	MimeType string          `json:"mimeType"`
	Headers  []messageHeader `json:"headers"`
	Body     struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

func headerValue(headers []messageHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// plainText walks the MIME tree and returns the first text/plain body,
// falling back to any decodable leaf.
func plainText(part messagePart) string {
	if strings.HasPrefix(part.MimeType, "text/plain") {
		if s := decodeBody(part.Body.Data); s != "" {
			return s
		}
	}
	for _, p := range part.Parts {
		if s := plainText(p); s != "" {
			return s
		}
	}
	if len(part.Parts) == 0 {
		return decodeBody(part.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}
