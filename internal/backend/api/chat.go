package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"taskpad/internal/service"
)

// SendMessage implements service.Service.
func (c *Client) SendMessage(ctx context.Context, req service.ChatRequest) (service.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, ChatTimeout)
	defer cancel()

	var res service.ChatResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/chat", body: req, out: &res})
	return res, err
}

// ListConversations implements service.Service.
func (c *Client) ListConversations(ctx context.Context) (service.ConversationList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var res service.ConversationList
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/conversations", out: &res})
	return res, err
}

// GetConversation implements service.Service.
func (c *Client) GetConversation(ctx context.Context, id int) (service.ConversationHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var res service.ConversationHistory
	err := c.do(ctx, call{method: http.MethodGet, path: conversationPath(id), out: &res})
	return res, err
}

// DeleteConversation implements service.Service.
func (c *Client) DeleteConversation(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	return c.do(ctx, call{method: http.MethodDelete, path: conversationPath(id)})
}

// RenameConversation implements service.Service. The backend takes the title
// as a query parameter.
func (c *Client) RenameConversation(ctx context.Context, id int, title string) (service.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var res service.Conversation
	err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   conversationPath(id) + "/title",
		query:  url.Values{"title": {title}},
		out:    &res,
	})
	return res, err
}

// ChatHealth implements service.Service.
func (c *Client) ChatHealth(ctx context.Context) (service.Health, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var res service.Health
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/chat/health", out: &res, anon: true})
	return res, err
}

func conversationPath(id int) string {
	return fmt.Sprintf("/api/conversations/%d", id)
}
