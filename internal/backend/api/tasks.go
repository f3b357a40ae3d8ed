package api

import (
	"context"
	"fmt"
	"net/http"

	"taskpad/internal/service"
)

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var tasks []service.Task
	if err := c.do(ctx, call{method: http.MethodGet, path: "/tasks/", out: &tasks}); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var task service.Task
	err := c.do(ctx, call{method: http.MethodGet, path: taskPath(id), out: &task})
	return task, err
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var task service.Task
	err := c.do(ctx, call{method: http.MethodPost, path: "/tasks/", body: req, out: &task})
	return task, err
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int, req service.UpdateTaskRequest) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var task service.Task
	err := c.do(ctx, call{method: http.MethodPut, path: taskPath(id), body: req, out: &task})
	return task, err
}

// ToggleTask implements service.Service.
func (c *Client) ToggleTask(ctx context.Context, id int) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var task service.Task
	err := c.do(ctx, call{method: http.MethodPatch, path: taskPath(id) + "/toggle", out: &task})
	return task, err
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	return c.do(ctx, call{method: http.MethodDelete, path: taskPath(id)})
}

func taskPath(id int) string {
	return fmt.Sprintf("/tasks/%d", id)
}
