package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tasktrack/internal/domain"
)

func taskPath(id string) string {
	return fmt.Sprintf("tasks/%s", url.PathEscape(id))
}

// ListTasks returns the caller's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var resp []domain.Task
	if err := c.do(ctx, http.MethodGet, "tasks", nil, &resp); err != nil {
		c.logger().Error("fetch tasks", "error", err)
		return nil, err
	}
	return resp, nil
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var resp domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &resp); err != nil {
		c.logger().Error("fetch task", "task_id", id, "error", err)
		return domain.Task{}, err
	}
	return resp, nil
}

// CreateTask creates a task; the backend assigns id and timestamps.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskCreate) (domain.Task, error) {
	var resp domain.Task
	if err := c.do(ctx, http.MethodPost, "tasks", in, &resp); err != nil {
		c.logger().Error("create task", "error", err)
		return domain.Task{}, err
	}
	return resp, nil
}

// UpdateTask sends only the fields set in in.
func (c *Client) UpdateTask(ctx context.Context, id string, in domain.TaskUpdate) (domain.Task, error) {
	var resp domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in, &resp); err != nil {
		c.logger().Error("update task", "task_id", id, "error", err)
		return domain.Task{}, err
	}
	return resp, nil
}

// DeleteTask removes a task and returns the backend's confirmation message.
func (c *Client) DeleteTask(ctx context.Context, id string) (domain.DeleteResult, error) {
	var resp domain.DeleteResult
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &resp); err != nil {
		c.logger().Error("delete task", "task_id", id, "error", err)
		return domain.DeleteResult{}, err
	}
	return resp, nil
}
