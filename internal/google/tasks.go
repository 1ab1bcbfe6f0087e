package google

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Due    string `json:"due,omitempty"`
	Status string `json:"status,omitempty"`
}

func (c *Client) defaultTasklistID(ctx context.Context) (string, error) {
	listURL := fmt.Sprintf("%s/users/@me/lists?maxResults=10", c.tasksBase)

	var payload struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, listURL, &payload); err != nil {
		return "", fmt.Errorf("failed to list tasklists: %w", err)
	}
	if len(payload.Items) == 0 {
		return "", fmt.Errorf("no tasklist found")
	}
	return payload.Items[0].ID, nil
}

func (c *Client) CreateTask(ctx context.Context, title, notes string) (*Task, error) {
	listID, err := c.defaultTasklistID(ctx)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = "(no title)"
	}

	insertURL := fmt.Sprintf("%s/lists/%s/tasks", c.tasksBase, url.PathEscape(listID))
	body := map[string]string{"title": title, "notes": notes}

	var task Task
	if err := c.doJSON(ctx, "POST", insertURL, body, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	c.logger.Info("task created", "id", task.ID, "title", task.Title)
	return &task, nil
}

func (c *Client) ListPendingTasks(ctx context.Context, maxResults int) ([]Task, error) {
	if maxResults <= 0 {
		maxResults = 30
	}

	listID, err := c.defaultTasklistID(ctx)
	if err != nil {
		return nil, err
	}

	listURL := fmt.Sprintf("%s/lists/%s/tasks?showCompleted=false&maxResults=%d", c.tasksBase, url.PathEscape(listID), maxResults)

	var payload struct {
		Items []Task `json:"items"`
	}
	if err := c.getJSON(ctx, listURL, &payload); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]Task, 0, len(payload.Items))
	for _, t := range payload.Items {
		if t.Title == "" {
			t.Title = "(no title)"
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	listID, err := c.defaultTasklistID(ctx)
	if err != nil {
		return err
	}

	patchURL := fmt.Sprintf("%s/lists/%s/tasks/%s", c.tasksBase, url.PathEscape(listID), url.PathEscape(taskID))
	body := map[string]string{
		"status":    "completed",
		"completed": time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.doJSON(ctx, "PATCH", patchURL, body, nil); err != nil {
		return fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}
	return nil
}
