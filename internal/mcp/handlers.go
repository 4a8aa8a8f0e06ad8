package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/vocalboard/internal/auth"
	"github.com/kolapsis/vocalboard/internal/store"
	"github.com/kolapsis/vocalboard/internal/task"
)

// ListTasks returns a handler that lists the caller's tasks.
func ListTasks(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserFromContext(ctx)
		if user == nil {
			return mcp.NewToolResultError("not authenticated"), nil
		}

		args := req.GetArguments()
		status, _ := args["status"].(string)

		tasks, err := svc.List(ctx, user.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing tasks: %v", err)), nil
		}

		var shown []store.TaskRecord
		for _, t := range tasks {
			if status == "" || status == "all" || t.Status == status {
				shown = append(shown, t)
			}
		}

		if len(shown) == 0 {
			return mcp.NewToolResultText("No tasks found."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "📋 Tasks (%d found)\n\n", len(shown))
		for _, t := range shown {
			sb.WriteString(fmt.Sprintf("%s **%s** — %s\n", statusIcon(t.Status), t.Title, t.Status))
			sb.WriteString(fmt.Sprintf("  ID: %s\n", t.ID))
			if t.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", t.Description))
			}
			if t.ScheduledTime != nil {
				sb.WriteString(fmt.Sprintf("  Scheduled: %s\n", t.ScheduledTime.Format(time.RFC3339)))
			}
			if t.GoogleEventID != "" {
				sb.WriteString("  Mirrored to Google Calendar\n")
			}
			sb.WriteString("\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

// CreateTask returns a handler that adds a task to the caller's board.
func CreateTask(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserFromContext(ctx)
		if user == nil {
			return mcp.NewToolResultError("not authenticated"), nil
		}

		args := req.GetArguments()
		title, _ := args["title"].(string)
		description, _ := args["description"].(string)

		scheduled, errResult := parseScheduledTime(args)
		if errResult != nil {
			return errResult, nil
		}

		created, err := svc.Create(ctx, user.ID, title, description, scheduled)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := fmt.Sprintf("%s Task created: **%s** (ID: %s)", statusIcon(created.Status), created.Title, created.ID)
		if created.ScheduledTime != nil {
			text += fmt.Sprintf("\nScheduled: %s", created.ScheduledTime.Format(time.RFC3339))
		}
		return mcp.NewToolResultText(text), nil
	}
}

// UpdateTask returns a handler that applies a partial task mutation.
func UpdateTask(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserFromContext(ctx)
		if user == nil {
			return mcp.NewToolResultError("not authenticated"), nil
		}

		args := req.GetArguments()
		taskID, _ := args["task_id"].(string)
		if taskID == "" {
			return mcp.NewToolResultError("task_id is required"), nil
		}

		var upd task.Update
		if title, ok := args["title"].(string); ok && title != "" {
			upd.Title = &title
		}
		if description, ok := args["description"].(string); ok {
			upd.Description = &description
		}
		if status, ok := args["status"].(string); ok && status != "" {
			st := task.Status(status)
			upd.Status = &st
		}

		scheduled, errResult := parseScheduledTime(args)
		if errResult != nil {
			return errResult, nil
		}
		upd.ScheduledTime = scheduled

		updated, err := svc.Update(ctx, user.ID, taskID, upd)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := fmt.Sprintf("%s Task updated: **%s** — %s", statusIcon(updated.Status), updated.Title, updated.Status)
		if updated.ScheduledTime != nil {
			text += fmt.Sprintf("\nScheduled: %s", updated.ScheduledTime.Format(time.RFC3339))
		}
		return mcp.NewToolResultText(text), nil
	}
}

// DeleteTask returns a handler that removes a task and its mirrored event.
func DeleteTask(svc *task.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := auth.UserFromContext(ctx)
		if user == nil {
			return mcp.NewToolResultError("not authenticated"), nil
		}

		args := req.GetArguments()
		taskID, _ := args["task_id"].(string)
		if taskID == "" {
			return mcp.NewToolResultError("task_id is required"), nil
		}

		if err := svc.Delete(ctx, user.ID, taskID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText("🗑️ Task deleted."), nil
	}
}

func parseScheduledTime(args map[string]any) (*time.Time, *mcp.CallToolResult) {
	raw, ok := args["scheduled_time"].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("scheduled_time must be RFC 3339: %v", err))
	}
	return &at, nil
}

func statusIcon(status string) string {
	switch status {
	case "todo":
		return "📝"
	case "inprogress":
		return "🔄"
	case "done":
		return "✅"
	case "blocked":
		return "⛔"
	default:
		return "❓"
	}
}
