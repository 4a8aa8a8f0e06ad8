package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// list_tasks — List the caller's tasks
	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List your tasks, newest first, with status and schedule."),
			mcp.WithString("status",
				mcp.Description("Filter by status"),
				mcp.Enum("all", "todo", "inprogress", "done", "blocked"),
			),
		),
		ListTasks(deps.Tasks),
	)

	// create_task — Add a task to the board
	s.AddTool(
		mcp.NewTool("create_task",
			mcp.WithDescription("Create a task. Tasks start in the todo column; a scheduled task is mirrored to the connected Google Calendar."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Short task title"),
			),
			mcp.WithString("description",
				mcp.Description("Longer free-form description"),
			),
			mcp.WithString("scheduled_time",
				mcp.Description("RFC 3339 timestamp to schedule the task at. The slot must be free."),
			),
		),
		CreateTask(deps.Tasks),
	)

	// update_task — Move or edit a task
	s.AddTool(
		mcp.NewTool("update_task",
			mcp.WithDescription("Update a task's title, description, status or schedule. Moving todo tasks to inprogress reschedules them to now; unblocking an unscheduled task schedules it for tomorrow."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task id"),
			),
			mcp.WithString("title",
				mcp.Description("New title"),
			),
			mcp.WithString("description",
				mcp.Description("New description"),
			),
			mcp.WithString("status",
				mcp.Description("New status"),
				mcp.Enum("todo", "inprogress", "done", "blocked"),
			),
			mcp.WithString("scheduled_time",
				mcp.Description("RFC 3339 timestamp to reschedule to. The slot must be free."),
			),
		),
		UpdateTask(deps.Tasks),
	)

	// delete_task — Remove a task and its calendar event
	s.AddTool(
		mcp.NewTool("delete_task",
			mcp.WithDescription("Delete a task. Its mirrored calendar event is removed as well."),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task id"),
			),
		),
		DeleteTask(deps.Tasks),
	)
}
