package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/service"
)

// Every call is an independent round trip; the last response to arrive wins.

func loadTasksCmd(ctx context.Context, svc service.TaskService) tea.Cmd {
	return func() tea.Msg {
		ts, err := svc.ListTasks(ctx)
		return TasksLoadedMsg{Tasks: ts, Err: err}
	}
}

func createTaskCmd(ctx context.Context, svc service.TaskService, req service.CreateTaskRequest) tea.Cmd {
	return func() tea.Msg {
		t, err := svc.CreateTask(ctx, req)
		return TaskCreatedMsg{Task: t, Err: err}
	}
}

func updateTaskCmd(ctx context.Context, svc service.TaskService, id int, req service.UpdateTaskRequest) tea.Cmd {
	return func() tea.Msg {
		t, err := svc.UpdateTask(ctx, id, req)
		return TaskUpdatedMsg{Task: t, Err: err}
	}
}

func toggleTaskCmd(ctx context.Context, svc service.TaskService, id int) tea.Cmd {
	return func() tea.Msg {
		t, err := svc.ToggleTask(ctx, id)
		return TaskUpdatedMsg{Task: t, Err: err}
	}
}

func deleteTaskCmd(ctx context.Context, svc service.TaskService, id int) tea.Cmd {
	return func() tea.Msg {
		return TaskDeletedMsg{TaskID: id, Err: svc.DeleteTask(ctx, id)}
	}
}
