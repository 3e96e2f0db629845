package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkashyap/taskhub-backend/internal/apierr"
	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/repos"
	"github.com/nkashyap/taskhub-backend/internal/types"
)

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assignedTo"`
}

// UpdateTaskInput applies "truthy replaces, absent leaves unchanged"
// semantics, except AssignedTo: any present key replaces the stored
// value, explicit null un-assigns.
type UpdateTaskInput struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	DueDate     string                 `json:"dueDate"`
	Priority    string                 `json:"priority"`
	Status      string                 `json:"status"`
	AssignedTo  types.Optional[string] `json:"assignedTo"`
}

type ListTasksInput struct {
	Search   string
	Priority string
	Status   string
	DueDate  string
}

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TaskView is the listing shape: a task with its creator and delegate
// resolved to display summaries.
type TaskView struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *time.Time   `json:"dueDate"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	Assignee    *UserSummary `json:"assignee"`
	AssignedTo  *UserSummary `json:"assignedTo"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type TaskService interface {
	CreateTask(ctx context.Context, callerID uuid.UUID, input CreateTaskInput) (*types.Task, error)
	ListTasks(ctx context.Context, input ListTasksInput) ([]TaskView, error)
	UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput) (*types.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

type taskService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.TaskRepo
	userRepo repos.UserRepo
	notifier TaskNotifier
}

func NewTaskService(db *gorm.DB, log *logger.Logger, taskRepo repos.TaskRepo, userRepo repos.UserRepo, notifier TaskNotifier) TaskService {
	return &taskService{
		db:       db,
		log:      log.With("service", "TaskService"),
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (ts *taskService) CreateTask(ctx context.Context, callerID uuid.UUID, input CreateTaskInput) (*types.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.Invalid("title_required", "title is required")
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, apierr.Invalid("invalid_due_date", "invalid due date format")
	}

	assignedToID, err := ts.resolveAssignedTo(ctx, input.AssignedTo)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	} else if !types.ValidPriority(priority) {
		return nil, apierr.Invalid("invalid_priority", "invalid priority value")
	}

	status := input.Status
	if status == "" {
		status = types.StatusPending
	} else if !types.ValidStatus(status) {
		return nil, apierr.Invalid("invalid_status", "invalid status value")
	}

	task := &types.Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  input.Description,
		DueDate:      dueDate,
		Priority:     priority,
		Status:       status,
		AssigneeID:   callerID,
		AssignedToID: assignedToID,
	}

	if _, err := ts.taskRepo.Create(ctx, nil, []*types.Task{task}); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if assignedToID != nil {
		ts.notifier.TaskAssigned(*assignedToID, task)
	}

	return task, nil
}

func (ts *taskService) ListTasks(ctx context.Context, input ListTasksInput) ([]TaskView, error) {
	filter := repos.TaskFilter{
		Search:   input.Search,
		Priority: input.Priority,
		Status:   input.Status,
	}
	if input.DueDate != "" {
		from, to, err := dayWindow(input.DueDate)
		if err != nil {
			// Listing never rejects; an unparsable day matches nothing.
			ts.log.Debug("Unparsable dueDate filter", "dueDate", input.DueDate, "error", err)
			return []TaskView{}, nil
		}
		filter.DueFrom = &from
		filter.DueTo = &to
	}

	tasks, err := ts.taskRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toTaskView(t))
	}
	return views, nil
}

func (ts *taskService) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput) (*types.Task, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, apierr.Invalid("invalid_task_id", "invalid task ID format")
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, apierr.Invalid("invalid_due_date", "invalid due date format")
	}

	var newAssignedTo *uuid.UUID
	if input.AssignedTo.Set && input.AssignedTo.Valid {
		newAssignedTo, err = ts.resolveAssignedTo(ctx, input.AssignedTo.Value)
		if err != nil {
			return nil, err
		}
	}

	if input.Priority != "" && !types.ValidPriority(input.Priority) {
		return nil, apierr.Invalid("invalid_priority", "invalid priority value")
	}
	if input.Status != "" && !types.ValidStatus(input.Status) {
		return nil, apierr.Invalid("invalid_status", "invalid status value")
	}

	tasks, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if len(tasks) == 0 {
		return nil, apierr.NotFound("task_not_found", "task not found")
	}
	task := tasks[0]

	// Snapshot before mutating: the notification decision compares the
	// previously persisted delegate against the incoming one.
	prevAssignedTo := task.AssignedToID

	if title := strings.TrimSpace(input.Title); title != "" {
		task.Title = title
	}
	if input.Description != "" {
		task.Description = input.Description
	}
	if dueDate != nil {
		task.DueDate = dueDate
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.AssignedTo.Set {
		task.AssignedToID = newAssignedTo
	}
	// AssigneeID stays as created; update never touches the creator.

	if _, err := ts.taskRepo.Save(ctx, nil, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if newAssignedTo != nil && !sameAssignee(prevAssignedTo, newAssignedTo) {
		ts.notifier.TaskAssigned(*newAssignedTo, task)
	}

	return task, nil
}

func (ts *taskService) DeleteTask(ctx context.Context, taskID string) error {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return apierr.Invalid("invalid_task_id", "invalid task ID format")
	}

	tasks, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if len(tasks) == 0 {
		return apierr.NotFound("task_not_found", "task not found")
	}

	if err := ts.taskRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{id}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (ts *taskService) resolveAssignedTo(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	assignedToID, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.Invalid("invalid_assigned_to", "invalid assignedTo ID format")
	}
	users, err := ts.userRepo.GetByIDs(ctx, nil, []uuid.UUID{assignedToID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignedTo user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.Invalid("assigned_to_not_found", "assignedTo user not found")
	}
	return &assignedToID, nil
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func toTaskView(t *types.Task) TaskView {
	view := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		view.Assignee = &UserSummary{ID: t.Assignee.ID, Username: t.Assignee.Username}
	}
	if t.AssignedToUser != nil {
		view.AssignedTo = &UserSummary{ID: t.AssignedToUser.ID, Username: t.AssignedToUser.Username}
	}
	return view
}

// parseDueDate accepts RFC3339 timestamps or bare dates. Empty input is
// not an error; it means the field was not provided.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date format: %q", raw)
}

// dayWindow returns the local [00:00:00, 23:59:59.999999999] bounds of
// the given calendar day.
func dayWindow(raw string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := day
	to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to, nil
}
