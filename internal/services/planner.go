package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

const dashboardGoals = 5

// ErrNoDate is returned when a calendar event is requested for an undated
// task or goal.
var ErrNoDate = errors.New("item has no date")

// Planner manages one owner's goals, tasks and calendar events.
type Planner struct {
	store store.Store
	norm  *productivity.Normalizer
	notes *Notifications
	clock productivity.Clock
	log   *zap.Logger
}

func NewPlanner(st store.Store, norm *productivity.Normalizer, notes *Notifications, clock productivity.Clock, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		store: st,
		norm:  norm,
		notes: notes,
		clock: clock,
		log:   log.With(zap.String("component", "planner")),
	}
}

type GoalFilter struct {
	Category   models.GoalCategory
	ActiveOnly bool
}

type TaskFilter struct {
	GoalID   string
	DueToday bool
}

type EventFilter struct {
	Range *productivity.Window
}

type Dashboard struct {
	Goals       []models.Goal        `json:"goals"`
	TodayTasks  []models.Task        `json:"todayTasks"`
	TodayEvents []models.Event       `json:"todayEvents"`
	Stats       productivity.Summary `json:"stats"`
}

// Goals

func (p *Planner) CreateGoal(ctx context.Context, sess session.Session, req models.CreateGoalRequest) (models.Goal, error) {
	deadline, err := p.inputDate("goal", "deadline", req.Deadline)
	if err != nil {
		return models.Goal{}, err
	}
	fields := map[string]any{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"category":    string(req.Category),
		"deadline":    deadline,
		"progress":    models.ClampProgress(req.Progress),
		"priority":    string(req.Priority),
		"tags":        tags(req.Tags),
		"status":      string(models.GoalActive),
	}
	if _, err := p.norm.Goal(models.Record{OwnerID: sess.OwnerID, Fields: fields}); err != nil {
		return models.Goal{}, err
	}

	id, err := p.store.Create(ctx, sess.OwnerID, models.KindGoals, fields)
	if err != nil {
		return models.Goal{}, err
	}
	goal, err := p.GetGoal(ctx, sess, id)
	if err != nil {
		return models.Goal{}, err
	}

	p.notify(ctx, sess.OwnerID, NewNotification{
		Type:        models.NotifyGoalCreated,
		Title:       "Goal created",
		Message:     fmt.Sprintf("You set a new goal: %q", goal.Title),
		RelatedID:   goal.ID,
		RelatedType: "goal",
	})
	return goal, nil
}

func (p *Planner) GetGoal(ctx context.Context, sess session.Session, id string) (models.Goal, error) {
	rec, err := p.store.Get(ctx, sess.OwnerID, models.KindGoals, id)
	if err != nil {
		return models.Goal{}, err
	}
	return p.norm.Goal(rec)
}

func (p *Planner) ListGoals(ctx context.Context, sess session.Session, filter GoalFilter) ([]models.Goal, error) {
	recs, err := p.store.List(ctx, sess.OwnerID, models.KindGoals)
	if err != nil {
		return nil, err
	}
	goals := p.norm.Goals(recs)

	out := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && g.Status != models.GoalActive {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (p *Planner) UpdateGoal(ctx context.Context, sess session.Session, id string, req models.UpdateGoalRequest) (models.Goal, error) {
	current, err := p.GetGoal(ctx, sess, id)
	if err != nil {
		return models.Goal{}, err
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Category != nil {
		patch["category"] = string(*req.Category)
	}
	if req.Deadline != nil {
		deadline, err := p.inputDate("goal", "deadline", req.Deadline)
		if err != nil {
			return models.Goal{}, err
		}
		patch["deadline"] = deadline
	}
	if req.Progress != nil {
		patch["progress"] = models.ClampProgress(*req.Progress)
	}
	if req.Priority != nil {
		patch["priority"] = string(*req.Priority)
	}
	if req.Tags != nil {
		patch["tags"] = tags(req.Tags)
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if err := p.validatePatch(ctx, sess, models.KindGoals, id, patch, func(r models.Record) error {
		_, err := p.norm.Goal(r)
		return err
	}); err != nil {
		return models.Goal{}, err
	}

	if err := p.store.Update(ctx, sess.OwnerID, models.KindGoals, id, patch); err != nil {
		return models.Goal{}, err
	}
	updated, err := p.GetGoal(ctx, sess, id)
	if err != nil {
		return models.Goal{}, err
	}

	if current.Status != models.GoalCompleted && updated.Status == models.GoalCompleted {
		p.notify(ctx, sess.OwnerID, NewNotification{
			Type:        models.NotifyGoalCompleted,
			Title:       "Goal completed!",
			Message:     fmt.Sprintf("You completed %q", updated.Title),
			RelatedID:   updated.ID,
			RelatedType: "goal",
		})
	}
	return updated, nil
}

// UpdateGoalProgress sets progress, clamped to [0,100].
func (p *Planner) UpdateGoalProgress(ctx context.Context, sess session.Session, id string, progress int) (models.Goal, error) {
	return p.UpdateGoal(ctx, sess, id, models.UpdateGoalRequest{Progress: &progress})
}

// DeleteGoal removes the goal only; tasks that reference it keep a dangling
// goalId, which readers treat as no goal.
func (p *Planner) DeleteGoal(ctx context.Context, sess session.Session, id string) error {
	return p.store.Delete(ctx, sess.OwnerID, models.KindGoals, id)
}

// Tasks

func (p *Planner) CreateTask(ctx context.Context, sess session.Session, req models.CreateTaskRequest) (models.Task, error) {
	due, err := p.inputDate("task", "dueDate", req.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	subtasks := make([]map[string]any, 0, len(req.Subtasks))
	for _, st := range req.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			continue
		}
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		subtasks = append(subtasks, map[string]any{"id": id, "title": strings.TrimSpace(st.Title), "completed": st.Completed})
	}
	fields := map[string]any{
		"goalId":      nullable(req.GoalID),
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"dueDate":     due,
		"status":      string(models.TaskTodo),
		"priority":    string(req.Priority),
		"subtasks":    subtasks,
		"tags":        tags(req.Tags),
	}
	if _, err := p.norm.Task(models.Record{OwnerID: sess.OwnerID, Fields: fields}); err != nil {
		return models.Task{}, err
	}

	id, err := p.store.Create(ctx, sess.OwnerID, models.KindTasks, fields)
	if err != nil {
		return models.Task{}, err
	}
	return p.GetTask(ctx, sess, id)
}

func (p *Planner) GetTask(ctx context.Context, sess session.Session, id string) (models.Task, error) {
	rec, err := p.store.Get(ctx, sess.OwnerID, models.KindTasks, id)
	if err != nil {
		return models.Task{}, err
	}
	return p.norm.Task(rec)
}

func (p *Planner) ListTasks(ctx context.Context, sess session.Session, filter TaskFilter) ([]models.Task, error) {
	recs, err := p.store.List(ctx, sess.OwnerID, models.KindTasks)
	if err != nil {
		return nil, err
	}
	tasks := p.norm.Tasks(recs)

	if filter.GoalID != "" {
		byGoal := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.GoalID == filter.GoalID {
				byGoal = append(byGoal, t)
			}
		}
		tasks = byGoal
	}
	if filter.DueToday {
		tasks = productivity.SelectInWindow(tasks, productivity.TodayWindow(p.now()), string(models.TaskDone))
	}
	return tasks, nil
}

func (p *Planner) UpdateTask(ctx context.Context, sess session.Session, id string, req models.UpdateTaskRequest) (models.Task, error) {
	current, err := p.GetTask(ctx, sess, id)
	if err != nil {
		return models.Task{}, err
	}

	patch := map[string]any{}
	if req.GoalID != nil {
		patch["goalId"] = nullable(*req.GoalID)
	}
	if req.Title != nil {
		patch["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.DueDate != nil {
		due, err := p.inputDate("task", "dueDate", req.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		patch["dueDate"] = due
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if req.Priority != nil {
		patch["priority"] = string(*req.Priority)
	}
	if req.Tags != nil {
		patch["tags"] = tags(req.Tags)
	}
	if err := p.validatePatch(ctx, sess, models.KindTasks, id, patch, func(r models.Record) error {
		_, err := p.norm.Task(r)
		return err
	}); err != nil {
		return models.Task{}, err
	}

	if err := p.store.Update(ctx, sess.OwnerID, models.KindTasks, id, patch); err != nil {
		return models.Task{}, err
	}
	updated, err := p.GetTask(ctx, sess, id)
	if err != nil {
		return models.Task{}, err
	}

	if current.Status != models.TaskDone && updated.Status == models.TaskDone {
		p.notify(ctx, sess.OwnerID, NewNotification{
			Type:        models.NotifyTaskCompleted,
			Title:       "Task completed",
			Message:     fmt.Sprintf("Nice work finishing %q", updated.Title),
			RelatedID:   updated.ID,
			RelatedType: "task",
		})
	}
	return updated, nil
}

// UpdateTaskStatus moves a task to any status.
func (p *Planner) UpdateTaskStatus(ctx context.Context, sess session.Session, id string, status models.TaskStatus) (models.Task, error) {
	return p.UpdateTask(ctx, sess, id, models.UpdateTaskRequest{Status: &status})
}

func (p *Planner) DeleteTask(ctx context.Context, sess session.Session, id string) error {
	return p.store.Delete(ctx, sess.OwnerID, models.KindTasks, id)
}

func (p *Planner) AddSubtask(ctx context.Context, sess session.Session, taskID, title string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, &productivity.ValidationError{Kind: "subtask", Field: "title", Reason: "is required"}
	}
	task, err := p.GetTask(ctx, sess, taskID)
	if err != nil {
		return models.Task{}, err
	}
	subtasks := append(task.Subtasks, models.Subtask{ID: uuid.NewString(), Title: title})
	return p.saveSubtasks(ctx, sess, taskID, subtasks)
}

func (p *Planner) SetSubtaskCompleted(ctx context.Context, sess session.Session, taskID, subtaskID string, completed bool) (models.Task, error) {
	task, err := p.GetTask(ctx, sess, taskID)
	if err != nil {
		return models.Task{}, err
	}
	found := false
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Completed = completed
			found = true
		}
	}
	if !found {
		return models.Task{}, store.ErrNotFound
	}
	return p.saveSubtasks(ctx, sess, taskID, task.Subtasks)
}

func (p *Planner) saveSubtasks(ctx context.Context, sess session.Session, taskID string, subtasks []models.Subtask) (models.Task, error) {
	raw := make([]map[string]any, 0, len(subtasks))
	for _, st := range subtasks {
		raw = append(raw, map[string]any{"id": st.ID, "title": st.Title, "completed": st.Completed})
	}
	if err := p.store.Update(ctx, sess.OwnerID, models.KindTasks, taskID, map[string]any{"subtasks": raw}); err != nil {
		return models.Task{}, err
	}
	return p.GetTask(ctx, sess, taskID)
}

// Events

func (p *Planner) CreateEvent(ctx context.Context, sess session.Session, req models.CreateEventRequest) (models.Event, error) {
	start, err := p.inputDate("event", "start", &req.Start)
	if err != nil {
		return models.Event{}, err
	}
	if start == nil {
		return models.Event{}, &productivity.ValidationError{Kind: "event", Field: "start", Reason: "is required"}
	}
	end, err := p.inputDate("event", "end", &req.End)
	if err != nil {
		return models.Event{}, err
	}
	if end == nil {
		end = start
	}
	fields := map[string]any{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"start":       start,
		"end":         end,
		"allDay":      req.AllDay,
		"color":       req.Color,
		"type":        string(req.Type),
		"relatedId":   nullable(req.RelatedID),
	}
	return p.createEvent(ctx, sess, fields)
}

func (p *Planner) createEvent(ctx context.Context, sess session.Session, fields map[string]any) (models.Event, error) {
	if _, err := p.norm.Event(models.Record{OwnerID: sess.OwnerID, Fields: fields}); err != nil {
		return models.Event{}, err
	}
	id, err := p.store.Create(ctx, sess.OwnerID, models.KindEvents, fields)
	if err != nil {
		return models.Event{}, err
	}
	return p.GetEvent(ctx, sess, id)
}

// CreateEventFromTask puts a dated task on the calendar as an all-day event.
// The task and the event are independent records.
func (p *Planner) CreateEventFromTask(ctx context.Context, sess session.Session, taskID string) (models.Event, error) {
	task, err := p.GetTask(ctx, sess, taskID)
	if err != nil {
		return models.Event{}, err
	}
	if task.DueDate == nil {
		return models.Event{}, ErrNoDate
	}
	return p.createEvent(ctx, sess, map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"start":       task.DueDate.UTC(),
		"end":         task.DueDate.UTC(),
		"allDay":      true,
		"color":       models.ColorTask,
		"type":        string(models.EventTypeTask),
		"relatedId":   task.ID,
	})
}

// CreateEventFromGoal puts a goal's deadline on the calendar.
func (p *Planner) CreateEventFromGoal(ctx context.Context, sess session.Session, goalID string) (models.Event, error) {
	goal, err := p.GetGoal(ctx, sess, goalID)
	if err != nil {
		return models.Event{}, err
	}
	if goal.Deadline == nil {
		return models.Event{}, ErrNoDate
	}
	return p.createEvent(ctx, sess, map[string]any{
		"title":       "Goal: " + goal.Title,
		"description": goal.Description,
		"start":       goal.Deadline.UTC(),
		"end":         goal.Deadline.UTC(),
		"allDay":      true,
		"color":       models.ColorGoal,
		"type":        string(models.EventTypeGoal),
		"relatedId":   goal.ID,
	})
}

func (p *Planner) GetEvent(ctx context.Context, sess session.Session, id string) (models.Event, error) {
	rec, err := p.store.Get(ctx, sess.OwnerID, models.KindEvents, id)
	if err != nil {
		return models.Event{}, err
	}
	return p.norm.Event(rec)
}

// ListEvents returns events ordered by start; undated events sort last.
func (p *Planner) ListEvents(ctx context.Context, sess session.Session, filter EventFilter) ([]models.Event, error) {
	recs, err := p.store.List(ctx, sess.OwnerID, models.KindEvents)
	if err != nil {
		return nil, err
	}
	events := p.norm.Events(recs)
	if filter.Range != nil {
		events = productivity.SelectInWindow(events, *filter.Range)
	}
	sortByStart(events)
	return events, nil
}

func (p *Planner) TodayEvents(ctx context.Context, sess session.Session) ([]models.Event, error) {
	today := productivity.TodayWindow(p.now())
	return p.ListEvents(ctx, sess, EventFilter{Range: &today})
}

func (p *Planner) UpdateEvent(ctx context.Context, sess session.Session, id string, req models.UpdateEventRequest) (models.Event, error) {
	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Start != nil {
		start, err := p.inputDate("event", "start", req.Start)
		if err != nil {
			return models.Event{}, err
		}
		if start == nil {
			return models.Event{}, &productivity.ValidationError{Kind: "event", Field: "start", Reason: "is required"}
		}
		patch["start"] = start
	}
	if req.End != nil {
		end, err := p.inputDate("event", "end", req.End)
		if err != nil {
			return models.Event{}, err
		}
		patch["end"] = end
	}
	if req.AllDay != nil {
		patch["allDay"] = *req.AllDay
	}
	if req.Color != nil {
		patch["color"] = *req.Color
	}
	if err := p.validatePatch(ctx, sess, models.KindEvents, id, patch, func(r models.Record) error {
		_, err := p.norm.Event(r)
		return err
	}); err != nil {
		return models.Event{}, err
	}

	if err := p.store.Update(ctx, sess.OwnerID, models.KindEvents, id, patch); err != nil {
		return models.Event{}, err
	}
	return p.GetEvent(ctx, sess, id)
}

func (p *Planner) DeleteEvent(ctx context.Context, sess session.Session, id string) error {
	return p.store.Delete(ctx, sess.OwnerID, models.KindEvents, id)
}

// Dashboard gathers everything the home screen shows.
func (p *Planner) Dashboard(ctx context.Context, sess session.Session) (Dashboard, error) {
	goals, err := p.ListGoals(ctx, sess, GoalFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	tasks, err := p.ListTasks(ctx, sess, TaskFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	events, err := p.ListEvents(ctx, sess, EventFilter{})
	if err != nil {
		return Dashboard{}, err
	}

	now := p.now()
	today := productivity.TodayWindow(now)
	top := goals
	if len(top) > dashboardGoals {
		top = top[:dashboardGoals]
	}
	return Dashboard{
		Goals:       top,
		TodayTasks:  productivity.SelectInWindow(tasks, today, string(models.TaskDone)),
		TodayEvents: productivity.SelectInWindow(events, today),
		Stats:       productivity.Aggregate(goals, tasks, events, now),
	}, nil
}

// validatePatch checks that applying patch to the stored record still
// yields a valid entity.
func (p *Planner) validatePatch(ctx context.Context, sess session.Session, kind models.Kind, id string, patch map[string]any, validate func(models.Record) error) error {
	rec, err := p.store.Get(ctx, sess.OwnerID, kind, id)
	if err != nil {
		return err
	}
	merged := make(map[string]any, len(rec.Fields)+len(patch))
	for k, v := range rec.Fields {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	rec.Fields = merged
	return validate(rec)
}

// inputDate parses a date supplied by a client. nil means "not supplied",
// an empty string clears the field. Unlike stored data, malformed input is
// rejected.
func (p *Planner) inputDate(kind, field string, raw *string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := productivity.ParseInstant(field, *raw, p.norm.Location())
	if err != nil {
		return nil, &productivity.ValidationError{Kind: kind, Field: field, Reason: "is not a valid date"}
	}
	if t == nil {
		return nil, nil
	}
	return t.UTC(), nil
}

func (p *Planner) notify(ctx context.Context, ownerID string, in NewNotification) {
	if p.notes == nil {
		return
	}
	if _, err := p.notes.Create(ctx, ownerID, in); err != nil {
		p.log.Warn("notification not created", zap.String("owner", ownerID), zap.String("type", string(in.Type)), zap.Error(err))
	}
}

func (p *Planner) now() time.Time {
	return p.clock.Now().In(p.norm.Location())
}

func sortByStart(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Start, events[j].Start
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

func tags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
