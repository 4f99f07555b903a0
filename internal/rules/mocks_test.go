package rules

import (
	"context"
	"errors"
	"sync"

	"github.com/garyjia/asana-automation/internal/asana"
)

var errMock = errors.New("mock failure")

type taskUpdate struct {
	taskGID string
	fields  map[string]interface{}
}

// mockTaskService is a hand-written fake of the tracker task API.
type mockTaskService struct {
	mu sync.Mutex

	tasks        map[string]*asana.Task
	comments     map[string][]asana.Story
	attachments  map[string][]asana.Attachment
	projectTasks []asana.TaskRef

	getErr    error
	updateErr error
	deleteErr error
	listErr   error

	updates []taskUpdate
	deleted []string
}

func newMockTaskService() *mockTaskService {
	return &mockTaskService{
		tasks:       make(map[string]*asana.Task),
		comments:    make(map[string][]asana.Story),
		attachments: make(map[string][]asana.Attachment),
	}
}

func (m *mockTaskService) GetTask(_ context.Context, taskGID string) (*asana.Task, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[taskGID]
	if !ok {
		return nil, asana.ErrNotFound
	}
	return task, nil
}

func (m *mockTaskService) UpdateTask(_ context.Context, taskGID string, fields map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, taskUpdate{taskGID: taskGID, fields: fields})
	return nil
}

func (m *mockTaskService) DeleteTask(_ context.Context, taskGID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, taskGID)
	return nil
}

func (m *mockTaskService) GetComments(_ context.Context, taskGID string) ([]asana.Story, error) {
	return m.comments[taskGID], nil
}

func (m *mockTaskService) GetAttachments(_ context.Context, taskGID string) ([]asana.Attachment, error) {
	return m.attachments[taskGID], nil
}

func (m *mockTaskService) ListProjectTasks(_ context.Context, _ string) ([]asana.TaskRef, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.projectTasks, nil
}

// mockUserDirectory serves a fixed set of workspace users.
type mockUserDirectory struct {
	users   map[string]*asana.User
	listErr error
}

func newMockUserDirectory(users ...asana.User) *mockUserDirectory {
	m := &mockUserDirectory{users: make(map[string]*asana.User)}
	for i := range users {
		m.users[users[i].GID] = &users[i]
	}
	return m
}

func (m *mockUserDirectory) GetUser(_ context.Context, userGID string) (*asana.User, error) {
	user, ok := m.users[userGID]
	if !ok {
		return nil, asana.ErrNotFound
	}
	return user, nil
}

func (m *mockUserDirectory) ListUsers(_ context.Context, _ string) ([]asana.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]asana.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

// mockEnumOptions returns a fixed option mapping for the status field.
type mockEnumOptions struct {
	options *asana.EnumOptions
	err     error
}

func newMockEnumOptions(byID map[string]string) *mockEnumOptions {
	byName := make(map[string]string, len(byID))
	for gid, name := range byID {
		byName[name] = gid
	}
	return &mockEnumOptions{options: &asana.EnumOptions{ByID: byID, ByName: byName}}
}

func (m *mockEnumOptions) GetEnumOptions(_ context.Context, _ string) (*asana.EnumOptions, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.options, nil
}

type statusUpdate struct {
	company string
	status  string
}

// mockSheet records scoring-sheet calls.
type mockSheet struct {
	appended      []string
	statusUpdates []statusUpdate

	appendErr error
	updateErr error
}

func (m *mockSheet) AppendCompany(company string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, company)
	return nil
}

func (m *mockSheet) UpdateCompanyStatus(company, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdates = append(m.statusUpdates, statusUpdate{company: company, status: status})
	return nil
}

type ruleNotification struct {
	taskGID     string
	action      string
	description string
}

type failureNotification struct {
	taskGID string
	reason  string
	rule    string
}

// mockNotifier records notifications instead of posting them.
type mockNotifier struct {
	mu       sync.Mutex
	plain    []string
	rules    []ruleNotification
	failures []failureNotification
}

func (m *mockNotifier) Notify(_ context.Context, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plain = append(m.plain, text)
}

func (m *mockNotifier) NotifyRule(_ context.Context, taskGID, action, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, ruleNotification{taskGID: taskGID, action: action, description: description})
}

func (m *mockNotifier) NotifyFailure(_ context.Context, taskGID, reason, rule string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, failureNotification{taskGID: taskGID, reason: reason, rule: rule})
}
