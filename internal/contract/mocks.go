package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/queuetrace/schema"
)

// MockEventSource is a mock implementation of the EventSource interface.
type MockEventSource struct {
	mock.Mock
}

var _ EventSource = (*MockEventSource)(nil)

// Inflows mocks the Inflows method.
func (m *MockEventSource) Inflows(ctx context.Context) ([]schema.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]schema.Event)
	return events, args.Error(1)
}

// Outflows mocks the Outflows method.
func (m *MockEventSource) Outflows(ctx context.Context) ([]schema.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]schema.Event)
	return events, args.Error(1)
}

// MockAnchorStore is a mock implementation of the AnchorStore interface.
type MockAnchorStore struct {
	mock.Mock
}

var _ AnchorStore = (*MockAnchorStore)(nil)

// AddAnchor mocks the AddAnchor method.
func (m *MockAnchorStore) AddAnchor(anchor schema.Anchor) (int64, error) {
	args := m.Called(anchor)
	return args.Get(0).(int64), args.Error(1)
}

// LatestAnchor mocks the LatestAnchor method.
func (m *MockAnchorStore) LatestAnchor(atOrBefore time.Time) (schema.Anchor, error) {
	args := m.Called(atOrBefore)
	anchor, _ := args.Get(0).(schema.Anchor)
	return anchor, args.Error(1)
}

// ListAnchors mocks the ListAnchors method.
func (m *MockAnchorStore) ListAnchors(limit int) ([]schema.Anchor, error) {
	args := m.Called(limit)
	anchors, _ := args.Get(0).([]schema.Anchor)
	return anchors, args.Error(1)
}

// ClearAnchors mocks the ClearAnchors method.
func (m *MockAnchorStore) ClearAnchors() error {
	args := m.Called()
	return args.Error(0)
}

// BeginRun mocks the BeginRun method.
func (m *MockAnchorStore) BeginRun(startTime time.Time, metric schema.MetricKind, freq schema.Frequency, params map[string]any) (int64, error) {
	args := m.Called(startTime, metric, freq, params)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun mocks the EndRun method.
func (m *MockAnchorStore) EndRun(runID int64, endTime time.Time, totalPoints int) error {
	args := m.Called(runID, endTime, totalPoints)
	return args.Error(0)
}

// ListRuns mocks the ListRuns method.
func (m *MockAnchorStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetStatus mocks the GetStatus method.
func (m *MockAnchorStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.StoreStatus)
	return status, args.Error(1)
}

// Close mocks the Close method.
func (m *MockAnchorStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStoreManager is a mock implementation of the StoreManager interface.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = (*MockStoreManager)(nil)

// GetAnchorStore mocks the GetAnchorStore method.
func (m *MockStoreManager) GetAnchorStore() AnchorStore {
	args := m.Called()
	store, _ := args.Get(0).(AnchorStore)
	return store
}
