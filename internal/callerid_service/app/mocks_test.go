package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/adapters/meevo"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// --- Mocks ---

type MockDirectoryAPI struct {
	mock.Mock
}

func (m *MockDirectoryAPI) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDirectoryAPI) ClientsPage(ctx context.Context, token string, page, itemsPerPage int) ([]meevo.ClientRecord, error) {
	args := m.Called(ctx, token, page, itemsPerPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meevo.ClientRecord), args.Error(1)
}

func (m *MockDirectoryAPI) ChangedClientsPage(ctx context.Context, token string, since time.Time, page int) ([]meevo.ClientRecord, error) {
	args := m.Called(ctx, token, since, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]meevo.ClientRecord), args.Error(1)
}

func (m *MockDirectoryAPI) ClientByID(ctx context.Context, token, id string) (*meevo.ClientRecord, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meevo.ClientRecord), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockResolver struct {
	mock.Mock
	name string
}

func (m *MockResolver) Name() string { return m.name }

func (m *MockResolver) Resolve(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	args := m.Called(ctx, token, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerRecord), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
