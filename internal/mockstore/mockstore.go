// Package mockstore provides a testify-based mock of the entity store used by
// the router package. Router tests use it to reach error paths that the real
// in-memory store never produces.
package mockstore

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/socialgood/internal/user"
)

// StoreMock is a testify mock of the store interface the router depends on.
type StoreMock struct {
	mock.Mock

	// OnCount, when set, answers Count without going through testify.
	OnCount func(ctx context.Context) int
}

func (m *StoreMock) Register(ctx context.Context, u user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *StoreMock) Get(ctx context.Context, id string) (user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(user.User)
	return u, args.Error(1)
}

func (m *StoreMock) Update(ctx context.Context, u user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *StoreMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StoreMock) Login(ctx context.Context, id, password string) (user.User, error) {
	args := m.Called(ctx, id, password)
	u, _ := args.Get(0).(user.User)
	return u, args.Error(1)
}

// Count delegates to OnCount when set.
func (m *StoreMock) Count(ctx context.Context) int {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	args := m.Called(ctx)
	return args.Int(0)
}
