// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package mocks provides testify mocks for the auth repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tienda/authcore/internal/auth"
)

// MockUserStore is a mock of auth.UserStore. It also satisfies
// auth.UserRepository and auth.CredentialAdmin on their own.
type MockUserStore struct {
	mock.Mock
}

// NewMockUserStore creates a MockUserStore whose expectations are asserted
// when the test finishes.
func NewMockUserStore(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserStore {
	m := &MockUserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// GetByUsername provides a mock function with given fields: ctx, username.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*auth.UserRecord, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

// Ping provides a mock function with given fields: ctx.
func (m *MockUserStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Create provides a mock function with given fields: ctx, username, credential.
func (m *MockUserStore) Create(ctx context.Context, username, credential string) (*auth.UserRecord, error) {
	args := m.Called(ctx, username, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

// List provides a mock function with given fields: ctx.
func (m *MockUserStore) List(ctx context.Context) ([]*auth.UserRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auth.UserRecord), args.Error(1)
}

// UpdateCredential provides a mock function with given fields: ctx, id, credential.
func (m *MockUserStore) UpdateCredential(ctx context.Context, id int64, credential string) error {
	args := m.Called(ctx, id, credential)
	return args.Error(0)
}

var _ auth.UserStore = (*MockUserStore)(nil)
