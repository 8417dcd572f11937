// Package mocks provides test doubles for the datawrapper client.
package mocks

import (
	"context"

	datawrapper "github.com/gazette-evn/colorado-snow-conditions/pkg/datawrapper"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// UploadCSV provides a mock function with given fields: ctx, chartID, csv
func (_m *MockClient) UploadCSV(ctx context.Context, chartID string, csv []byte) error {
	ret := _m.Called(ctx, chartID, csv)

	if len(ret) == 0 {
		panic("no return value specified for UploadCSV")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []byte) error); ok {
		r0 = rf(ctx, chartID, csv)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Publish provides a mock function with given fields: ctx, chartID
func (_m *MockClient) Publish(ctx context.Context, chartID string) (*datawrapper.PublishResponse, error) {
	ret := _m.Called(ctx, chartID)

	if len(ret) == 0 {
		panic("no return value specified for Publish")
	}

	var r0 *datawrapper.PublishResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*datawrapper.PublishResponse, error)); ok {
		return rf(ctx, chartID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *datawrapper.PublishResponse); ok {
		r0 = rf(ctx, chartID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*datawrapper.PublishResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, chartID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
