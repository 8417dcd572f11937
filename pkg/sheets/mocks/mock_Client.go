// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	sheets "github.com/gazette-evn/colorado-snow-conditions/pkg/sheets"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Clear provides a mock function with given fields: ctx, spreadsheetID, rng
func (_m *MockClient) Clear(ctx context.Context, spreadsheetID string, rng string) error {
	ret := _m.Called(ctx, spreadsheetID, rng)

	if len(ret) == 0 {
		panic("no return value specified for Clear")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, spreadsheetID, rng)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Update provides a mock function with given fields: ctx, spreadsheetID, rng, values
func (_m *MockClient) Update(ctx context.Context, spreadsheetID string, rng string, values [][]any) (*sheets.UpdateResponse, error) {
	ret := _m.Called(ctx, spreadsheetID, rng, values)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	var r0 *sheets.UpdateResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]any) (*sheets.UpdateResponse, error)); ok {
		return rf(ctx, spreadsheetID, rng, values)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, [][]any) *sheets.UpdateResponse); ok {
		r0 = rf(ctx, spreadsheetID, rng, values)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*sheets.UpdateResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, [][]any) error); ok {
		r1 = rf(ctx, spreadsheetID, rng, values)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SheetID provides a mock function with given fields: ctx, spreadsheetID, title
func (_m *MockClient) SheetID(ctx context.Context, spreadsheetID string, title string) (int64, error) {
	ret := _m.Called(ctx, spreadsheetID, title)

	if len(ret) == 0 {
		panic("no return value specified for SheetID")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (int64, error)); ok {
		return rf(ctx, spreadsheetID, title)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) int64); ok {
		r0 = rf(ctx, spreadsheetID, title)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, spreadsheetID, title)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FormatHeader provides a mock function with given fields: ctx, spreadsheetID, sheetID, columns
func (_m *MockClient) FormatHeader(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	ret := _m.Called(ctx, spreadsheetID, sheetID, columns)

	if len(ret) == 0 {
		panic("no return value specified for FormatHeader")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int64, int) error); ok {
		r0 = rf(ctx, spreadsheetID, sheetID, columns)
	} else {
		r0 = ret.Error(0)
	}

	return r0
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
