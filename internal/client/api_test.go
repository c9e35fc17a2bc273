package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Varun5711/modesta/internal/clickhouse"
	usermodel "github.com/Varun5711/modesta/internal/models/user"
	"github.com/Varun5711/modesta/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedReader struct{}

func (fixedReader) CountEventsByType(context.Context, time.Time) ([]clickhouse.EventCount, error) {
	return []clickhouse.EventCount{{EventType: "login.succeeded", Count: 12}, {EventType: "signup", Count: 3}}, nil
}

func (fixedReader) EmailDeliveryFailures(context.Context, time.Time) ([]clickhouse.DeliveryFailure, error) {
	return []clickhouse.DeliveryFailure{{Failures: 2, Users: 1}, {Failures: 1, Users: 1}}, nil
}

func (fixedReader) LoginDeviceStats(context.Context, time.Time) ([]clickhouse.DeviceStats, error) {
	return nil, nil
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server message", &APIError{Status: 401, Message: service.MsgInvalidCredentials}, service.MsgInvalidCredentials},
		{"validation list", &APIError{Status: 400, Message: "Validation failed", Errors: []string{"a", "b"}}, "a. b"},
		{"wrapped", fmt.Errorf("login: %w", &APIError{Status: 404, Message: service.MsgUserNotFound}), service.MsgUserNotFound},
		{"input", &InputError{Messages: []string{"Passwords do not match"}}, "Passwords do not match"},
		{"unreachable", fmt.Errorf("%w: dial tcp", ErrUnreachable), MsgUnreachable},
		{"other", errors.New("boom"), MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestAPIError_FallsBackToStatus(t *testing.T) {
	err := &APIError{Status: 502}
	assert.Equal(t, "request failed with status 502", err.Error())
}

func TestAPI_Unreachable(t *testing.T) {
	api := NewAPI("http://127.0.0.1:1/api", time.Second)

	_, err := api.Me(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, MsgUnreachable, UserMessage(err))
}

func TestAPI_SignupAndMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.api.Signup(ctx, signupRequest("Api@Example.com"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, service.MsgRegistered, resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, "api@example.com", resp.User.Email)

	user, err := f.api.Me(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "PK", user.Country)

	_, err = f.api.Signup(ctx, signupRequest("api@example.com"))
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, service.MsgDuplicateEmail, UserMessage(err))
}

func TestAPI_AdminAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWith(t, fixedReader{})
	f.seed(t, "admin@example.com", "Password1", usermodel.RoleAdmin)
	f.seed(t, "user@example.com", "Password1", usermodel.RoleUser)

	admin, err := f.api.Login(ctx, "admin@example.com", "Password1")
	require.NoError(t, err)

	counts, err := f.api.EventCounts(ctx, admin.Token, 7)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "login.succeeded", counts[0].EventType)
	assert.Equal(t, uint64(12), counts[0].Count)

	failures, err := f.api.EmailFailures(ctx, admin.Token, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), failures.Total)

	user, err := f.api.Login(ctx, "user@example.com", "Password1")
	require.NoError(t, err)
	_, err = f.api.EventCounts(ctx, user.Token, 7)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}
