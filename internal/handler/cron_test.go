package handler

import (
	"context"
	"net/http"
	"slices"
	"testing"

	"github.com/dukerupert/touchline/internal/push"
)

type fakeRunner struct {
	calls  int
	sum    push.Summary
	ctxErr error
}

func (f *fakeRunner) RunPass(ctx context.Context) push.Summary {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.sum
}

func TestCronNotifications(t *testing.T) {
	env := setupEnv(t)
	runner := &fakeRunner{sum: push.Summary{Sent: 4, Expired: 1, Notifications: 3, Hour: 18}}
	h := NewCronHandler(runner, env.hub, env.logger)

	rec := serve(h.Notifications, jsonRequest(t, "POST", "/api/cron/notifications", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got push.Summary
	decodeBody(t, rec, &got)
	if got != runner.sum {
		t.Errorf("summary = %+v, want %+v", got, runner.sum)
	}
	if runner.calls != 1 {
		t.Errorf("passes = %d, want 1", runner.calls)
	}
	if types := env.hub.types(); !slices.Equal(types, []string{"notification_pass_ran"}) {
		t.Errorf("broadcasts = %v", types)
	}
}

func TestCronWithoutRunner(t *testing.T) {
	env := setupEnv(t)
	h := NewCronHandler(nil, env.hub, env.logger)

	rec := serve(h.Notifications, jsonRequest(t, "POST", "/api/cron/notifications", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestCronPassOutlivesCaller(t *testing.T) {
	env := setupEnv(t)
	runner := &fakeRunner{}
	h := NewCronHandler(runner, env.hub, env.logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := jsonRequest(t, "POST", "/api/cron/notifications", nil).WithContext(ctx)
	serve(h.Notifications, req)

	if runner.calls != 1 {
		t.Fatalf("passes = %d, want 1", runner.calls)
	}
	if runner.ctxErr != nil {
		t.Errorf("pass context err = %v, want nil after caller hung up", runner.ctxErr)
	}
}
