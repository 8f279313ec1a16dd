package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/logger"
)

func fastPolicy() Policy {
	return Policy{
		ConnectTimeout: 200 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectSucceedsAfterRetries(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := Connect(context.Background(), "redis", "localhost:6379", ping, fastPolicy(), logger.Nop()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping called %d times, want 3", calls)
	}
}

func TestConnectTimesOut(t *testing.T) {
	down := errors.New("connection refused")
	ping := func(context.Context) error { return down }

	err := Connect(context.Background(), "postgres", "db:5432", ping, fastPolicy(), logger.Nop())
	if !errors.Is(err, down) {
		t.Errorf("Connect() error = %v, want wrapped %v", err, down)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"zero connect timeout", func(p *Policy) { p.ConnectTimeout = 0 }},
		{"zero retry interval", func(p *Policy) { p.RetryInterval = 0 }},
		{"zero max wait", func(p *Policy) { p.MaxWait = 0 }},
		{"zero ping timeout", func(p *Policy) { p.PingTimeout = 0 }},
		{"negative warn threshold", func(p *Policy) { p.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fastPolicy()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	if err := DefaultPolicy.Validate(); err != nil {
		t.Errorf("DefaultPolicy.Validate() error = %v", err)
	}
}

func TestNextWaitCaps(t *testing.T) {
	tests := []struct {
		wait, max, want time.Duration
	}{
		{time.Second, 10 * time.Second, 2 * time.Second},
		{8 * time.Second, 10 * time.Second, 10 * time.Second},
		{10 * time.Second, 10 * time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := nextWait(tt.wait, tt.max); got != tt.want {
			t.Errorf("nextWait(%v, %v) = %v, want %v", tt.wait, tt.max, got, tt.want)
		}
	}
}
