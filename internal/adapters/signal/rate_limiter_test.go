package signal

import (
	"testing"
	"time"
)

func TestChatRateLimiter(t *testing.T) {
	rl := NewChatRateLimiter(2, 100*time.Millisecond)

	if !rl.Allow("u1") || !rl.Allow("u1") {
		t.Fatal("first two messages must pass")
	}
	if rl.Allow("u1") {
		t.Error("third message within window must be throttled")
	}
	if !rl.Allow("u2") {
		t.Error("limits are per user")
	}

	time.Sleep(120 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("message after window must pass")
	}
}

func TestChatRateLimiterDisabled(t *testing.T) {
	rl := NewChatRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("u1") {
			t.Fatal("zero limit disables throttling")
		}
	}
}
