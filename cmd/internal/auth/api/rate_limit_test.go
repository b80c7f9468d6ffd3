package authapi

import (
	"testing"
	"time"
)

func TestThrottle_AllowsUpToMax(t *testing.T) {
	t.Parallel()

	th := newThrottle(time.Minute, 3)
	for i := 0; i < 3; i++ {
		if ok, _ := th.allow("k"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, retry := th.allow("k")
	if ok {
		t.Fatalf("fourth attempt should be rejected")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("retry hint out of range: %v", retry)
	}
}

func TestThrottle_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	th := newThrottle(time.Minute, 1)
	if ok, _ := th.allow("a"); !ok {
		t.Fatalf("first a")
	}
	if ok, _ := th.allow("b"); !ok {
		t.Fatalf("b must not share a's budget")
	}
	if ok, _ := th.allow("a"); ok {
		t.Fatalf("a should be exhausted")
	}
}

func TestThrottle_WindowSlides(t *testing.T) {
	t.Parallel()

	th := newThrottle(time.Minute, 1)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return base }

	if ok, _ := th.allow("k"); !ok {
		t.Fatalf("first attempt")
	}
	if ok, _ := th.allow("k"); ok {
		t.Fatalf("second attempt inside window")
	}

	th.now = func() time.Time { return base.Add(61 * time.Second) }
	if ok, _ := th.allow("k"); !ok {
		t.Fatalf("attempt after window should pass")
	}
}

func TestLoadConfigFromEnv_AuthAPI(t *testing.T) {
	t.Setenv("PLACEMATE_AUTHAPI_COOKIE_ENABLED", "false")
	t.Setenv("PLACEMATE_AUTHAPI_THROTTLE_MAX", "5")
	t.Setenv("PLACEMATE_AUTHAPI_THROTTLE_WINDOW", "1m")

	cfg := LoadConfigFromEnv()
	if cfg.CookieEnabled {
		t.Fatalf("cookie override lost")
	}
	if cfg.ThrottleMax != 5 || cfg.ThrottleWindow != time.Minute {
		t.Fatalf("throttle overrides lost: %+v", cfg)
	}

	// Invalid values fall back to defaults.
	t.Setenv("PLACEMATE_AUTHAPI_THROTTLE_MAX", "not-a-number")
	cfg = LoadConfigFromEnv()
	if cfg.ThrottleMax != DefaultConfig().ThrottleMax {
		t.Fatalf("invalid value must fall back: %d", cfg.ThrottleMax)
	}
}
