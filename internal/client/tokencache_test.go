package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeCarrier struct {
	mu         sync.Mutex
	logins     int
	loginErr   error
	token      string
	loginGate  chan struct{} // when non-nil, Login blocks until closed
}

func (f *fakeCarrier) Login(ctx context.Context) (string, error) {
	if f.loginGate != nil {
		<-f.loginGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return fmt.Sprintf("%s-%d", f.token, f.logins), nil
}

func (f *fakeCarrier) CreateShipment(ctx context.Context, token string, payload *ShipmentPayload) (*ShipmentResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeCarrier) Track(ctx context.Context, token, awb string) (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeCarrier) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func TestTokenCache_ReusesFreshToken(t *testing.T) {
	carrier := &fakeCarrier{token: "tok"}
	now := time.Now()
	cache := NewTokenCache(carrier, 12*time.Hour, func() time.Time { return now })

	ctx := context.Background()
	first, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("expected the cached token, got %q then %q", first, second)
	}
	if carrier.loginCount() != 1 {
		t.Errorf("logins = %d, want 1", carrier.loginCount())
	}
}

func TestTokenCache_RefreshesExpiredToken(t *testing.T) {
	carrier := &fakeCarrier{token: "tok"}
	now := time.Now()
	cache := NewTokenCache(carrier, 12*time.Hour, func() time.Time { return now })

	ctx := context.Background()
	if _, err := cache.Token(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(12*time.Hour + time.Minute)
	token, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-2" {
		t.Errorf("token = %q, want tok-2", token)
	}
	if carrier.loginCount() != 2 {
		t.Errorf("logins = %d, want 2", carrier.loginCount())
	}
}

func TestTokenCache_LoginFailureIsNotCached(t *testing.T) {
	carrier := &fakeCarrier{token: "tok", loginErr: fmt.Errorf("boom")}
	cache := NewTokenCache(carrier, 12*time.Hour, nil)

	ctx := context.Background()
	if _, err := cache.Token(ctx); err == nil {
		t.Fatal("expected the login failure to surface")
	}

	carrier.mu.Lock()
	carrier.loginErr = nil
	carrier.mu.Unlock()

	token, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if token == "" {
		t.Error("expected a token after the carrier recovered")
	}
}

func TestTokenCache_ConcurrentMissesShareOneLogin(t *testing.T) {
	gate := make(chan struct{})
	carrier := &fakeCarrier{token: "tok", loginGate: gate}
	cache := NewTokenCache(carrier, 12*time.Hour, nil)

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Token(context.Background())
			errs <- err
		}()
	}

	// Give every caller time to queue behind the in-flight login.
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := carrier.loginCount(); got != 1 {
		t.Errorf("logins = %d, want 1 (singleflight)", got)
	}
}
