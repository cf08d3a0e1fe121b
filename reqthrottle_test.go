package reqthrottle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/reqthrottle"
	"github.com/adamwoolhether/reqthrottle/client"
	"github.com/adamwoolhether/reqthrottle/throttler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHTTP(t *testing.T) {
	testCases := []struct {
		name   string
		tName  string
		opts   []throttler.Option
		expErr error
	}{
		{
			name:  "Default client",
			tName: "api",
		},
		{
			name:   "Empty name",
			tName:  "",
			expErr: throttler.ErrInvalidConfig,
		},
		{
			name:   "Negative delay",
			tName:  "api",
			opts:   []throttler.Option{throttler.WithDelay(-time.Second)},
			expErr: throttler.ErrInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			th, err := reqthrottle.NewHTTP(tc.tName, nil, tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if th.Status() != throttler.StatusInitialized {
				t.Errorf("exp status %s; got %s", throttler.StatusInitialized, th.Status())
			}
		})
	}
}

func TestHTTPThrottler_Dispatch(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		times []time.Time
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		times = append(times, time.Now())
		mu.Unlock()

		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer ts.Close()

	const delay = 30 * time.Millisecond

	th, err := reqthrottle.NewHTTP("dispatch", nil,
		throttler.WithDelay(delay),
		throttler.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := th.Start(ctx); err != nil {
		t.Fatal(err)
	}

	specs := []client.Spec{
		{Method: http.MethodGet, URL: ts.URL + "/a", ExpCode: http.StatusOK},
		{Method: http.MethodGet, URL: ts.URL + "/missing", ExpCode: http.StatusOK},
		{Method: "FETCH", URL: ts.URL + "/invalid"},
		{Method: http.MethodPost, URL: ts.URL + "/b", Payload: map[string]string{"k": "v"}},
	}

	handles, err := th.SubmitMany(ctx, specs)
	if err != nil {
		t.Fatal(err)
	}

	if err := th.Shutdown(true); err != nil {
		t.Fatal(err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := th.WaitForEnd(waitCtx); err != nil {
		t.Fatalf("waiting for end: %v", err)
	}

	resp, ok, err := handles[0].Response(0)
	if !ok || err != nil {
		t.Fatalf("exp finished success, got ok=%v err=%v", ok, err)
	}
	var body struct{ Path string }
	if err := resp.Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Path != "/a" {
		t.Errorf("exp path /a; got %s", body.Path)
	}

	failure, ok := handles[1].Failure(0)
	var statusErr *client.UnexpectedStatusError
	if !ok || !errors.As(failure, &statusErr) {
		t.Errorf("exp UnexpectedStatusError; got ok=%v failure=%v", ok, failure)
	}
	var sendErr *throttler.SendError
	if !errors.As(failure, &sendErr) {
		t.Errorf("exp SendError wrapper; got %v", failure)
	}

	failure, _ = handles[2].Failure(0)
	var prepErr *throttler.PrepareError
	if !errors.As(failure, &prepErr) {
		t.Errorf("exp PrepareError; got %v", failure)
	}
	var fieldErrs client.FieldErrors
	if !errors.As(failure, &fieldErrs) {
		t.Errorf("exp FieldErrors inside PrepareError; got %v", failure)
	}

	if _, err := handles[3].Wait(ctx); err != nil {
		t.Errorf("exp POST to succeed; got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if diff := cmp.Diff([]string{"/a", "/missing", "/b"}, paths); diff != "" {
		t.Errorf("server saw unexpected paths (-want +got):\n%s", diff)
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay-5*time.Millisecond {
			t.Errorf("requests %d and %d only %v apart; exp >= %v", i-1, i, gap, delay)
		}
	}

	if th.Successes() != 2 || th.Failures() != 2 {
		t.Errorf("exp 2 successes and 2 failures; got %d and %d", th.Successes(), th.Failures())
	}
}
