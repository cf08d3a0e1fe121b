package reqthrottle_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/reqthrottle"
	"github.com/adamwoolhether/reqthrottle/client"
	"github.com/adamwoolhether/reqthrottle/throttler"
)

func ExampleNewHTTP() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"msg":"hello %s"}`, r.URL.Query().Get("name"))
	}))
	defer ts.Close()

	c, err := reqthrottle.NewClient(client.WithTimeout(5 * time.Second))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	t, err := reqthrottle.NewHTTP("example", c, throttler.WithRequestsOverTime(100, time.Second))
	if err != nil {
		fmt.Println("throttler error:", err)
		return
	}

	ctx := context.Background()
	err = t.Run(ctx, func(ctx context.Context) error {
		for _, name := range []string{"gopher", "gordon"} {
			h, err := t.Submit(ctx, client.Spec{
				Method:  http.MethodGet,
				URL:     ts.URL + "/greet?name=" + name,
				ExpCode: http.StatusOK,
			})
			if err != nil {
				return err
			}

			resp, err := h.Wait(ctx)
			if err != nil {
				return err
			}

			var body struct{ Msg string }
			if err := resp.Decode(&body); err != nil {
				return err
			}
			fmt.Println(body.Msg)
		}
		return nil
	})
	if err != nil {
		fmt.Println("run error:", err)
		return
	}

	if err := t.WaitForEnd(ctx); err != nil {
		fmt.Println("wait error:", err)
		return
	}

	fmt.Printf("Success: %d, Failures: %d\n", t.Successes(), t.Failures())
	// Output:
	// hello gopher
	// hello gordon
	// Success: 2, Failures: 0
}
