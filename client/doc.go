// Package client provides the HTTP transport that a throttler dispatches
// requests through.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Describing Requests
//
// A [Spec] describes a request declaratively. [Client.Prepare] validates it
// and builds the [http.Request]; [Client.Send] executes it and buffers the
// body into a [Response]:
//
//	prep, err := c.Prepare(ctx, client.Spec{
//		Method:  http.MethodPost,
//		URL:     "https://api.example.com/v1/items",
//		ExpCode: http.StatusCreated,
//		Payload: item,
//	})
//	resp, err := c.Send(ctx, prep)
//	err = resp.Decode(&created)
//
// Together the two methods satisfy [throttler.Transport], so a *Client can
// be handed directly to [throttler.New].
//
// The lower level [Request] helper remains available for callers building
// requests by hand.
package client
