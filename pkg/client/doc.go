// Package client provides a Go SDK for the admin HTTP control surface.
//
// # Basic usage
//
//	c := client.New("http://localhost:8081", client.WithAPIKey("secret"))
//
//	task, err := c.Enqueue(ctx, "default", client.EnqueueRequest{
//	    Type:    "email:deliver",
//	    Payload: `{"to":"user@example.com"}`,
//	})
//
//	stats, err := c.QueueStats(ctx)
//
// # Live queue depth stream
//
//	watcher, err := c.Watch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer watcher.Close()
//
//	for snap := range watcher.Snapshots() {
//	    fmt.Printf("snapshot at %s\n", snap.Timestamp)
//	}
package client
