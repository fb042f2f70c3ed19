// Package shakesearch provides a Go client for the shakesearch line search API.
//
//	client, _ := shakesearch.New("http://localhost:3001",
//	    shakesearch.WithTimeout(5*time.Second),
//	)
//	lines, err := client.Search(ctx, "to be or not")
//	if errors.Is(err, shakesearch.ErrSearchTimeout) {
//	    // retry later
//	}
//
// Unlike the search page, the client is strict: non-2xx responses are
// returned as *StatusError and malformed bodies as decode errors.
package shakesearch
