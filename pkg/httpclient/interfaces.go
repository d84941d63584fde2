package httpclient

import "context"

// Response is a minimal HTTP response contract. Non-2xx answers are responses, not errors.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts outbound JSON calls so callers can inject fakes or another transport.
type Client interface {
	// Post sends body encoded as JSON.
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
	// Do is Post with an explicit verb, for webhooks configured with PUT or PATCH.
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
