package consent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const callbackSuccessHTML = `<!DOCTYPE html>
<html>
<head><title>gauth</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h1>Authorization complete</h1>
<p>You can close this tab and return to the terminal.</p>
</body>
</html>`

const callbackErrorHTML = `<!DOCTYPE html>
<html>
<head><title>gauth</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h1>Authorization failed</h1>
<p>%s</p>
<p>Return to the terminal for details.</p>
</body>
</html>`

// callbackResult carries the query parameters the provider appended to the
// redirect back to the local listener.
type callbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// IsError returns true if the callback represents a provider-side denial.
func (r *callbackResult) IsError() bool {
	return r.Error != ""
}

// callbackServer is a temporary local HTTP server for receiving one OAuth
// authorization callback. It starts, waits for a single redirect, then
// shuts down.
type callbackServer struct {
	server   *http.Server
	listener net.Listener
	resultCh chan *callbackResult
	errorCh  chan error
	once     sync.Once
	baseURL  string
}

func newCallbackServer() *callbackServer {
	return &callbackServer{
		resultCh: make(chan *callbackResult, 1),
		errorCh:  make(chan error, 1),
	}
}

// Start begins listening on a random loopback port and returns the
// redirect URI to use in the authorization request. The server stops when
// the context is cancelled.
func (s *callbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}

	s.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port
	s.baseURL = fmt.Sprintf("http://localhost:%d", port)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.baseURL + "/callback", nil
}

// WaitForCallback blocks until the provider redirects back, the server
// fails, or the context expires.
func (s *callbackServer) WaitForCallback(ctx context.Context) (*callbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback runs exactly once via sync.Once.
func (s *callbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	query := r.URL.Query()
	result := &callbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	if result.IsError() {
		fmt.Fprintf(w, callbackErrorHTML, result.Error)
	} else {
		fmt.Fprint(w, callbackSuccessHTML)
	}

	select {
	case s.resultCh <- result:
	default:
	}

	// Let the response flush before tearing the server down.
	go func() {
		time.Sleep(1 * time.Second)
		s.Stop()
	}()
}

// Stop gracefully shuts down the callback server.
func (s *callbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
