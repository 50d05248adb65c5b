package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/idconnect/idconnect/pkg/logger"
)

// callbackResult carries the redirect-back query parameters out of the
// loopback HTTP server.
type callbackResult struct {
	params map[string]string
}

// callbackServer is the loopback HTTP server that receives the provider's
// redirect during a CLI login.
type callbackServer struct {
	server  *http.Server
	path    string
	results chan callbackResult
}

// newCallbackServer builds a server listening at the host and path of the
// configured callback URL. The callback URL must point at a loopback
// address for the CLI flow to work.
func newCallbackServer(callbackURL string) (*callbackServer, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("invalid callback URL %q: %w", callbackURL, err)
	}
	if parsed.Scheme != "http" || parsed.Hostname() != "localhost" && parsed.Hostname() != "127.0.0.1" {
		return nil, fmt.Errorf("callback URL %q must be http on a loopback address for CLI login", callbackURL)
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	cs := &callbackServer{
		path:    path,
		results: make(chan callbackResult, 1),
	}

	r := chi.NewRouter()
	r.Get(path, cs.handleCallback)

	cs.server = &http.Server{
		Addr:              parsed.Host,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return cs, nil
}

// start runs the server in the background. Errors other than a clean
// shutdown land on errCh.
func (cs *callbackServer) start(errCh chan<- error) {
	go func() {
		logger.Debugw("starting callback server", "addr", cs.server.Addr, "path", cs.path)
		if err := cs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
}

func (cs *callbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cs.server.Shutdown(ctx); err != nil {
		logger.Warnf("Failed to shut down callback server: %v", err)
	}
}

func (cs *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if errParam := params["error"]; errParam != "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "<html><body><h2>Sign-in failed</h2><p>%s</p>"+
			"<p>You can close this window.</p></body></html>",
			html.EscapeString(errParam))
	} else {
		fmt.Fprint(w, "<html><body><h2>Sign-in complete</h2>"+
			"<p>You can close this window and return to the terminal.</p></body></html>")
	}

	select {
	case cs.results <- callbackResult{params: params}:
	default:
	}
}

// wait blocks until the redirect arrives, the timeout passes, or the
// context is cancelled.
func (cs *callbackServer) wait(ctx context.Context, timeout time.Duration, errCh <-chan error) (map[string]string, error) {
	select {
	case result := <-cs.results:
		return result.params, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out after %s waiting for the provider redirect", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
