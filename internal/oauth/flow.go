package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/xhttp"
	"golang.org/x/oauth2"
)

const (
	callbackPath = "/callback"
	shutdownTime = 5 * time.Second
)

// Authorization is the outcome of a completed browser flow.
type Authorization struct {
	AthleteID int64
	Token     *oauth2.Token
}

type tokenResult struct {
	token *oauth2.Token
	err   error
}

type callbackHandler func(w http.ResponseWriter, r *http.Request) (*oauth2.Token, error)

// DirectFlow runs the authorization code flow against Strava from the
// terminal, receiving the redirect on a loopback listener.
type DirectFlow struct {
	config   *oauth2.Config
	athletes repository.AthleteRepository
	state    string
	out      io.Writer
	browser  func(url string) error
}

func NewDirectFlow(config *oauth2.Config, athletes repository.AthleteRepository, out io.Writer) (*DirectFlow, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	return &DirectFlow{
		config:   config,
		athletes: athletes,
		state:    state,
		out:      out,
		browser:  openBrowser,
	}, nil
}

func (f *DirectFlow) Run(ctx context.Context) (*Authorization, error) {
	resultCh := make(chan tokenResult, 1)

	server, port, err := startCallbackServer(f.callbackHandler(), resultCh)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	// The registered redirect must point at the loopback listener.
	cfg := *f.config
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%s%s", port, callbackPath)
	f.config = &cfg

	url := cfg.AuthCodeURL(f.state, oauth2.SetAuthURLParam("approval_prompt", "auto"))

	_, _ = fmt.Fprintf(f.out, "Opening browser for authorization...\n")
	_, _ = fmt.Fprintf(f.out, "If the browser doesn't open, visit:\n%s\n\n", url)

	if err := f.browser(url); err != nil {
		_, _ = fmt.Fprintf(f.out, "Failed to open browser: %v\n", err)
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTime)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_, _ = fmt.Fprintf(f.out, "Warning: failed to shutdown server: %v\n", err)
		}
	}

	select {
	case result := <-resultCh:
		shutdown()

		if result.err != nil {
			return nil, result.err
		}

		id, err := SaveAuthorization(ctx, f.athletes, result.token)
		if err != nil {
			return nil, fmt.Errorf("failed to save authorization: %w", err)
		}

		return &Authorization{AthleteID: id, Token: result.token}, nil

	case <-ctx.Done():
		shutdown()
		return nil, ctx.Err()
	}
}

func (f *DirectFlow) callbackHandler() callbackHandler {
	return func(w http.ResponseWriter, r *http.Request) (*oauth2.Token, error) {
		q := r.URL.Query()
		if !ValidateState(f.state, q.Get(ParamState)) {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return nil, errors.New("invalid state parameter")
		}

		if errParam := q.Get(ParamError); errParam != "" {
			http.Error(w, fmt.Sprintf("OAuth error: %s", errParam), http.StatusBadRequest)
			return nil, fmt.Errorf("oauth error: %s", errParam)
		}

		code := q.Get(ParamCode)
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return nil, errors.New("missing authorization code")
		}

		token, err := f.config.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "Failed to exchange authorization code", http.StatusInternalServerError)
			return nil, fmt.Errorf("failed to exchange code: %w", err)
		}

		return token, nil
	}
}

func startCallbackServer(handler callbackHandler, resultCh chan<- tokenResult) (*http.Server, string, error) {
	mux := http.NewServeMux()

	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		token, err := handler(w, r)
		if err != nil {
			send(resultCh, tokenResult{err: err})
			return
		}
		WriteSuccessHTML(w)
		send(resultCh, tokenResult{token: token})
	})

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", "0"))
	if err != nil {
		return nil, "", fmt.Errorf("failed to start listener: %w", err)
	}

	_, port, _ := net.SplitHostPort(listener.Addr().String())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			send(resultCh, tokenResult{err: fmt.Errorf("server error: %w", err)})
		}
	}()

	return server, port, nil
}

// send drops results once one is already pending, so a repeated browser
// request cannot block the handler.
func send(ch chan<- tokenResult, r tokenResult) {
	select {
	case ch <- r:
	default:
	}
}

// WriteSuccessHTML renders the page shown after Strava redirects back.
func WriteSuccessHTML(w http.ResponseWriter) {
	xhttp.SetHeaderContentTypeTextHTML(w)
	_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body>
<h1>Authorization Successful</h1>
<p>Your Strava account is connected. You can close this window.</p>
</body>
</html>`)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
