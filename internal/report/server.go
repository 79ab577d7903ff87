package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"histcheck/internal/logger"
)

// Handler serves the files of a report directory.
func Handler(dir string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	return mux
}

// Serve serves dir on port until ctx is cancelled.
func Serve(ctx context.Context, port int, dir string, lg logger.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler(dir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", port)
	fmt.Printf("\n%s\n", Colorize("🌐 Starting web server on "+url, ColorBlue))
	fmt.Printf("%s\n\n", Colorize("⏹️  Press Ctrl+C to stop the server", ColorYellow))
	lg.Info("serving report", "dir", dir, "addr", srv.Addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "report: serving %s", dir)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
