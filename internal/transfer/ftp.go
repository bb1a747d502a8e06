package transfer

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/sirupsen/logrus"
)

// Config carries the supplier's bulk-file drop settings
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	RemoteDir string

	// DialTimeout bounds the control connection, 0 means 30s
	DialTimeout time.Duration

	// MaxRetries bounds download attempts, 0 means 3
	MaxRetries int

	// InitialBackoff is the first retry delay, 0 means 2s; it doubles per
	// attempt capped at 60s
	InitialBackoff time.Duration
}

// conn is the slice of the FTP client surface the fetcher uses. Tests
// substitute a fake; production wraps *ftp.ServerConn.
type conn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	Retr(name string) (io.ReadCloser, error)
	List(path string) ([]string, error)
	Quit() error
}

// Fetcher downloads SDL/EPDD bulk files from a supplier's FTP drop to local
// paths ahead of import. The importers only ever consume local files; this
// is the delivery leg. Transient failures are retried with exponential
// backoff, bounded by MaxRetries.
type Fetcher struct {
	cfg  Config
	dial func(ctx context.Context) (conn, error)
	log  *logrus.Entry
}

// NewFetcher creates an FTP fetcher
func NewFetcher(cfg Config, log *logrus.Entry) *Fetcher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	f := &Fetcher{cfg: cfg, log: log}
	f.dial = f.dialFTP
	return f
}

// Fetch downloads remoteName from the configured drop directory into
// localDir, returning the local path
func (f *Fetcher) Fetch(ctx context.Context, remoteName, localDir string) (string, error) {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("create local dir: %w", err)
	}
	localPath := filepath.Join(localDir, filepath.Base(remoteName))

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries(); attempt++ {
		if attempt > 0 {
			backoff := f.backoff(attempt - 1)
			f.log.WithFields(logrus.Fields{
				"file":    remoteName,
				"attempt": attempt + 1,
				"backoff": backoff.String(),
				"error":   lastErr.Error(),
			}).Warn("ftp fetch retrying")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		if lastErr = f.download(ctx, remoteName, localPath); lastErr == nil {
			return localPath, nil
		}
	}
	return "", fmt.Errorf("fetch %s: retries exhausted: %w", remoteName, lastErr)
}

// List returns the file names in the configured drop directory
func (f *Fetcher) List(ctx context.Context) ([]string, error) {
	c, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Quit()

	if err := c.Login(f.cfg.User, f.cfg.Password); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	return c.List(f.cfg.RemoteDir)
}

func (f *Fetcher) download(ctx context.Context, remoteName, localPath string) error {
	c, err := f.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Quit()

	if err := c.Login(f.cfg.User, f.cfg.Password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}
	if f.cfg.RemoteDir != "" {
		if err := c.ChangeDir(f.cfg.RemoteDir); err != nil {
			return fmt.Errorf("ftp cwd %s: %w", f.cfg.RemoteDir, err)
		}
	}

	r, err := c.Retr(remoteName)
	if err != nil {
		return fmt.Errorf("ftp retr %s: %w", remoteName, err)
	}
	defer r.Close()

	// write to a temp name first so a partial download never looks complete
	tmp := localPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", remoteName, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, localPath)
}

func (f *Fetcher) dialFTP(ctx context.Context) (conn, error) {
	timeout := f.cfg.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	port := f.cfg.Port
	if port == 0 {
		port = 21
	}

	c, err := ftp.Dial(
		fmt.Sprintf("%s:%d", f.cfg.Host, port),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", f.cfg.Host, err)
	}
	return &serverConn{c: c}, nil
}

func (f *Fetcher) maxRetries() int {
	if f.cfg.MaxRetries > 0 {
		return f.cfg.MaxRetries
	}
	return 3
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	initial := f.cfg.InitialBackoff
	if initial == 0 {
		initial = 2 * time.Second
	}
	d := time.Duration(float64(initial) * math.Pow(2, float64(attempt)))
	if d > 60*time.Second {
		d = 60 * time.Second
	}
	return d
}

// serverConn adapts *ftp.ServerConn to the conn interface
type serverConn struct {
	c *ftp.ServerConn
}

func (s *serverConn) Login(user, password string) error { return s.c.Login(user, password) }
func (s *serverConn) ChangeDir(path string) error       { return s.c.ChangeDir(path) }
func (s *serverConn) Quit() error                       { return s.c.Quit() }

func (s *serverConn) Retr(name string) (io.ReadCloser, error) {
	return s.c.Retr(name)
}

func (s *serverConn) List(path string) ([]string, error) {
	entries, err := s.c.List(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == ftp.EntryTypeFile {
			names = append(names, e.Name)
		}
	}
	return names, nil
}
