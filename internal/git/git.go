// Package git checks that a results repository accepts pushes before a
// long benchmark run starts. It works entirely in-process through go-git
// against a throw-away local repository.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

const (
	// ProbeRemote is the remote name used for the probe.
	ProbeRemote = "push_test"
	// ProbeBranch is the remote branch the probe writes and deletes.
	ProbeBranch = "poretally_push_test"
	probeFile   = "push_test.txt"
)

// DefaultPushTimeout bounds a whole probe.
const DefaultPushTimeout = 60 * time.Second

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// PushAccessError reports a repository that refused the probe.
type PushAccessError struct {
	URL  string
	Step string
	Err  error
}

// Error implements the error interface.
func (e *PushAccessError) Error() string {
	return fmt.Sprintf("no write access to %s (%s): %v", e.URL, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *PushAccessError) Unwrap() error {
	return e.Err
}

// PushProbe verifies write access to a repository by pushing a marker
// commit to ProbeBranch, pushing its removal, then deleting the branch.
type PushProbe struct {
	// TempDir is where the scratch repository is created. Empty uses the
	// system temp directory.
	TempDir string
	// Timeout bounds the probe. Zero uses DefaultPushTimeout.
	Timeout time.Duration
}

// CheckPushAccess runs a PushProbe with default settings.
func CheckPushAccess(ctx context.Context, url string) error {
	return (&PushProbe{}).Check(ctx, url)
}

// Check probes url. The scratch repository is always removed.
func (p *PushProbe) Check(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("repository url is empty")
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPushTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := os.MkdirTemp(p.TempDir, "poretally_repo_test")
	if err != nil {
		return fmt.Errorf("creating scratch repository: %w", err)
	}
	defer os.RemoveAll(dir)

	logDebug("[git] probing push access to %s from %s", url, dir)

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return fmt.Errorf("initializing scratch repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	marker := filepath.Join(dir, probeFile)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return fmt.Errorf("writing marker file: %w", err)
	}
	if _, err := wt.Add(probeFile); err != nil {
		return fmt.Errorf("staging marker file: %w", err)
	}
	if err := commit(wt, "test write access"); err != nil {
		return err
	}

	if _, err := SetRemote(repo, ProbeRemote, url); err != nil {
		return err
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}
	target := plumbing.NewBranchReferenceName(ProbeBranch)
	pushSpec := config.RefSpec("+" + head.Name().String() + ":" + target.String())

	if err := push(ctx, repo, url, pushSpec); err != nil {
		return &PushAccessError{URL: url, Step: "push marker", Err: err}
	}

	if _, err := wt.Remove(probeFile); err != nil {
		return fmt.Errorf("removing marker file: %w", err)
	}
	if err := commit(wt, "remove access test file"); err != nil {
		return err
	}
	if err := push(ctx, repo, url, pushSpec); err != nil {
		return &PushAccessError{URL: url, Step: "push removal", Err: err}
	}

	if err := push(ctx, repo, url, config.RefSpec(":"+target.String())); err != nil {
		return &PushAccessError{URL: url, Step: "delete probe branch", Err: err}
	}

	logDebug("[git] push access to %s confirmed", url)
	return nil
}

// SetRemote points the remote called name at url, creating it if needed.
func SetRemote(repo *git.Repository, name, url string) (*git.Remote, error) {
	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("reading repository config: %w", err)
	}

	if existing, ok := cfg.Remotes[name]; ok {
		existing.URLs = []string{url}
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("updating remote %s: %w", name, err)
		}
		return repo.Remote(name)
	}

	remote, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("creating remote %s: %w", name, err)
	}
	return remote, nil
}

func commit(wt *git.Worktree, msg string) error {
	_, err := wt.Commit(msg, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "poretally",
			Email: "poretally@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing %q: %w", msg, err)
	}
	return nil
}

func push(ctx context.Context, repo *git.Repository, url string, spec config.RefSpec) error {
	logDebug("[git] pushing %s to %s", spec, url)
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: ProbeRemote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       getAuthForURL(url),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// getAuthForURL returns the authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		if !isSSHAgentAvailable() {
			return nil
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		if username != "" {
			password = "" // GitHub token can be used as username with empty password
		}
	}
	if username != "" {
		return &http.BasicAuth{Username: username, Password: password}
	}
	return nil
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// URLs.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
