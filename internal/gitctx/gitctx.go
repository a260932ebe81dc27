// Package gitctx discovers the git context of the project under check.
package gitctx

import (
	git "github.com/go-git/go-git/v5"
)

// Context captures the git facts a policy run cares about.
type Context struct {
	Root      string `json:"root"`
	Branch    string `json:"branch,omitempty"`
	RemoteURL string `json:"remote_url,omitempty"`
}

// Discover resolves the enclosing git worktree for the given path. Returns
// nil when the path is not inside a git repository; checks then run against
// the path as given.
func Discover(path string) *Context {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}
	ctx := &Context{Root: wt.Filesystem.Root()}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		ctx.Branch = head.Name().Short()
	}
	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			ctx.RemoteURL = urls[0]
		}
	}
	return ctx
}
