// Package origin derives the upstream preview origin from the git
// checkout containing the content root.
//
// A checkout of github.com/owner/site on branch main maps to
// https://main--site--owner.<preview domain>, so a freshly cloned project
// works without any proxy configuration.
package origin

import (
	"fmt"
	"log/slog"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Detect derives the preview origin URL for the repository containing
// root. It walks up from root looking for a .git directory, reads the
// "origin" remote and the checked out branch, and combines them with the
// preview domain.
func Detect(root, previewDomain string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("no git repository at or above %s: %w", root, err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("no origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL")
	}

	owner, name, err := parseRemote(urls[0])
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	branch := head.Name().Short()

	url := fmt.Sprintf("https://%s--%s--%s.%s", branch, name, owner, previewDomain)

	slog.Default().With("component", "origin").Info("detected upstream origin from git checkout",
		"remote", urls[0],
		"branch", branch,
		"origin", url)

	return url, nil
}

// parseRemote extracts the owner and repository name from a git remote
// URL. It accepts the common https, ssh, and scp-like forms:
//
//	https://github.com/owner/repo.git
//	ssh://git@github.com/owner/repo.git
//	git@github.com:owner/repo.git
func parseRemote(remote string) (owner, name string, err error) {
	s := remote

	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "ssh://"):
		// Drop scheme and host.
		s = s[strings.Index(s, "://")+3:]
		slash := strings.Index(s, "/")
		if slash < 0 {
			return "", "", fmt.Errorf("cannot parse remote URL %q", remote)
		}
		s = s[slash+1:]
	case strings.Contains(s, "@") && strings.Contains(s, ":"):
		// scp-like: git@host:owner/repo.git
		s = s[strings.Index(s, ":")+1:]
	default:
		return "", "", fmt.Errorf("cannot parse remote URL %q", remote)
	}

	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[len(parts)-2] == "" {
		return "", "", fmt.Errorf("cannot parse remote URL %q", remote)
	}

	return parts[len(parts)-2], parts[len(parts)-1], nil
}
