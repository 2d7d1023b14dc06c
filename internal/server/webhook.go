package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/observability"
)

// githubPushEvent is the subset of a GitHub push payload we act on.
type githubPushEvent struct {
	Ref        string `json:"ref"`
	Repository struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		CloneURL string `json:"clone_url"`
	} `json:"repository"`
}

const maxWebhookBody = 1 << 20 // 1MB

// handleGitHubWebhook receives push events and triggers a refresh for the
// project matching the pushed repository. The signature is validated against
// the project's secret before the payload is trusted.
func (s *Server) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, dserr.ValidationError("failed to read webhook body"))
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	switch event {
	case "push", "create", "delete":
	default:
		// Ping and everything else is acknowledged without action.
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ignored", "event": event})
		return
	}

	var push githubPushEvent
	if err := json.Unmarshal(body, &push); err != nil {
		s.errorAdapter.WriteErrorResponse(w, dserr.ValidationError("malformed webhook payload"))
		return
	}

	project, ok := s.matchProject(push.Repository.CloneURL, push.Repository.Name)
	if !ok {
		s.errorAdapter.WriteErrorResponse(w, dserr.NotFoundError(
			"no project configured for repository "+push.Repository.FullName))
		return
	}

	secret := s.webhookSecret(project)
	if !validateSignature(body, r.Header.Get("X-Hub-Signature-256"), secret) {
		s.errorAdapter.WriteErrorResponse(w, dserr.New(
			dserr.CategoryAuth, dserr.SeverityWarning, "webhook signature validation failed"))
		return
	}

	// Branch or tag create/delete changes the version list, not content.
	if event == "create" || event == "delete" {
		ctx := observability.WithProject(r.Context(), project)
		if err := s.service.InvalidateVersionList(ctx, project); err != nil {
			s.errorAdapter.WriteErrorResponse(w, err)
			return
		}
		list, err := s.service.GetVersions(ctx, project)
		if err != nil {
			s.errorAdapter.WriteErrorResponse(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":   "versions-synced",
			"project":  project,
			"branches": len(list.Branches),
			"tags":     len(list.Tags),
		})
		return
	}

	version := strings.TrimPrefix(push.Ref, "refs/heads/")
	version = strings.TrimPrefix(version, "refs/tags/")

	ctx := observability.WithProject(r.Context(), project)
	observability.InfoContext(ctx, "Webhook push received",
		logfields.Version(version),
		logfields.Path(push.Repository.FullName))

	result, err := s.service.RefreshProject(ctx, project, version)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "refreshed",
		"project":   project,
		"version":   result.Version,
		"refreshId": result.RefreshID,
		"docsCount": result.DocsCount,
	})
}

// matchProject maps a pushed repository to a configured project, by clone URL
// first and repository name second.
func (s *Server) matchProject(cloneURL, repoName string) (string, bool) {
	for _, p := range s.cfg.Projects {
		if p.Source.URL != "" && sameRepoURL(p.Source.URL, cloneURL) {
			return p.Slug, true
		}
	}
	for _, p := range s.cfg.Projects {
		if p.Slug == repoName {
			return p.Slug, true
		}
	}
	return "", false
}

func (s *Server) webhookSecret(project string) string {
	for _, p := range s.cfg.Projects {
		if p.Slug == project {
			return p.WebhookSecret
		}
	}
	return s.cfg.Server.WebhookSecret
}

// sameRepoURL compares repository URLs ignoring the .git suffix and scheme
// case differences forges produce.
func sameRepoURL(a, b string) bool {
	norm := func(u string) string {
		u = strings.TrimSuffix(strings.TrimSpace(u), "/")
		u = strings.TrimSuffix(u, ".git")
		return strings.ToLower(u)
	}
	return norm(a) != "" && norm(a) == norm(b)
}

// validateSignature checks the sha256 HMAC GitHub sends with each delivery.
// An empty secret rejects everything; unsigned webhooks are never trusted.
func validateSignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	expected := signature[len("sha256="):]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	calc := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(calc))
}
