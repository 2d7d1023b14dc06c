package server

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/nav"
	"git.home.luguber.info/inful/docserve/internal/observability"
)

type projectSummary struct {
	Slug           string `json:"slug"`
	DefaultVersion string `json:"defaultVersion,omitempty"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.service.Projects()
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{Slug: p.Slug, DefaultVersion: p.DefaultVersion})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	if _, ok := s.service.Lookup(project); !ok {
		s.errorAdapter.WriteErrorResponse(w, dserr.NotFoundError("unknown project: "+project))
		return
	}
	list, err := s.service.GetVersions(r.Context(), project)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	version := r.PathValue("version")
	slug := r.PathValue("slug")
	ctx := observability.WithProject(r.Context(), project)

	doc, err := s.service.GetDocument(ctx, project, version, slug)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

type navResponse struct {
	Nav        []docmodel.NavItem `json:"nav"`
	DefaultDoc string             `json:"defaultDoc,omitempty"`
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	version := r.PathValue("version")

	tree, err := s.service.GetNavigation(r.Context(), project, version)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, navResponse{
		Nav:        tree,
		DefaultDoc: nav.FindDefaultDoc(tree),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	version := r.PathValue("version")

	snap, err := s.service.GetProjectSnapshot(r.Context(), project, version)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type refreshResponse struct {
	RefreshID   string    `json:"refreshId"`
	Project     string    `json:"project"`
	Version     string    `json:"version"`
	DocsCount   int       `json:"docsCount"`
	Failures    int       `json:"failedFiles"`
	BrokenLinks int       `json:"brokenLinks"`
	DurationMS  int64     `json:"durationMs"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	version := r.PathValue("version")

	result, err := s.service.RefreshProject(r.Context(), project, version)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, refreshResponse{
		RefreshID:   result.RefreshID,
		Project:     result.Project,
		Version:     result.Version,
		DocsCount:   result.DocsCount,
		Failures:    len(result.Failures),
		BrokenLinks: len(result.BrokenLinks),
		DurationMS:  result.Duration.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	version := r.PathValue("version")

	if err := s.service.InvalidateProject(r.Context(), project, version); err != nil {
		s.errorAdapter.WriteErrorResponse(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "invalidated",
		"project": project,
		"version": version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
