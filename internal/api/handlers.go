package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sprite-ai/vouch/internal/classify"
	"github.com/sprite-ai/vouch/internal/jobs"
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/review"
	"github.com/sprite-ai/vouch/internal/tree"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Review ---

type reviewResponse struct {
	Comparison model.Comparison  `json:"comparison"`
	Version    uint64            `json:"version"`
	Counts     review.Counts     `json:"counts"`
	Statuses   map[string]string `json:"statuses"`
	TrustList  []string          `json:"trustList"`
	Notes      string            `json:"notes"`
	Hunks      []model.Hunk      `json:"hunks"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	statuses := make(map[string]string)
	for id, st := range s.session.ResolveAll() {
		statuses[id] = st.String()
	}
	s.writeJSON(w, http.StatusOK, reviewResponse{
		Comparison: s.session.Comparison(),
		Version:    s.session.Version(),
		Counts:     s.session.Counts(),
		Statuses:   statuses,
		TrustList:  s.session.TrustList(),
		Notes:      s.session.Notes(),
		Hunks:      s.session.Hunks(),
	})
}

// --- Tree ---

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	statusByFile := s.session.StatusByFile()
	switch view := r.URL.Query().Get("view"); view {
	case "all":
		s.writeJSON(w, http.StatusOK, tree.Process(s.entries, statusByFile, tree.ViewAll))
	case "changes":
		s.writeJSON(w, http.StatusOK, tree.Process(s.entries, statusByFile, tree.ViewChanges))
	case "", "sections":
		s.writeJSON(w, http.StatusOK, tree.Split(s.entries, statusByFile))
	default:
		s.writeError(w, http.StatusBadRequest, "unknown view: "+view)
	}
}

// --- Staleness ---

type stalenessResponse struct {
	Classification bool   `json:"classificationStale"`
	Guide          string `json:"guide"`
	Narrative      bool   `json:"narrativeStale"`
}

func (s *Server) handleStaleness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stalenessResponse{
		Classification: s.session.ClassificationStale(),
		Guide:          s.session.GuideStaleness().String(),
		Narrative:      s.session.NarrativeStale(),
	})
}

// --- Decisions ---

type decisionRequest struct {
	IDs []string `json:"ids"`
}

type decisionResponse struct {
	Version uint64        `json:"version"`
	Counts  review.Counts `json:"counts"`
}

func (s *Server) decisionHandler(apply func(ids ...string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decisionRequest
		if err := readJSON(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
		if len(req.IDs) == 0 {
			s.writeError(w, http.StatusBadRequest, "ids is required")
			return
		}
		apply(req.IDs...)
		s.changed()
		s.writeJSON(w, http.StatusOK, decisionResponse{
			Version: s.session.Version(),
			Counts:  s.session.Counts(),
		})
	}
}

// --- Trust list ---

type trustListRequest struct {
	Patterns []string `json:"patterns"`
}

func (s *Server) handleTrustList(w http.ResponseWriter, r *http.Request) {
	var req trustListRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	s.session.SetTrustList(req.Patterns)
	s.changed()
	s.writeJSON(w, http.StatusOK, decisionResponse{
		Version: s.session.Version(),
		Counts:  s.session.Counts(),
	})
}

// --- Notes ---

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	s.session.SetNotes(req.Notes)
	s.changed()
	s.writeJSON(w, http.StatusOK, map[string]uint64{"version": s.session.Version()})
}

// --- Classification ---

type classifyResponse struct {
	Started    bool `json:"started"`
	Classified int  `json:"classified,omitempty"`
}

// handleClassify runs the static classifier inline when no external
// classifier is wired; otherwise it launches a single-flight job.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	hunks := s.session.Hunks()

	if s.classifier == nil {
		results := classify.Static(hunks)
		classify.Apply(s.session, results, nil, model.ViaStatic)
		s.changed()
		s.writeJSON(w, http.StatusOK, classifyResponse{Classified: len(results)})
		return
	}

	err := s.runner.Start(context.Background(), jobs.KindClassify,
		func(ctx context.Context) (any, error) {
			results, skipped, err := s.classifier.Classify(ctx, hunks)
			if err != nil {
				return nil, err
			}
			return classificationResult{results: results, skipped: skipped}, nil
		},
		func(result any, err error) {
			if err != nil {
				s.log.Error().Err(err).Msg("classification failed")
				return
			}
			res := result.(classificationResult)
			classify.Apply(s.session, res.results, res.skipped, model.ViaAI)
			s.changed()
		})
	if errors.Is(err, jobs.ErrBusy) {
		s.writeError(w, http.StatusConflict, "classification already running")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, classifyResponse{Started: true})
}

type classificationResult struct {
	results map[string]model.LabelResult
	skipped []string
}

// --- Groups ---

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if s.grouper == nil {
		s.writeError(w, http.StatusNotImplemented, "no grouper configured")
		return
	}

	hunks := s.session.Hunks()
	err := s.runner.Start(context.Background(), jobs.KindGroup,
		func(ctx context.Context) (any, error) {
			groups, summary, err := s.grouper.Group(ctx, hunks)
			if err != nil {
				return nil, err
			}
			return groupResult{groups: groups, summary: summary}, nil
		},
		func(result any, err error) {
			if err != nil {
				s.log.Error().Err(err).Msg("grouping failed")
				return
			}
			res := result.(groupResult)
			s.session.RecordGuide(res.groups, res.summary)
			s.changed()
		})
	if errors.Is(err, jobs.ErrBusy) {
		s.writeError(w, http.StatusConflict, "grouping already running")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, classifyResponse{Started: true})
}

type groupResult struct {
	groups  []model.HunkGroup
	summary string
}
