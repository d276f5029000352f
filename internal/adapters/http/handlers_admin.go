package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/contracts"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

func toCandidateProfile(profile ports.Profile) contracts.CandidateProfile {
	return contracts.CandidateProfile{
		ID:     profile.ID,
		Kind:   profile.Kind,
		Name:   profile.Name,
		Email:  profile.Email,
		Phone:  profile.Phone,
		Street: profile.Street,
		City:   profile.City,
		Zip:    profile.Zip,
	}
}

func (h *Handler) adminGenLink(w http.ResponseWriter, r *http.Request) {
	var req contracts.GenLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	session, err := h.service.GenerateLink(r.Context(), strings.TrimSpace(req.ID), clientIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.GenLinkResponse{
		OK:         true,
		LinkID:     session.LinkID,
		ExternalID: session.ExternalID,
		Status:     session.Status,
	})
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context(), r.URL.Query().Get("mode"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.ListResponse{OK: true, Sessions: sessions})
}

func (h *Handler) adminApprove(w http.ResponseWriter, r *http.Request) {
	var req contracts.AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	result, err := h.service.Approve(r.Context(), req.LinkID, clientIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.ApproveResponse{
		OK:       true,
		Status:   result.Session.Status,
		Attempts: result.Attempts,
	})
}

func (h *Handler) adminReject(w http.ResponseWriter, r *http.Request) {
	var req contracts.AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	session, err := h.service.Reject(r.Context(), req.LinkID, req.Reason, clientIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.StatusResponse{OK: true, Status: session.Status})
}

func (h *Handler) adminDelete(w http.ResponseWriter, r *http.Request) {
	var req contracts.AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	if err := h.service.Delete(r.Context(), req.LinkID, clientIP(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.StatusResponse{OK: true, Status: "deleted"})
}

func (h *Handler) adminCandidates(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.Candidates(r.Context(), chi.URLParam(r, "linkID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := contracts.CandidatesResponse{OK: true, Matches: []contracts.CandidateProfile{}}
	for _, match := range set.Matches {
		resp.Matches = append(resp.Matches, toCandidateProfile(match))
	}
	if set.Reuse != nil {
		reuse := toCandidateProfile(*set.Reuse)
		resp.Reuse = &reuse
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) adminReconcile(w http.ResponseWriter, r *http.Request) {
	var req contracts.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	result, err := h.service.Reconcile(r.Context(), req.LinkID, req.Mode, req.TargetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.ReconcileResponse{
		OK:       result.OK,
		ID:       result.ID,
		Link:     result.Link,
		Attempts: result.Attempts,
	})
}
