package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/application"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/contracts"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

func passcodePurpose(raw string) ports.PasscodePurpose {
	if raw == string(ports.PasscodeStaff) {
		return ports.PasscodeStaff
	}
	return ports.PasscodeCustomer
}

func clientMeta(r *http.Request) application.ClientMeta {
	return application.ClientMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		ApproxGeo: r.Header.Get("CF-IPCountry"),
	}
}

func (h *Handler) otpSend(w http.ResponseWriter, r *http.Request) {
	var req contracts.OTPSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	if err := h.service.SendPasscode(r.Context(), req.LinkID, passcodePurpose(req.Purpose)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.StatusResponse{OK: true, Status: "sent"})
}

func (h *Handler) otpVerify(w http.ResponseWriter, r *http.Request) {
	var req contracts.OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	token, err := h.service.VerifyPasscode(r.Context(), req.LinkID, passcodePurpose(req.Purpose), req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.OTPVerifyResponse{OK: true, Token: token})
}

func (h *Handler) challengeVerify(w http.ResponseWriter, r *http.Request) {
	var req contracts.ChallengeVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	secured, err := h.service.VerifyChallenge(r.Context(), req.LinkID, req.Token, clientIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.ChallengeVerifyResponse{OK: true, Secured: secured})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "linkID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.SessionResponse{OK: true, Session: session})
}

func (h *Handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	var req contracts.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	session, err := h.service.SaveProgress(r.Context(), chi.URLParam(r, "linkID"), application.SaveProgressInput{
		Edits:   req.Edits,
		Version: req.Version,
		Meta:    clientMeta(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.SessionResponse{OK: true, Session: session})
}

// upload accepts multipart form data: link_id, label and the file part.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body", "")
		return
	}
	linkID := strings.TrimSpace(r.FormValue("link_id"))
	label := r.FormValue("label")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part required", "")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file part", "")
		return
	}
	entry, err := h.service.Upload(r.Context(), linkID, header.Filename, label, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.UploadResponse{OK: true, Entry: entry})
}

func (h *Handler) debitSave(w http.ResponseWriter, r *http.Request) {
	var req contracts.DebitSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	session, err := h.service.SaveDebit(r.Context(), req.LinkID, application.DebitInput{
		AccountHolder: req.AccountHolder,
		IDNumber:      req.IDNumber,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountType:   req.AccountType,
		DebitDay:      req.DebitDay,
		Version:       req.Version,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts.SessionResponse{OK: true, Session: session})
}

func (h *Handler) sign(agreement string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contracts.SignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body", "")
			return
		}
		session, err := h.service.SignAgreement(r.Context(), req.LinkID, agreement, req.Signature)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, contracts.SessionResponse{OK: true, Session: session})
	}
}

func (h *Handler) pdf(agreement string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linkID := chi.URLParam(r, "linkID")
		data, err := h.service.RenderAgreement(r.Context(), linkID, agreement)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+agreement+"_"+linkID+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
