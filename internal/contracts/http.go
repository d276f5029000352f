// Package contracts defines the request and response bodies of the
// HTTP surface. Error responses always carry the {ok:false, error,
// detail?} shape so the UI and operators can act on upstream failures.
package contracts

import (
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type OTPSendRequest struct {
	LinkID  string `json:"link_id"`
	Purpose string `json:"purpose,omitempty"`
}

type OTPVerifyRequest struct {
	LinkID  string `json:"link_id"`
	Purpose string `json:"purpose,omitempty"`
	Code    string `json:"code"`
}

type OTPVerifyResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
}

type ChallengeVerifyRequest struct {
	LinkID string `json:"link_id"`
	Token  string `json:"token"`
}

type ChallengeVerifyResponse struct {
	OK      bool `json:"ok"`
	Secured bool `json:"secured"`
}

type ProgressRequest struct {
	Edits   map[string]string `json:"edits"`
	Version int64             `json:"version,omitempty"`
}

type SessionResponse struct {
	OK      bool           `json:"ok"`
	Session domain.Session `json:"session"`
}

type DebitSaveRequest struct {
	LinkID        string `json:"link_id"`
	AccountHolder string `json:"account_holder"`
	IDNumber      string `json:"id_number"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	DebitDay      string `json:"debit_day"`
	Version       int64  `json:"version,omitempty"`
}

type SignRequest struct {
	LinkID    string `json:"link_id"`
	Signature string `json:"signature"`
}

type UploadResponse struct {
	OK    bool               `json:"ok"`
	Entry domain.UploadEntry `json:"entry"`
}

type GenLinkRequest struct {
	ID string `json:"id"`
}

type GenLinkResponse struct {
	OK         bool   `json:"ok"`
	LinkID     string `json:"link_id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

type AdminActionRequest struct {
	LinkID string `json:"link_id"`
	Reason string `json:"reason,omitempty"`
}

type ApproveResponse struct {
	OK       bool                 `json:"ok"`
	Status   string               `json:"status"`
	Attempts []domain.PushAttempt `json:"push_attempts"`
}

type ListResponse struct {
	OK       bool             `json:"ok"`
	Sessions []domain.Session `json:"sessions"`
}

type CandidateProfile struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

type CandidatesResponse struct {
	OK      bool               `json:"ok"`
	Matches []CandidateProfile `json:"matches"`
	Reuse   *CandidateProfile  `json:"reuse,omitempty"`
}

type ReconcileRequest struct {
	LinkID   string `json:"link_id"`
	Mode     string `json:"mode"`
	TargetID string `json:"target_id,omitempty"`
}

type ReconcileResponse struct {
	OK       bool                 `json:"ok"`
	ID       string               `json:"id,omitempty"`
	Link     string               `json:"link,omitempty"`
	Attempts []domain.PushAttempt `json:"attempts"`
}

type StatusResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
}
