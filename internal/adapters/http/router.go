package http

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/application"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

// NewRouter wires the public onboarding surface, the PDF surface and
// the network-guarded admin surface onto one chi router.
func NewRouter(service *application.Service, adminNets []*net.IPNet, tokens ports.StaffTokenIssuer) http.Handler {
	handler := NewHandler(service)

	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(recoverMiddleware)
	router.Use(loggingMiddleware)

	router.Get("/healthz", handler.healthz)
	router.Get("/readyz", handler.readyz)

	router.Route("/api", func(api chi.Router) {
		api.Post("/otp/send", handler.otpSend)
		api.Post("/otp/verify", handler.otpVerify)
		api.Post("/challenge/verify", handler.challengeVerify)
		api.Post("/onboard/upload", handler.upload)
		api.Post("/progress/{linkID}", handler.saveProgress)
		api.Get("/session/{linkID}", handler.getSession)
		api.Post("/debit/save", handler.debitSave)
		api.Post("/debit/sign", handler.sign(domain.AgreementDebit))
		api.Post("/sign", handler.sign(domain.AgreementMSA))

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(adminNetworkMiddleware(adminNets, tokens))
			admin.Post("/genlink", handler.adminGenLink)
			admin.Post("/approve", handler.adminApprove)
			admin.Post("/reject", handler.adminReject)
			admin.Post("/delete", handler.adminDelete)
			admin.Get("/list", handler.adminList)
			admin.Get("/candidates/{linkID}", handler.adminCandidates)
			admin.Post("/reconcile", handler.adminReconcile)
		})
	})

	router.Get("/pdf/msa/{linkID}", handler.pdf(domain.AgreementMSA))
	router.Get("/pdf/debit/{linkID}", handler.pdf(domain.AgreementDebit))

	return router
}
