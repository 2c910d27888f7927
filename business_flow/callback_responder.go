package businessflow

import (
	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/utils"
)

// CallbackOutcome is the status sent back to the provider
type CallbackOutcome string

const (
	CallbackAccept CallbackOutcome = "accept"
	CallbackReject CallbackOutcome = "reject"
)

// CallbackResponder signs acknowledgements of provider callbacks
type CallbackResponder struct {
	signer *Signer
	now    utils.Clock
}

// NewCallbackResponder creates a responder; a nil clock means utils.UTCNow
func NewCallbackResponder(signer *Signer, now utils.Clock) *CallbackResponder {
	if now == nil {
		now = utils.UTCNow
	}
	return &CallbackResponder{signer: signer, now: now}
}

// Build returns the acknowledgement for orderRef, signed over [orderRef, status, time]
func (r *CallbackResponder) Build(orderRef string, outcome CallbackOutcome) *dto.WayForPayCallbackResponse {
	ts := r.now().Unix()
	return &dto.WayForPayCallbackResponse{
		OrderReference: orderRef,
		Status:         string(outcome),
		Time:           ts,
		Signature:      r.signer.Sign(orderRef, string(outcome), ts),
	}
}
