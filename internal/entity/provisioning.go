package entity

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
)

// ProvisioningPhase is a step of the account/wallet provisioning workflow.
type ProvisioningPhase int

const (
	PhaseIdle ProvisioningPhase = iota
	PhaseWalletCreating
	PhaseWalletCreated
	PhaseNodeCreating
	PhaseAwaitingNodeConfirmation
	PhaseNodeInfoFetching
	PhaseNodeDataSubmitting
	PhaseAwaitingDataConfirmation
	PhaseComplete
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseIdle:                     "Idle",
	PhaseWalletCreating:           "WalletCreating",
	PhaseWalletCreated:            "WalletCreated",
	PhaseNodeCreating:             "NodeCreating",
	PhaseAwaitingNodeConfirmation: "AwaitingNodeConfirmation",
	PhaseNodeInfoFetching:         "NodeInfoFetching",
	PhaseNodeDataSubmitting:       "NodeDataSubmitting",
	PhaseAwaitingDataConfirmation: "AwaitingDataConfirmation",
	PhaseComplete:                 "Complete",
	PhaseFailed:                   "Failed",
}

func (p ProvisioningPhase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

func (p ProvisioningPhase) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(phaseNames) {
		return nil, errors.Wrapf(errs.InvalidArgument, "unknown provisioning phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *ProvisioningPhase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = ProvisioningPhase(i)
			return nil
		}
	}
	return errors.Wrapf(errs.InvalidArgument, "unknown provisioning phase %q", string(text))
}

// Terminal reports whether the workflow stops at this phase.
func (p ProvisioningPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}
