package provisioning

import (
	"fmt"

	"github.com/gaze-network/pool-portal/internal/entity"
)

// Error reports the phase at which the provisioning workflow failed.
type Error struct {
	Phase entity.ProvisioningPhase

	// AccountCreated tells the caller whether the node already exists, in
	// which case a retry skips node creation.
	AccountCreated bool
	Err            error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ApplicationError identifies the pool whose application stopped the sequence.
// Pools after Index were not submitted.
type ApplicationError struct {
	PoolID string
	Index  int
	Err    error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application to pool %q (#%d) failed: %v", e.PoolID, e.Index, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}
