package actions

import (
	"strings"

	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
)

var (
	ErrInvalidEmail = errs.NewPublicError("Email is invalid")
	ErrInvalidName  = errs.NewPublicError("Name is invalid")
)

// ValidEmail requires an '@' after a non-empty local part.
func ValidEmail(email string) bool {
	return strings.Index(email, "@") > 0
}

func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

type PassphraseForm struct {
	Passphrase   string `json:"passphrase"`
	Confirmation string `json:"passphraseConfirmation"`
}

// ValidatePassphrase reports whether both fields are non-empty and equal.
func ValidatePassphrase(form PassphraseForm) bool {
	return form.Passphrase != "" && form.Confirmation != "" && form.Passphrase == form.Confirmation
}

// SetEmailAddressAndName validates both fields independently. Failures are
// recorded per field and never escalate.
func (d *Dispatcher) SetEmailAddressAndName(email, name string) state.State {
	var emailAction, nameAction state.Action
	if ValidEmail(email) {
		emailAction = state.EmailSet{Email: email}
	} else {
		emailAction = state.EmailFailed{Err: ErrInvalidEmail}
	}
	if ValidName(name) {
		nameAction = state.NameSet{Name: name}
	} else {
		nameAction = state.NameFailed{Err: ErrInvalidName}
	}
	return d.store.Dispatch(emailAction, nameAction)
}

func (d *Dispatcher) SetPassphrase(passphrase string) state.State {
	return d.store.Dispatch(state.PassphraseSet{Passphrase: passphrase})
}

func (d *Dispatcher) SetIPAddress(ip string) state.State {
	return d.store.Dispatch(state.IPAddressSet{IP: strings.TrimSpace(ip)})
}

func (d *Dispatcher) SetExpectedUsage(usage entity.ExpectedUsage) state.State {
	return d.store.Dispatch(state.ExpectedUsageSet{Usage: usage})
}

func (d *Dispatcher) SetSignupPoolIDs(poolIDs []string) state.State {
	return d.store.Dispatch(state.SignupPoolsSet{PoolIDs: poolIDs})
}

func (d *Dispatcher) HandleSort(column state.SortColumn) state.State {
	return d.store.Dispatch(state.PoolSortRequested{Column: column})
}

func (d *Dispatcher) SetLocationFilter(locations []string) state.State {
	return d.store.Dispatch(state.LocationFilterSet{Locations: locations})
}

func (d *Dispatcher) SetRatingFilter(minRating float64) state.State {
	return d.store.Dispatch(state.RatingFilterSet{MinRating: minRating})
}

func (d *Dispatcher) SetNodeCountFilter(r state.IntRange) state.State {
	return d.store.Dispatch(state.NodeCountFilterSet{Range: r})
}

func (d *Dispatcher) SetEarningsFilter(r state.DecimalRange) state.State {
	return d.store.Dispatch(state.EarningsFilterSet{Range: r})
}

func (d *Dispatcher) SetTransactionTypeFilter(t entity.TransactionType) state.State {
	return d.store.Dispatch(state.TransactionTypeFilterSet{Type: t})
}

func (d *Dispatcher) AddToast(text string, success bool) state.State {
	return d.store.Dispatch(state.ToastAdded{Text: text, Success: success})
}

func (d *Dispatcher) ResetSession() state.State {
	return d.store.Dispatch(state.SessionReset{})
}
