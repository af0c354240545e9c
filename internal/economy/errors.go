package economy

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of expected, user-facing engine failures.
// None of them indicate a broken process; callers branch on the kind to pick
// a user message and leave the account untouched.
type Kind string

const (
	// KindInsufficientResource means energy, electricity, or another pool is too low.
	KindInsufficientResource Kind = "insufficient_resource"
	// KindInsufficientCurrency means the account cannot afford the purchase.
	KindInsufficientCurrency Kind = "insufficient_currency"
	// KindTooSoon means the minimum mining claim interval has not elapsed.
	KindTooSoon Kind = "too_soon"
	// KindNoActiveMiners means no active MINER stacks contribute any yield.
	KindNoActiveMiners Kind = "no_active_miners"
	// KindNoElectricity means the electricity pool cannot fund any mining time.
	KindNoElectricity Kind = "no_electricity"
	// KindAlreadyClaimed means the daily reward was claimed within the last 24h.
	KindAlreadyClaimed Kind = "already_claimed"
)

// Error is an expected engine failure carrying its kind and a display message.
type Error struct {
	Kind    Kind
	Message string

	// HoursLeft is set for KindAlreadyClaimed: whole hours until the next claim.
	HoursLeft int
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// KindOf extracts the engine error kind, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var engErr *Error
	if errors.As(err, &engErr) && engErr != nil {
		return engErr.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func errInsufficientResource(resource string) *Error {
	return &Error{
		Kind:    KindInsufficientResource,
		Message: fmt.Sprintf("not enough %s", resource),
	}
}

func errInsufficientCurrency(currency string) *Error {
	return &Error{
		Kind:    KindInsufficientCurrency,
		Message: fmt.Sprintf("not enough %s", currency),
	}
}

// ErrCannotAfford builds a currency rejection for callers that gate
// purchases outside the engine, such as the shop and the market.
func ErrCannotAfford(currency string) *Error {
	return errInsufficientCurrency(currency)
}

func errTooSoon() *Error {
	return &Error{Kind: KindTooSoon, Message: "mining claim interval has not elapsed"}
}

func errNoActiveMiners() *Error {
	return &Error{Kind: KindNoActiveMiners, Message: "no active miners"}
}

func errNoElectricity() *Error {
	return &Error{Kind: KindNoElectricity, Message: "not enough electricity to mine"}
}

func errAlreadyClaimed(hoursLeft int) *Error {
	return &Error{
		Kind:      KindAlreadyClaimed,
		Message:   fmt.Sprintf("daily reward already claimed, come back in %d hours", hoursLeft),
		HoursLeft: hoursLeft,
	}
}
