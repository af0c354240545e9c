package state

// validTransitions contains the permitted non-emergency transitions in the FSM.
// The market listing flow is linear with backtracking one step at a time.
var validTransitions = map[State][]State{
	StateIdle: {
		StateMarketSelectItem,
	},
	StateMarketSelectItem: {
		StateMarketSetPrice,
		StateIdle,
	},
	StateMarketSetPrice: {
		StateMarketConfirm,
		StateMarketSelectItem,
	},
	StateMarketConfirm: {
		StateIdle,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Error and Idle are always reachable so that /cancel and failures can recover.
func IsTransitionAllowed(from, to State) bool {
	if to == StateError || to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
