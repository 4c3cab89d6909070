package domain

// Policy bundles the configurable rules the services consult.
type Policy struct {
	Credit        CreditPolicy
	Transitions   TransitionRules
	Authorization AuthorizationPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		Credit:        DefaultCreditPolicy(),
		Transitions:   DefaultTransitionRules(),
		Authorization: DefaultAuthorizationPolicy(),
	}
}
