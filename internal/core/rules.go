package core

import "placementhub/pkg/domain"

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// Every default rule warns; none of them change operation behaviour.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	for _, rule := range defaultRules() {
		engine.Register(rule)
	}
	return engine
}

// NewStrictRulesEngine adds terminal-state protection for applications on
// top of the default policy set.
func NewStrictRulesEngine() *domain.RulesEngine {
	engine := NewDefaultRulesEngine()
	engine.Register(ApplicationTerminalStatusRule())
	return engine
}

func defaultRules() []domain.Rule {
	return []domain.Rule{
		NewApplicantCounterRule(),
		NewLogHoursRangeRule(),
		NewStudentGPARangeRule(),
	}
}
