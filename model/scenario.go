package model

// Scenario names a venue-density population profile. The concrete size
// bands, traffic rates, and chaos levels are fixed policy owned by the
// scenario builder, not user-configurable knobs.
type Scenario string

const (
	// ScenarioCoffeeShop is a small room of 5-15 peers.
	ScenarioCoffeeShop Scenario = "coffee_shop"
	// ScenarioConference is a dense venue of more than 30 peers.
	ScenarioConference Scenario = "conference"
	// ScenarioHackathon is a mid-size crowd of more than 10 peers.
	ScenarioHackathon Scenario = "hackathon"
)

// Scenarios lists every defined scenario, in a stable order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioCoffeeShop, ScenarioConference, ScenarioHackathon}
}

// Valid reports whether s names a defined scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioCoffeeShop, ScenarioConference, ScenarioHackathon:
		return true
	}
	return false
}
