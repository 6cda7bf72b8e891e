// Package onboarding decides which screen follows a successful login and
// tracks progress through the two setup steps.
package onboarding

import "sync"

// Step is a post-login destination.
type Step string

const (
	// StepCompleteProfile collects phone, age, and study details.
	StepCompleteProfile Step = "complete_profile"
	// StepCompletePreferences collects interest and format choices.
	StepCompletePreferences Step = "complete_preferences"
	// StepMain is the feed; onboarding is finished.
	StepMain Step = "main"
)

// Decide maps the account's completion flags to the next step. The profile
// step always comes before preferences.
func Decide(profileCompleted, preferencesCompleted bool) Step {
	switch {
	case !profileCompleted:
		return StepCompleteProfile
	case !preferencesCompleted:
		return StepCompletePreferences
	default:
		return StepMain
	}
}

// Gate holds onboarding progress for the active session.
type Gate struct {
	mu                   sync.Mutex
	profileCompleted     bool
	preferencesCompleted bool
}

// NewGate returns a Gate seeded from the flags the login response carried.
func NewGate(profileCompleted, preferencesCompleted bool) *Gate {
	return &Gate{
		profileCompleted:     profileCompleted,
		preferencesCompleted: preferencesCompleted,
	}
}

// Current returns the step the user should see now.
func (g *Gate) Current() Step {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Decide(g.profileCompleted, g.preferencesCompleted)
}

// ProfileDone records the profile step as finished.
func (g *Gate) ProfileDone() {
	g.mu.Lock()
	g.profileCompleted = true
	g.mu.Unlock()
}

// ProfileSkipped marks the profile step complete without data. Skipping and
// completing are equivalent; the step never comes back.
func (g *Gate) ProfileSkipped() {
	g.ProfileDone()
}

// PreferencesDone records the preferences step as finished.
func (g *Gate) PreferencesDone() {
	g.mu.Lock()
	g.preferencesCompleted = true
	g.mu.Unlock()
}
