package domain

// RegistrationStep is a state of the registration track.
type RegistrationStep string

const (
	RegGreeting               RegistrationStep = "greeting"
	RegCollectName            RegistrationStep = "collect_name"
	RegCollectEmail           RegistrationStep = "collect_email"
	RegCollectPassword        RegistrationStep = "collect_password"
	RegCollectPasswordConfirm RegistrationStep = "collect_password_confirm"
	RegConfirm                RegistrationStep = "confirm"
	RegCompleted              RegistrationStep = "completed"
)

// OnboardingStep is a state of the onboarding track.
type OnboardingStep string

const (
	OnbGreeting         OnboardingStep = "greeting"
	OnbCollectRegion    OnboardingStep = "collect_region"
	OnbCollectLifeCycle OnboardingStep = "collect_life_cycle"
	OnbCollectInterests OnboardingStep = "collect_interests"
	OnbCompleted        OnboardingStep = "completed"
)

// RegistrationSlots are the fields collected by the registration track.
// Password is persisted with the session (so it can be compared with the
// confirmation) but is never part of a RegistrationView.
type RegistrationSlots struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// RegistrationView is the externally visible projection of RegistrationSlots.
type RegistrationView struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// View drops the password slot.
func (s RegistrationSlots) View() RegistrationView {
	return RegistrationView{Name: s.Name, Email: s.Email}
}

// Profile holds the welfare profile collected by the onboarding and chat tracks.
type Profile struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	LifeCycle string `json:"life_cycle,omitempty" yaml:"life_cycle,omitempty"`
	AgeGroup  string `json:"age_group,omitempty" yaml:"age_group,omitempty"`
	Interest  string `json:"interest,omitempty" yaml:"interest,omitempty"`
}

// Intent is the classified purpose of a chat message.
type Intent string

const (
	IntentWelfareSearch   Intent = "welfare_search"
	IntentPolicyDetail    Intent = "policy_detail"
	IntentGeneralQuestion Intent = "general_question"
	IntentChitchat        Intent = "chitchat"
	IntentUnknown         Intent = "unknown"
)
