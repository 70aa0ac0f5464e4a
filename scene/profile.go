package scene

// Profile is a set of decoder flags tried as one decode attempt.
type Profile struct {
	Name        string `yaml:"name" json:"name"`
	Validate    bool   `yaml:"validate" json:"validate"`
	LoadBuffers bool   `yaml:"loadBuffers" json:"loadBuffers"`
	LoadImages  bool   `yaml:"loadImages" json:"loadImages"`
}

var (
	Standard       = Profile{Name: "standard", Validate: false, LoadBuffers: true, LoadImages: false}
	NoBuffers      = Profile{Name: "no_buffers", Validate: false, LoadBuffers: false, LoadImages: false}
	WithValidation = Profile{Name: "with_validation", Validate: true, LoadBuffers: true, LoadImages: false}
)

// DefaultProfiles returns the profiles in the order they are attempted.
func DefaultProfiles() []Profile {
	return []Profile{Standard, NoBuffers, WithValidation}
}

func ProfileByName(name string) (Profile, bool) {
	for _, p := range DefaultProfiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
