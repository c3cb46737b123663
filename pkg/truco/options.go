package truco

// Options are the house rules of a match
type Options struct {
	Target      int  `json:"target" yaml:"target"`
	FlorEnabled bool `json:"florEnabled" yaml:"florEnabled"`
	ContraFlor  bool `json:"contraFlor" yaml:"contraFlor"`
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Target:      30,
		FlorEnabled: true,
		ContraFlor:  true,
	}
}
