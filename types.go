package formkit

// UnknownPolicy controls how record keys with no matching field are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys from the normalized record.
	UnknownStrict                           // Reject unknown keys with an error.
	UnknownPassthrough                      // Preserve unknown keys untouched.
)

// ValidateOpt bundles instance validation options.
type ValidateOpt struct {
	Unknown  UnknownPolicy
	FailFast bool
}

func lastOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}
