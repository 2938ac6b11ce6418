package transport

// Polarity describes how a module's skip_tls_verify flag maps onto certificate
// verification. The modules disagree on this and each keeps its own behaviour.
type Polarity int

const (
	// SkipVerify: a true flag disables verification.
	SkipVerify Polarity = iota
	// FlagIsVerify: the flag is handed to the client as "verify", so the
	// default false disables verification and true enables it.
	FlagIsVerify
)

func (p Polarity) String() string {
	if p == FlagIsVerify {
		return "flag-is-verify"
	}
	return "skip-verify"
}

// InsecureSkipVerify resolves flag under polarity p.
func InsecureSkipVerify(flag bool, p Polarity) bool {
	if p == FlagIsVerify {
		return !flag
	}
	return flag
}
