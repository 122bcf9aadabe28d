package types

// SessionInit carries the environment signals supplied with a session-start
// request: the first route seen, the referrer, parsed UTM parameters, the
// inferred device class and an optional country hint.
type SessionInit struct {
	FirstRoute string            `json:"routeFirst"`
	Referrer   string            `json:"referrer,omitempty"`
	UTM        map[string]string `json:"utm,omitempty"`
	Device     string            `json:"device,omitempty"`
	Country    string            `json:"country,omitempty"`
}

// Merge returns a copy of init with zero fields filled in from defaults.
// Used when a caller-provided SessionInit only overrides part of the
// environment captured at coordinator construction.
func (init SessionInit) Merge(defaults SessionInit) SessionInit {
	out := init
	if out.FirstRoute == "" {
		out.FirstRoute = defaults.FirstRoute
	}
	if out.Referrer == "" {
		out.Referrer = defaults.Referrer
	}
	if len(out.UTM) == 0 {
		out.UTM = defaults.UTM
	}
	if out.Device == "" {
		out.Device = defaults.Device
	}
	if out.Country == "" {
		out.Country = defaults.Country
	}

	return out
}
