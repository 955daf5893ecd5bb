package host

// Host is a single monitored host as read from the configuration file.
// Name is the identity used to tag metric points.
type Host struct {
	Name    string `json:"name" mapstructure:"name"`
	Address string `json:"address,omitempty" mapstructure:"address"` // Optional address
}

// Target returns the address to probe, falling back to the name when no
// address is configured.
func (h Host) Target() string {
	if h.Address == "" {
		return h.Name
	}
	return h.Address
}
