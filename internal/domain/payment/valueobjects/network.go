package valueobjects

import "fmt"

// Network names an EVM network whose ledger can be queried.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkBase    Network = "base"
)

var supportedNetworks = []Network{NetworkMainnet, NetworkBase}

func NewNetwork(name string) (Network, error) {
	n := Network(name)
	if !n.IsValid() {
		return "", fmt.Errorf("unsupported network: %q", name)
	}
	return n, nil
}

func (n Network) IsValid() bool {
	for _, supported := range supportedNetworks {
		if n == supported {
			return true
		}
	}
	return false
}

func (n Network) String() string {
	return string(n)
}

// SupportedNetworks returns the networks a verification may target.
func SupportedNetworks() []Network {
	out := make([]Network, len(supportedNetworks))
	copy(out, supportedNetworks)
	return out
}
