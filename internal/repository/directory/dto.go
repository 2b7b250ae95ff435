package directory

import (
	"net"
	"strconv"
	"strings"

	"github.com/kailas-cloud/relaynn/internal/domain/relay"
)

// detailsDocument is the subset of an Onionoo details document the ranker needs.
type detailsDocument struct {
	Version string         `json:"version"`
	Relays  []onionooRelay `json:"relays"`
}

type onionooRelay struct {
	Nickname            string   `json:"nickname"`
	Fingerprint         string   `json:"fingerprint"`
	ORAddresses         []string `json:"or_addresses"`
	DirAddress          string   `json:"dir_address"`
	Platform            string   `json:"platform"`
	AdvertisedBandwidth int64    `json:"advertised_bandwidth"`
}

// toDomain converts the Onionoo entry. Ports are the OR ports in listed
// order followed by the dir port. Unparseable addresses are skipped.
func (r onionooRelay) toDomain() relay.Relay {
	var ports []int
	for _, addr := range r.ORAddresses {
		if p, ok := addressPort(addr); ok {
			ports = append(ports, p)
		}
	}
	if p, ok := addressPort(r.DirAddress); ok {
		ports = append(ports, p)
	}
	return relay.New(r.Fingerprint, r.Nickname, platformOS(r.Platform), r.AdvertisedBandwidth, ports)
}

// addressPort extracts the port of "host:port" or "[v6]:port".
func addressPort(addr string) (int, bool) {
	if addr == "" {
		return 0, false
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, false
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return 0, false
	}
	return p, true
}

// platformOS returns the operating system of a "Tor 0.4.8.9 on Linux" platform line.
func platformOS(platform string) string {
	_, name, found := strings.Cut(platform, " on ")
	if !found {
		return ""
	}
	return strings.TrimSpace(name)
}

// relayList is the YAML directory format.
type relayList struct {
	Relays []yamlRelay `yaml:"relays"`
}

type yamlRelay struct {
	ID        string `yaml:"id"`
	Nickname  string `yaml:"nickname"`
	OS        string `yaml:"os"`
	Bandwidth int64  `yaml:"bandwidth"`
	Ports     []int  `yaml:"ports"`
}

func (r yamlRelay) toDomain() relay.Relay {
	return relay.New(r.ID, r.Nickname, r.OS, r.Bandwidth, r.Ports)
}
