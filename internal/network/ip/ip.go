package ip

import (
	"fmt"
	"io"
	"net"
	"strings"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
)

// UnknownAddress stands in for the local address when it cannot be
// resolved. Self-exclusion and broadcast derivation degrade with it.
const UnknownAddress = "unknown"

var skippedPrefixes = []string{"br-", "veth", "docker"}

var preferredPrefixes = []string{"wl", "eth", "en", "wlan", "wifi"}

func ShowAccessibleIP(w io.Writer) {
	ip, err := LocalAddress()
	if err != nil {
		fmt.Fprintln(w, "No accessible IP found")
		return
	}
	fmt.Fprintln(w, "Accessible IP:", ip)
}

// LocalAddress returns the private IPv4 address other nodes on the LAN can
// reach this one at, preferring wired and wireless interfaces.
func LocalAddress() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", neterrors.AddressResolutionError(err)
	}

	candidates := make([]candidate, 0, len(interfaces))
	for _, iface := range interfaces {
		if !usableInterface(iface) {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{name: iface.Name, addrs: addrs})
	}

	if ip := pickAddress(candidates); ip != "" {
		return ip, nil
	}
	return "", neterrors.AddressResolutionError(fmt.Errorf("no private IPv4 address on any interface"))
}

type candidate struct {
	name  string
	addrs []net.Addr
}

func pickAddress(candidates []candidate) string {
	for _, c := range candidates {
		if !isPreferredInterface(c.name) {
			continue
		}
		if ip := firstPrivateIPv4(c.addrs); ip != "" {
			return ip
		}
	}

	for _, c := range candidates {
		if ip := firstPrivateIPv4(c.addrs); ip != "" {
			return ip
		}
	}
	return ""
}

func usableInterface(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(iface.Name, prefix) {
			return false
		}
	}
	return true
}

func firstPrivateIPv4(addrs []net.Addr) string {
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ipv4 := ipnet.IP.To4(); ipv4 != nil && ipv4.IsPrivate() {
			return ipv4.String()
		}
	}
	return ""
}

func isPreferredInterface(name string) bool {
	for _, prefix := range preferredPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// BroadcastAddress replaces the last octet of local with 255. It assumes a
// /24 network and never looks at the real netmask.
func BroadcastAddress(local string) (string, error) {
	parsed := net.ParseIP(local)
	if parsed == nil {
		return "", neterrors.AddressResolutionError(fmt.Errorf("%q is not an IP address", local))
	}
	ipv4 := parsed.To4()
	if ipv4 == nil {
		return "", neterrors.AddressResolutionError(fmt.Errorf("%q is not an IPv4 address", local))
	}

	broadcast := make(net.IP, net.IPv4len)
	copy(broadcast, ipv4)
	broadcast[3] = 255
	return broadcast.String(), nil
}
