package env

import (
	"fmt"
	"strings"
)

// Topology is the runtime shape of the process. It decides the identity
// strategy and which command catalog plugins feed.
type Topology int

const (
	// Generic is a headless host (services, workers, tests).
	Generic Topology = iota
	// Desktop is a single-user desktop UI.
	Desktop
	// Web is a multi-request web host.
	Web
)

func (t Topology) String() string {
	switch t {
	case Generic:
		return "generic"
	case Desktop:
		return "desktop"
	case Web:
		return "web"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// IsWeb reports whether t is the web topology.
func (t Topology) IsWeb() bool { return t == Web }

// IsDesktop reports whether t is the desktop topology.
func (t Topology) IsDesktop() bool { return t == Desktop }

// ParseTopology parses "generic", "desktop" or "web" (case-insensitive).
// An empty string yields Generic.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return Generic, nil
	case "desktop":
		return Desktop, nil
	case "web":
		return Web, nil
	default:
		return Generic, fmt.Errorf("unknown topology %q (want generic, desktop or web)", s)
	}
}
