// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests TXT records, instance naming and argument checks
package discovery

import (
	"context"
	"strings"
	"testing"
)

func TestTXT(t *testing.T) {
	cfg := Config{Path: "/stream", Codec: "opus", SampleRate: 44100, Channels: 2}

	want := []string{"path=/stream", "codec=opus", "rate=44100", "channels=2"}
	got := cfg.TXT()
	if len(got) != len(want) {
		t.Fatalf("TXT() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TXT()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInstanceName(t *testing.T) {
	if got := (Config{Name: "studio"}).instance(); got != "studio" {
		t.Errorf("instance() = %q, want studio", got)
	}
	if got := (Config{}).instance(); !strings.HasSuffix(got, "-streamenc") {
		t.Errorf("default instance %q should end in -streamenc", got)
	}
}

func TestAdvertiseInvalidPort(t *testing.T) {
	if err := Advertise(context.Background(), Config{Port: 0}, nil); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestLocalIPsSkipLoopback(t *testing.T) {
	ips, err := localIPs()
	if err != nil {
		t.Fatalf("localIPs() failed: %v", err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.To4() == nil {
			t.Errorf("unexpected address %v", ip)
		}
	}
}
