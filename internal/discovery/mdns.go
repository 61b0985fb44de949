// ABOUTME: mDNS advertisement of the websocket stream server
// ABOUTME: Publishes _streamenc._tcp with the stream path and format in TXT records
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// ServiceType is the DNS-SD service listeners browse for
const ServiceType = "_streamenc._tcp"

// Config describes the advertised stream
type Config struct {
	// Instance name, defaults to "<hostname>-streamenc"
	Name string
	Port int

	Path       string
	Codec      string
	SampleRate int
	Channels   int
}

// TXT renders the service TXT records
func (c Config) TXT() []string {
	return []string{
		"path=" + c.Path,
		"codec=" + c.Codec,
		fmt.Sprintf("rate=%d", c.SampleRate),
		fmt.Sprintf("channels=%d", c.Channels),
	}
}

func (c Config) instance() string {
	if c.Name != "" {
		return c.Name
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + "-streamenc"
}

// Advertise publishes cfg until ctx is done
func Advertise(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Port <= 0 {
		return fmt.Errorf("invalid mdns port: %d", cfg.Port)
	}

	ips, err := localIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(cfg.instance(), ServiceType, "", "", cfg.Port, ips, cfg.TXT())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	defer server.Shutdown()

	logger.Info("advertising mDNS service",
		zap.String("instance", cfg.instance()),
		zap.String("type", ServiceType),
		zap.Int("port", cfg.Port))

	<-ctx.Done()
	return nil
}

// localIPs returns the non-loopback IPv4 addresses of interfaces that are up
func localIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return ips, nil
}
