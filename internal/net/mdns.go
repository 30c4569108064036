package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	ServiceType = "_inpaint._tcp"
	DefaultPath = "/inpaint"
)

var ErrNoService = errors.New("no inpainting service found")

// Advertise announces an inpainting server listening on port. The TXT record
// carries the request path.
func Advertise(port int, path string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if path == "" {
		path = DefaultPath
	}

	var ips []net.IP
	if ip, err := OutgoingIP(); err == nil {
		ips = []net.IP{ip}
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, ips, []string{"path=" + path})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses the local network and returns the endpoint URL of the
// first inpainting service that answers within timeout.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)

	go func() {
		for e := range entries {
			if endpoint, ok := entryEndpoint(e); ok {
				select {
				case found <- endpoint:
				default:
				}
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	select {
	case endpoint := <-found:
		return endpoint, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("mdns query: %w", err)
		}
		select {
		case endpoint := <-found:
			return endpoint, nil
		default:
			return "", ErrNoService
		}
	}
}

func entryEndpoint(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}

	path := DefaultPath
	for _, field := range e.InfoFields {
		if v, ok := strings.CutPrefix(field, "path="); ok && v != "" {
			path = v
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("http://%s:%d%s", e.AddrV4.String(), e.Port, path), true
}
