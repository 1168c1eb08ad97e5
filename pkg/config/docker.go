package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
)

// dockerHostGateway is the name a container uses to reach services on its host.
const dockerHostGateway = "host.docker.internal"

// runningInDocker reports whether the loader runs inside a container, detected once
// through /.dockerenv. Tests replace it.
var runningInDocker = sync.OnceValue(func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
})

func isLoopbackHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// storeHostPort joins the PG* host and port, pointing loopback hosts at the
// Docker host gateway when running in a container.
func storeHostPort(host string, port int) string {
	if runningInDocker() && isLoopbackHost(host) {
		host = dockerHostGateway
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// rewriteStoreURL applies the same loopback rewrite to an explicit store URL.
// URLs without a network host (sqlite files) and unparsable URLs are returned as given.
func rewriteStoreURL(raw string) string {
	if !runningInDocker() {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !isLoopbackHost(u.Hostname()) {
		return raw
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(dockerHostGateway, port)
	} else {
		u.Host = dockerHostGateway
	}
	return u.String()
}
