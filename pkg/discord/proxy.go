package discord

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	"golang.org/x/net/http/httpproxy"
)

const (
	restTimeout      = 20 * time.Second
	handshakeTimeout = 45 * time.Second
)

// applyDiscordProxy routes both REST calls and the gateway websocket
// through proxyAddr. An empty proxyAddr falls back to HTTP(S)_PROXY and
// NO_PROXY as they are set when the session is built; with neither set the
// session is left untouched.
func applyDiscordProxy(session *discordgo.Session, proxyAddr string) error {
	var proxy func(*http.Request) (*url.URL, error)

	if proxyAddr != "" {
		proxyURL, err := parseProxyURL(proxyAddr)
		if err != nil {
			return err
		}
		proxy = http.ProxyURL(proxyURL)
	} else {
		envCfg := httpproxy.FromEnvironment()
		if envCfg.HTTPProxy == "" && envCfg.HTTPSProxy == "" {
			return nil
		}
		proxyFunc := envCfg.ProxyFunc()
		proxy = func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy
	session.Client = &http.Client{Timeout: restTimeout, Transport: transport}

	// discordgo shares websocket.DefaultDialer between sessions, so the
	// proxy goes on a private dialer.
	session.Dialer = &websocket.Dialer{
		Proxy:            proxy,
		HandshakeTimeout: handshakeTimeout,
	}
	return nil
}

func parseProxyURL(proxyAddr string) (*url.URL, error) {
	proxyURL, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid discord proxy %q: %w", proxyAddr, err)
	}
	switch strings.ToLower(proxyURL.Scheme) {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf(
			"unsupported discord proxy scheme %q (supported: http, https, socks5, socks5h)",
			proxyURL.Scheme,
		)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("invalid discord proxy %q: missing host", proxyAddr)
	}
	return proxyURL, nil
}
