// Package transport opens the TCP connections status queries run over.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/pires/go-proxyproto"
	"golang.org/x/net/proxy"
)

var ErrNoContextDialer = errors.New("socks5 dialer does not support contexts")

// Dialer opens a connection to address. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type DialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f DialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

type Config struct {
	// Timeout bounds establishing the connection.
	Timeout time.Duration
	// LocalAddr is the local IP to dial from, empty lets the system pick.
	LocalAddr string
	// SOCKS5 routes connections through a SOCKS5 proxy at this address.
	SOCKS5 string
	// SendProxyProtocol writes a PROXY protocol v2 header right after connecting.
	SendProxyProtocol bool
}

func New(cfg Config) (Dialer, error) {
	base := Basic(cfg.Timeout, cfg.LocalAddr)

	var dialer Dialer = base
	if cfg.SOCKS5 != "" {
		socks, err := proxy.SOCKS5("tcp", cfg.SOCKS5, nil, base)
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy %s: %w", cfg.SOCKS5, err)
		}
		ctxDialer, ok := socks.(proxy.ContextDialer)
		if !ok {
			return nil, ErrNoContextDialer
		}
		dialer = ctxDialer
	}

	if cfg.SendProxyProtocol {
		dialer = ProxyProtocolDialer{Dialer: dialer}
	}
	return dialer, nil
}

// Basic is a plain TCP dialer with a connect timeout.
func Basic(timeout time.Duration, localAddr string) *net.Dialer {
	dialer := &net.Dialer{
		Timeout: timeout,
	}
	if ip := net.ParseIP(localAddr); ip != nil {
		dialer.LocalAddr = &net.TCPAddr{IP: ip}
	}
	return dialer
}

// ProxyProtocolDialer announces the connection with a PROXY protocol v2
// header, for servers that sit behind a proxy and refuse connections without one.
type ProxyProtocolDialer struct {
	Dialer Dialer
}

func (d ProxyProtocolDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	header := &proxyproto.Header{
		Version:           2,
		Command:           proxyproto.PROXY,
		TransportProtocol: transportProtocol(conn.RemoteAddr()),
		SourceAddr:        conn.LocalAddr(),
		DestinationAddr:   conn.RemoteAddr(),
	}
	if _, err := header.WriteTo(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("writing proxy protocol header: %w", err)
	}
	return conn, nil
}

func transportProtocol(addr net.Addr) proxyproto.AddressFamilyAndProtocol {
	if tcpAddr, ok := addr.(*net.TCPAddr); ok && tcpAddr.IP.To4() == nil {
		return proxyproto.TCPv6
	}
	return proxyproto.TCPv4
}
